package tui

import "errors"

// ErrMissingCheck is returned when no check function is provided.
var ErrMissingCheck = errors.New("tui: check function is required")

// ErrMissingTarget is returned when the document to check is not named.
var ErrMissingTarget = errors.New("tui: target document is required")

// ErrKeyRequired is returned when the prompt is left without a key.
var ErrKeyRequired = errors.New("tui: API key was not entered")
