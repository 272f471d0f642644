package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates no normaliser handles the declared media type.
	ErrUnsupportedType = errors.New("unsupported document type")

	// ErrExtractionFailed indicates the document could not be read.
	// Corrupted, encrypted and structurally invalid files all map here.
	ErrExtractionFailed = errors.New("text extraction failed")

	// ErrEmptyDocument indicates extraction produced no usable text.
	ErrEmptyDocument = errors.New("document contains no text")

	// ErrMissingCredential indicates the LLM API key was not supplied.
	// The pipeline refuses to initialise without it.
	ErrMissingCredential = errors.New("LLM API key is required")

	// ErrInvalidCatalog indicates the rule catalog failed validation.
	ErrInvalidCatalog = errors.New("invalid rule catalog")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrIndexNotBuilt indicates a search was attempted before Build.
	ErrIndexNotBuilt = errors.New("semantic index not built")

	// Source Errors.

	// ErrUnsupportedSource indicates no connector handles the URI scheme.
	ErrUnsupportedSource = errors.New("unsupported source")

	// ErrSourceAuthRequired indicates a remote source needs a token that is not set.
	ErrSourceAuthRequired = errors.New("source authentication required")

	// ErrRateLimited indicates a remote source API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
