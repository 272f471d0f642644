// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

// KeySubmitted is sent when the API key prompt is confirmed.
type KeySubmitted struct {
	Key domain.Secret
}

// CheckCompleted carries the outcome of a compliance run.
type CheckCompleted struct {
	Report *domain.Report
	Err    error
}

// RowSelected is sent when the table cursor moves to another result.
type RowSelected struct {
	Index int
}

// Focus identifies which pane receives key presses.
type Focus int

const (
	// FocusTable moves through the report rows.
	FocusTable Focus = iota
	// FocusEvidence scrolls the evidence of the selected row.
	FocusEvidence
)

// String returns the string representation of the focus.
func (f Focus) String() string {
	switch f {
	case FocusTable:
		return "table"
	case FocusEvidence:
		return "evidence"
	default:
		return "unknown"
	}
}
