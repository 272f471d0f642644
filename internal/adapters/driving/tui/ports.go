// Package tui provides an interactive terminal viewer for compliance
// reports. It implements a driving adapter following hexagonal
// architecture principles.
package tui

import (
	"context"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

// CheckFunc builds the pipeline for key and runs it over the target. The
// key is empty when no prompt was shown.
type CheckFunc func(ctx context.Context, key domain.Secret) (*domain.Report, error)

// Ports is the single injection point of the TUI.
type Ports struct {
	// Check runs the compliance pipeline.
	Check CheckFunc

	// Target names the document being checked.
	Target string

	// PromptKey shows the masked API key prompt before checking.
	PromptKey bool

	// KeyLabel labels the prompt, e.g. "groq API key (GROQ_API_KEY)".
	KeyLabel string
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Check == nil {
		return ErrMissingCheck
	}
	if p.Target == "" {
		return ErrMissingTarget
	}
	return nil
}
