package driven

import (
	"context"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

// RuleSource loads the compliance rule catalog.
// The catalog is loaded once at startup and never mutated.
type RuleSource interface {
	// Load returns the validated catalog.
	Load(ctx context.Context) (*domain.Catalog, error)

	// Origin describes where rules come from (a path or "embedded").
	Origin() string
}
