package driven

import (
	"context"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

// NormaliserRegistry routes a contract to the extractor for its media type.
// When several extractors claim a type, the highest priority wins.
type NormaliserRegistry interface {
	// Normalise extracts the contract text. An unknown type fails with
	// domain.ErrUnsupportedType, never empty text.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)

	// Register adds an extractor.
	Register(normaliser Normaliser)

	// SupportedMIMETypes lists every accepted media type, sorted.
	SupportedMIMETypes() []string
}
