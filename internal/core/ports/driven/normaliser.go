package driven

import (
	"context"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

// Normaliser extracts plain text from one family of contract formats.
type Normaliser interface {
	// SupportedMIMETypes lists the media types handled.
	SupportedMIMETypes() []string

	// Priority orders extractors claiming the same type; higher wins.
	Priority() int

	// Normalise extracts the document text.
	// Failures wrap domain.ErrExtractionFailed or domain.ErrInvalidInput.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// NormaliseResult carries the extracted document. Chunking happens later,
// in the PostProcessorPipeline.
type NormaliseResult struct {
	// Document holds the text and whatever title and metadata the format
	// exposes.
	Document domain.Document
}
