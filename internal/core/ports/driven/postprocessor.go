package driven

import (
	"context"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

// PostProcessor is one stage of turning contract text into chunks.
type PostProcessor interface {
	// Name is the registry key, e.g. "chunker".
	Name() string

	// Process returns the chunks for doc. The first stage receives nil
	// chunks; later stages refine what they are given.
	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline produces the chunks the semantic index embeds.
type PostProcessorPipeline interface {
	// Process returns the chunks in document order.
	Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}
