package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
	"github.com/custodia-labs/clausecheck/internal/logger"
)

// Retriever returns the chunks most relevant to a query.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]domain.Chunk, error)
}

// Ensure SemanticIndex implements Retriever.
var _ Retriever = (*SemanticIndex)(nil)

// SemanticIndex embeds the chunks of one document and answers similarity
// queries over them. It is built once and discarded with the run.
type SemanticIndex struct {
	embedder driven.EmbeddingService
	vectors  driven.VectorIndex
	chunks   map[string]domain.Chunk
	built    bool
}

// NewSemanticIndex creates an unbuilt index over the given adapters.
func NewSemanticIndex(embedder driven.EmbeddingService, vectors driven.VectorIndex) *SemanticIndex {
	return &SemanticIndex{
		embedder: embedder,
		vectors:  vectors,
	}
}

// Build fits the embedder when it derives its space from the corpus, then
// embeds every chunk in one batch and stores the vectors.
func (x *SemanticIndex) Build(ctx context.Context, chunks []domain.Chunk) error {
	if x.built {
		return fmt.Errorf("%w: semantic index already built", domain.ErrInvalidInput)
	}
	if x.embedder == nil {
		return domain.ErrEmbeddingUnavailable
	}
	if x.vectors == nil {
		return fmt.Errorf("%w: no vector index", domain.ErrInvalidInput)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	if fitter, ok := x.embedder.(driven.CorpusFitter); ok && len(texts) > 0 {
		if err := fitter.Fit(ctx, texts); err != nil {
			return fmt.Errorf("fit embedder: %w", err)
		}
		logger.Debug("Fitted %s on %d chunks (%d dimensions)", x.embedder.ModelName(), len(texts), x.embedder.Dimensions())
	}

	x.chunks = make(map[string]domain.Chunk, len(chunks))
	if len(texts) > 0 {
		vectors, err := x.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed chunks: %w", err)
		}
		if len(vectors) != len(chunks) {
			return fmt.Errorf("embed chunks: got %d vectors for %d chunks", len(vectors), len(chunks))
		}

		for i, c := range chunks {
			if err := x.vectors.Add(ctx, c.ID, vectors[i]); err != nil {
				return fmt.Errorf("index chunk %d: %w", c.Position, err)
			}
			c.Embedding = vectors[i]
			x.chunks[c.ID] = c
		}
	}

	x.built = true
	logger.Debug("Indexed %d chunks", x.vectors.Len())
	return nil
}

// Search embeds query and returns up to k chunks, most similar first.
// k larger than the chunk count returns every chunk; k <= 0 returns none.
func (x *SemanticIndex) Search(ctx context.Context, query string, k int) ([]domain.Chunk, error) {
	if !x.built {
		return nil, domain.ErrIndexNotBuilt
	}
	if k <= 0 || len(x.chunks) == 0 {
		return nil, nil
	}

	vec, err := x.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hits, err := x.vectors.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	out := make([]domain.Chunk, 0, len(hits))
	for _, h := range hits {
		if c, ok := x.chunks[h.ChunkID]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// Len returns the number of indexed chunks.
func (x *SemanticIndex) Len() int {
	return len(x.chunks)
}

// Close releases the vector index. The embedder is owned by the caller.
func (x *SemanticIndex) Close() error {
	x.chunks = nil
	if x.vectors == nil {
		return nil
	}
	return x.vectors.Close()
}
