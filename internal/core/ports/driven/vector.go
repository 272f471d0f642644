package driven

import "context"

// VectorIndex provides semantic similarity search operations.
// An index holds the vectors of exactly one document and is discarded
// with the run; there is no deletion or incremental update.
type VectorIndex interface {
	// Add inserts a vector for the given chunk ID.
	Add(ctx context.Context, chunkID string, embedding []float32) error

	// Search finds the k nearest neighbours to the query vector, most
	// similar first. k larger than Len returns every vector.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Len returns the number of stored vectors.
	Len() int

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Similarity is the cosine similarity score.
	Similarity float64
}
