package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Note: This is separate from VectorIndex which stores and searches vectors.
// EmbeddingService generates vectors; VectorIndex stores them.
//
// Implementations include:
//   - TF-IDF (local, deterministic, fitted to the document's chunks)
//   - OpenAI-compatible embeddings endpoints
//   - Ollama (nomic-embed-text, all-minilm)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size.
	// Corpus-fitted embedders report 0 until fitted.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}

// CorpusFitter is implemented by embedders whose vector space is derived
// from the corpus being indexed. The semantic index calls Fit with every
// chunk before embedding any of them.
type CorpusFitter interface {
	Fit(ctx context.Context, corpus []string) error
}

// FitsCorpus reports whether e derives its vector space from the corpus.
// Wrappers that implement CorpusFitter for a maybe-fitted inner service
// answer through a FitsCorpus method of their own.
func FitsCorpus(e EmbeddingService) bool {
	if w, ok := e.(interface{ FitsCorpus() bool }); ok {
		return w.FitsCorpus()
	}
	_, ok := e.(CorpusFitter)
	return ok
}
