// Package memory provides a brute-force in-memory vector index.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

type entry struct {
	chunkID string
	vector  []float32
	norm    float64
}

// Index stores vectors in insertion order and scores every one on search.
// The first Add fixes the dimension.
type Index struct {
	mu        sync.RWMutex
	entries   []entry
	ids       map[string]struct{}
	dimension int
	closed    bool
}

// New creates an empty index.
func New() *Index {
	return &Index{ids: make(map[string]struct{})}
}

// Add inserts a vector for chunkID. Duplicate IDs and dimension mismatches
// are rejected.
func (i *Index) Add(_ context.Context, chunkID string, embedding []float32) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return fmt.Errorf("vector index closed: %w", domain.ErrIndexNotBuilt)
	}
	if _, exists := i.ids[chunkID]; exists {
		return fmt.Errorf("chunk %s already indexed: %w", chunkID, domain.ErrInvalidInput)
	}
	if len(i.entries) > 0 && len(embedding) != i.dimension {
		return fmt.Errorf("dimension %d, index holds %d: %w", len(embedding), i.dimension, domain.ErrInvalidInput)
	}
	if len(i.entries) == 0 {
		i.dimension = len(embedding)
	}

	vec := make([]float32, len(embedding))
	copy(vec, embedding)
	i.entries = append(i.entries, entry{chunkID: chunkID, vector: vec, norm: norm(vec)})
	i.ids[chunkID] = struct{}{}
	return nil
}

// Search returns up to k hits by descending cosine similarity. Equal scores
// keep insertion order. k <= 0 returns nothing.
func (i *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.closed {
		return nil, fmt.Errorf("vector index closed: %w", domain.ErrIndexNotBuilt)
	}
	if k <= 0 || len(i.entries) == 0 {
		return nil, nil
	}
	if len(query) != i.dimension {
		return nil, fmt.Errorf("query dimension %d, index holds %d: %w", len(query), i.dimension, domain.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	qn := norm(query)
	hits := make([]driven.VectorHit, len(i.entries))
	for idx, e := range i.entries {
		hits[idx] = driven.VectorHit{ChunkID: e.chunkID, Similarity: cosine(query, qn, e.vector, e.norm)}
	}
	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Similarity > hits[b].Similarity
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Len returns the number of stored vectors.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries)
}

// Dimension returns the fixed vector size, 0 while empty.
func (i *Index) Dimension() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.dimension
}

// Close drops every vector. Later calls fail with domain.ErrIndexNotBuilt.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.entries = nil
	i.ids = nil
	i.closed = true
	return nil
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// cosine treats a zero vector as similarity 0 to everything.
func cosine(a []float32, an float64, b []float32, bn float64) float64 {
	if an == 0 || bn == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (an * bn)
}
