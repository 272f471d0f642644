// Package cache wraps an embedding service with an in-memory expirable LRU.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
	"github.com/custodia-labs/clausecheck/internal/logger"
)

// Ensure EmbeddingService implements the interfaces.
var (
	_ driven.EmbeddingService = (*EmbeddingService)(nil)
	_ driven.CorpusFitter     = (*EmbeddingService)(nil)
)

// EmbeddingService caches vectors by model and text.
type EmbeddingService struct {
	next  driven.EmbeddingService
	cache *expirable.LRU[string, []float32]
}

// Wrap returns next behind an LRU of size entries expiring after ttl.
// A non-positive size or ttl disables caching and returns next unchanged.
func Wrap(next driven.EmbeddingService, size int, ttl time.Duration) driven.EmbeddingService {
	if next == nil || size <= 0 || ttl <= 0 {
		return next
	}
	return &EmbeddingService{
		next:  next,
		cache: expirable.NewLRU[string, []float32](size, nil, ttl),
	}
}

// Fit forwards to a corpus-fitted embedder and purges the cache, since
// every cached vector belongs to the previous vector space.
func (s *EmbeddingService) Fit(ctx context.Context, corpus []string) error {
	fitter, ok := s.next.(driven.CorpusFitter)
	if !ok {
		return nil
	}
	s.cache.Purge()
	return fitter.Fit(ctx, corpus)
}

// FitsCorpus reports whether the wrapped service is corpus-fitted.
func (s *EmbeddingService) FitsCorpus() bool {
	return driven.FitsCorpus(s.next)
}

// Embed returns a cached vector or computes and stores one.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	key := s.key(text)
	if cached, ok := s.cache.Get(key); ok {
		logger.Debug("embedding cache hit")
		return clone(cached), nil
	}
	vec, err := s.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, clone(vec))
	return vec, nil
}

// EmbedBatch only sends the misses to the wrapped service.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var (
		missTexts []string
		missIdx   []int
	)
	for i, text := range texts {
		if cached, ok := s.cache.Get(s.key(text)); ok {
			out[i] = clone(cached)
			continue
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}
	if len(missTexts) == 0 {
		return out, nil
	}

	vecs, err := s.next.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	for j, vec := range vecs {
		out[missIdx[j]] = vec
		s.cache.Add(s.key(missTexts[j]), clone(vec))
	}
	logger.Debug("embedding cache: %d hits, %d misses", len(texts)-len(missTexts), len(missTexts))
	return out, nil
}

// Dimensions returns the wrapped service's dimension.
func (s *EmbeddingService) Dimensions() int {
	return s.next.Dimensions()
}

// ModelName returns the wrapped service's model.
func (s *EmbeddingService) ModelName() string {
	return s.next.ModelName()
}

// Close purges the cache and closes the wrapped service.
func (s *EmbeddingService) Close() error {
	s.cache.Purge()
	return s.next.Close()
}

// Len returns the number of cached vectors.
func (s *EmbeddingService) Len() int {
	return s.cache.Len()
}

func (s *EmbeddingService) key(text string) string {
	sum := sha256.Sum256([]byte(s.next.ModelName() + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

func clone(values []float32) []float32 {
	if values == nil {
		return nil
	}
	out := make([]float32, len(values))
	copy(out, values)
	return out
}
