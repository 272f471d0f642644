// Package tfidf provides a local, deterministic TF-IDF embedding service.
// The vector space is fitted to the chunks of one document at a time.
package tfidf

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interfaces.
var (
	_ driven.EmbeddingService = (*EmbeddingService)(nil)
	_ driven.CorpusFitter     = (*EmbeddingService)(nil)
)

// ModelName identifies this embedder in logs and cache keys.
const ModelName = "tfidf"

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}]+)*`)

// EmbeddingService computes smoothed TF-IDF vectors, L2-normalised.
// Vocabulary order is sorted, so the same corpus always yields the
// same vectors.
type EmbeddingService struct {
	mu         sync.RWMutex
	vocabulary map[string]int
	idf        []float64
	fitted     bool
	stopwords  map[string]struct{}
}

// NewEmbeddingService creates an unfitted TF-IDF embedder.
func NewEmbeddingService() *EmbeddingService {
	return &EmbeddingService{stopwords: defaultStopwords()}
}

// Fit builds the vocabulary and IDF weights from corpus, replacing any
// earlier fit. A corpus with no usable tokens yields zero-length vectors.
func (s *EmbeddingService) Fit(ctx context.Context, corpus []string) error {
	if len(corpus) == 0 {
		return fmt.Errorf("tfidf: empty corpus: %w", domain.ErrInvalidInput)
	}

	df := make(map[string]int)
	for _, text := range corpus {
		if err := ctx.Err(); err != nil {
			return err
		}
		seen := make(map[string]struct{})
		for _, tok := range s.tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	vocabulary := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	n := float64(len(corpus))
	for i, term := range terms {
		vocabulary[term] = i
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}

	s.mu.Lock()
	s.vocabulary = vocabulary
	s.idf = idf
	s.fitted = true
	s.mu.Unlock()
	return nil
}

// Embed returns the TF-IDF vector of text in the fitted space.
// Terms outside the vocabulary are ignored.
func (s *EmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.fitted {
		return nil, fmt.Errorf("tfidf: embed before fit: %w", domain.ErrEmbeddingUnavailable)
	}
	return s.vector(text), nil
}

// EmbedBatch embeds each text, in input order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// Dimensions returns the fitted vocabulary size, 0 before Fit.
func (s *EmbeddingService) Dimensions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.idf)
}

// ModelName returns "tfidf".
func (s *EmbeddingService) ModelName() string {
	return ModelName
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

// vector must be called with the read lock held.
func (s *EmbeddingService) vector(text string) []float32 {
	vec := make([]float32, len(s.idf))

	tf := make(map[int]int)
	total := 0
	for _, tok := range s.tokenize(text) {
		if idx, ok := s.vocabulary[tok]; ok {
			tf[idx]++
			total++
		}
	}
	if total == 0 {
		return vec
	}

	weights := make([]float64, len(s.idf))
	norm := 0.0
	for idx, count := range tf {
		w := float64(count) / float64(total) * s.idf[idx]
		weights[idx] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for i, w := range weights {
		if w != 0 {
			vec[i] = float32(w / norm)
		}
	}
	return vec
}

func (s *EmbeddingService) tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, stop := s.stopwords[t]; stop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on",
		"at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "its",
		"this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further",
		"than", "so", "such", "into", "about", "between", "through", "during", "before", "after",
		"above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
