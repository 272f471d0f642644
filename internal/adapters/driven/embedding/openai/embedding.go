// Package openai provides an embedding service adapter for OpenAI and
// OpenAI-compatible embeddings endpoints.
package openai

import (
	"context"
	"fmt"
	"time"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "text-embedding-3-small"
	DefaultTimeout = 60 * time.Second
)

// Model dimensions for OpenAI embedding models.
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// Config holds configuration for the OpenAI embedding service.
type Config struct {
	// APIKey is required.
	APIKey domain.Secret

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	BaseURL string

	// Model is the embedding model to use (default: text-embedding-3-small).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration

	// Dimensions overrides the default dimension for text-embedding-3-* models.
	Dimensions int
}

// EmbeddingService generates embeddings through the openai-go client.
type EmbeddingService struct {
	client     openaisdk.Client
	apiKey     domain.Secret
	model      string
	dimensions int
	override   bool
}

// NewEmbeddingService creates a new OpenAI embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey.IsEmpty() {
		return nil, fmt.Errorf("openai embeddings: %w", domain.ErrMissingCredential)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	dimensions := cfg.Dimensions
	if dimensions == 0 {
		var ok bool
		if dimensions, ok = modelDimensions[cfg.Model]; !ok {
			dimensions = 1536
		}
	}

	client := openaisdk.NewClient(
		option.WithAPIKey(cfg.APIKey.Reveal()),
		option.WithBaseURL(cfg.BaseURL),
		option.WithRequestTimeout(cfg.Timeout),
		option.WithMaxRetries(0),
	)

	return &EmbeddingService{
		client:     client,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		dimensions: dimensions,
		override:   cfg.Dimensions > 0,
	}, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch embeds all texts in one request, ordered by the response index.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	params := openaisdk.EmbeddingNewParams{
		Model:          openaisdk.EmbeddingModel(s.model),
		Input:          openaisdk.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		EncodingFormat: openaisdk.EmbeddingNewParamsEncodingFormatFloat,
	}
	if s.override {
		params.Dimensions = openaisdk.Int(int64(s.dimensions))
	}

	resp, err := s.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %s: %w", s.apiKey.Redact(err.Error()), domain.ErrEmbeddingUnavailable)
	}

	embeddings := make([][]float32, len(texts))
	for _, data := range resp.Data {
		if data.Index < 0 || int(data.Index) >= len(texts) {
			return nil, fmt.Errorf("openai embeddings: index %d out of range", data.Index)
		}
		vec := make([]float32, len(data.Embedding))
		for i, v := range data.Embedding {
			vec[i] = float32(v)
		}
		embeddings[data.Index] = vec
	}
	for i, vec := range embeddings {
		if vec == nil {
			return nil, fmt.Errorf("openai embeddings: no vector for input %d", i)
		}
	}
	return embeddings, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
