// Package ollama provides an embedding service adapter using Ollama.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultModel      = "nomic-embed-text"
	DefaultTimeout    = 30 * time.Second
	DefaultDimensions = 768 // nomic-embed-text default
)

// Config holds configuration for the Ollama embedding service.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the embedding model to use (default: nomic-embed-text).
	Model string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration

	// Dimensions is the embedding vector size (model-dependent).
	Dimensions int
}

// EmbeddingService generates embeddings using Ollama's /api/embed.
type EmbeddingService struct {
	client     *http.Client
	baseURL    string
	model      string
	dimensions int
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
	Error      string      `json:"error,omitempty"`
}

// NewEmbeddingService creates a new Ollama embedding service.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}

	return &EmbeddingService{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch sends every text in one /api/embed request.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	jsonBody, err := json.Marshal(embedRequest{Model: s.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/embed", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama: send request: %v: %w", err, domain.ErrEmbeddingUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("ollama error (status %d): %s: %w",
			resp.StatusCode, strings.TrimSpace(string(body)), domain.ErrEmbeddingUnavailable)
	}

	var embedResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if embedResp.Error != "" {
		return nil, fmt.Errorf("ollama error: %s: %w", embedResp.Error, domain.ErrEmbeddingUnavailable)
	}
	if len(embedResp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama: got %d embeddings for %d inputs", len(embedResp.Embeddings), len(texts))
	}

	out := make([][]float32, len(texts))
	for i, emb := range embedResp.Embeddings {
		vec := make([]float32, len(emb))
		for j, v := range emb {
			vec[j] = float32(v)
		}
		out[i] = vec
	}
	return out, nil
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
