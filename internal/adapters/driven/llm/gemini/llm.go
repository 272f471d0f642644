// Package gemini provides an LLM service adapter using the Gemini API.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// DefaultModel is used when none is configured.
const DefaultModel = "gemini-2.0-flash"

// Config holds configuration for the Gemini LLM service.
type Config struct {
	// APIKey is required.
	APIKey domain.Secret

	// BaseURL overrides the Gemini API endpoint.
	BaseURL string

	// Model is the LLM model to use (default: gemini-2.0-flash).
	Model string
}

// LLMService sends one GenerateContent request per Generate call.
type LLMService struct {
	client *genai.Client
	apiKey domain.Secret
	model  string
}

// NewLLMService creates a new Gemini LLM service.
func NewLLMService(ctx context.Context, cfg Config) (*LLMService, error) {
	if cfg.APIKey.IsEmpty() {
		return nil, fmt.Errorf("gemini: %w", domain.ErrMissingCredential)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey.Reveal(),
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %s", cfg.APIKey.Redact(err.Error()))
	}

	return &LLMService{client: client, apiKey: cfg.APIKey, model: cfg.Model}, nil
}

// Generate sends prompt as a single text part.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(opts.Temperature)),
	}
	if opts.MaxTokens > 0 {
		config.MaxOutputTokens = int32(opts.MaxTokens)
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini: %s", s.apiKey.Redact(err.Error()))
	}
	return strings.TrimSpace(resp.Text()), nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
