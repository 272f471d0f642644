// Package anthropic provides an LLM service adapter using the Anthropic API.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultModel = "claude-3-5-sonnet-latest"

	// DefaultMaxTokens is sent when the caller leaves MaxTokens unset;
	// the Messages API requires one.
	DefaultMaxTokens = 1024
)

// Config holds configuration for the Anthropic LLM service.
type Config struct {
	// APIKey is required.
	APIKey domain.Secret

	// BaseURL overrides the SDK default endpoint.
	BaseURL string

	// Model is the LLM model to use (default: claude-3-5-sonnet-latest).
	Model string
}

// LLMService sends one Messages request per Generate call.
type LLMService struct {
	client anthropicsdk.Client
	apiKey domain.Secret
	model  string
}

// NewLLMService creates a new Anthropic LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey.IsEmpty() {
		return nil, fmt.Errorf("anthropic: %w", domain.ErrMissingCredential)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey.Reveal()),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &LLMService{
		client: anthropicsdk.NewClient(opts...),
		apiKey: cfg.APIKey,
		model:  cfg.Model,
	}, nil
}

// Generate sends prompt as a single user turn and joins the text blocks.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	maxTokens := int64(opts.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	msg, err := s.client.Messages.New(ctx, anthropicsdk.MessageNewParams{
		Model:     anthropicsdk.Model(s.model),
		MaxTokens: maxTokens,
		Messages: []anthropicsdk.MessageParam{
			anthropicsdk.NewUserMessage(anthropicsdk.NewTextBlock(prompt)),
		},
		Temperature: anthropicsdk.Float(opts.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("anthropic: %s", s.apiKey.Redact(err.Error()))
	}

	var out strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(out.String()), nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
