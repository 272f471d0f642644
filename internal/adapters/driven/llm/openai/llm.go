// Package openai provides an LLM service adapter for OpenAI-compatible chat
// completion APIs, which covers both OpenAI and Groq.
package openai

import (
	"context"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL  = "https://api.openai.com/v1"
	DefaultLLMModel = "gpt-4o-mini"
)

// LLMConfig holds configuration for the chat completion service.
type LLMConfig struct {
	// APIKey is required.
	APIKey domain.Secret

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Groq uses https://api.groq.com/openai/v1.
	BaseURL string

	// Model is the LLM model to use (default: gpt-4o-mini).
	Model string
}

// LLMService sends one chat completion request per Generate call.
type LLMService struct {
	client openaisdk.Client
	apiKey domain.Secret
	model  string
}

// NewLLMService creates a new chat completion service. The client never
// retries; callers bound each call with the context deadline.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.APIKey.IsEmpty() {
		return nil, fmt.Errorf("openai: %w", domain.ErrMissingCredential)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}

	client := openaisdk.NewClient(
		option.WithAPIKey(cfg.APIKey.Reveal()),
		option.WithBaseURL(cfg.BaseURL),
		option.WithMaxRetries(0),
	)

	return &LLMService{
		client: client,
		apiKey: cfg.APIKey,
		model:  cfg.Model,
	}, nil
}

// Generate sends prompt as a single user message.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	params := openaisdk.ChatCompletionNewParams{
		Model: shared.ChatModel(s.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.UserMessage(prompt),
		},
		Temperature: param.NewOpt(opts.Temperature),
	}
	if opts.MaxTokens > 0 {
		params.MaxCompletionTokens = param.NewOpt(int64(opts.MaxTokens))
	}

	resp, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai: %s", s.apiKey.Redact(err.Error()))
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
