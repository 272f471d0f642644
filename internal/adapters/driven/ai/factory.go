// Package ai provides factory functions for creating AI service adapters
// from a session's settings.
package ai

import (
	"context"
	"fmt"

	"github.com/custodia-labs/clausecheck/internal/adapters/driven/embedding/cache"
	ollamaembed "github.com/custodia-labs/clausecheck/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/clausecheck/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/clausecheck/internal/adapters/driven/embedding/tfidf"
	anthropicllm "github.com/custodia-labs/clausecheck/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/custodia-labs/clausecheck/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/custodia-labs/clausecheck/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/clausecheck/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
)

// CreateLLMService creates the adjudicator for settings.Provider.
func CreateLLMService(ctx context.Context, settings domain.LLMSettings) (driven.LLMService, error) {
	if settings.Provider.RequiresAPIKey() && settings.APIKey.IsEmpty() {
		return nil, fmt.Errorf("%s: %w", settings.Provider, domain.ErrMissingCredential)
	}

	switch settings.Provider {
	case domain.AIProviderGroq:
		baseURL := settings.BaseURL
		if baseURL == "" {
			baseURL = domain.DefaultGroqBaseURL
		}
		model := settings.Model
		if model == "" {
			model = domain.DefaultLLMModel
		}
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: baseURL,
			Model:   model,
		})

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderGemini:
		return geminillm.NewLLMService(ctx, geminillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider %q", domain.ErrInvalidInput, settings.Provider)
	}
}

// CreateEmbeddingService creates the semantic index embedder, wrapped in an
// LRU cache when settings.CacheSize is positive.
func CreateEmbeddingService(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	var (
		svc driven.EmbeddingService
		err error
	)

	switch settings.Provider {
	case domain.EmbeddingProviderTFIDF, "":
		svc = tfidf.NewEmbeddingService()

	case domain.EmbeddingProviderOpenAI:
		svc, err = openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.EmbeddingProviderOllama:
		svc = ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider %q", domain.ErrInvalidInput, settings.Provider)
	}
	if err != nil {
		return nil, err
	}

	return cache.Wrap(svc, settings.CacheSize, settings.CacheTTL), nil
}
