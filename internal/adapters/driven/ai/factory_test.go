package ai

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clausecheck/internal/adapters/driven/embedding/cache"
	"github.com/custodia-labs/clausecheck/internal/adapters/driven/embedding/tfidf"
	anthropicllm "github.com/custodia-labs/clausecheck/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/custodia-labs/clausecheck/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/custodia-labs/clausecheck/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/clausecheck/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

func TestCreateLLMService(t *testing.T) {
	key := domain.NewSecret("test-key")
	ctx := context.Background()

	tests := []struct {
		name     string
		settings domain.LLMSettings
		wantType any
		wantErr  error
	}{
		{"groq", domain.LLMSettings{Provider: domain.AIProviderGroq, APIKey: key, Model: domain.DefaultLLMModel}, &openaillm.LLMService{}, nil},
		{"openai", domain.LLMSettings{Provider: domain.AIProviderOpenAI, APIKey: key}, &openaillm.LLMService{}, nil},
		{"anthropic", domain.LLMSettings{Provider: domain.AIProviderAnthropic, APIKey: key}, &anthropicllm.LLMService{}, nil},
		{"gemini", domain.LLMSettings{Provider: domain.AIProviderGemini, APIKey: key}, &geminillm.LLMService{}, nil},
		{"ollama without key", domain.LLMSettings{Provider: domain.AIProviderOllama}, &ollamallm.LLMService{}, nil},
		{"groq without key", domain.LLMSettings{Provider: domain.AIProviderGroq}, nil, domain.ErrMissingCredential},
		{"anthropic without key", domain.LLMSettings{Provider: domain.AIProviderAnthropic}, nil, domain.ErrMissingCredential},
		{"unknown", domain.LLMSettings{Provider: "mystery", APIKey: key}, nil, domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(ctx, tt.settings)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, svc)
		})
	}
}

func TestCreateLLMService_GroqModel(t *testing.T) {
	svc, err := CreateLLMService(context.Background(), domain.LLMSettings{
		Provider: domain.AIProviderGroq,
		APIKey:   domain.NewSecret("k"),
	})
	require.NoError(t, err)
	assert.Equal(t, "llama-3.3-70b-versatile", svc.ModelName())
}

func TestCreateEmbeddingService(t *testing.T) {
	svc, err := CreateEmbeddingService(domain.EmbeddingSettings{Provider: domain.EmbeddingProviderTFIDF})
	require.NoError(t, err)
	assert.IsType(t, &tfidf.EmbeddingService{}, svc)

	svc, err = CreateEmbeddingService(domain.EmbeddingSettings{})
	require.NoError(t, err)
	assert.IsType(t, &tfidf.EmbeddingService{}, svc)

	svc, err = CreateEmbeddingService(domain.EmbeddingSettings{
		Provider:  domain.EmbeddingProviderTFIDF,
		CacheSize: 64,
		CacheTTL:  time.Minute,
	})
	require.NoError(t, err)
	assert.IsType(t, &cache.EmbeddingService{}, svc)

	svc, err = CreateEmbeddingService(domain.EmbeddingSettings{Provider: domain.EmbeddingProviderOllama})
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", svc.ModelName())

	_, err = CreateEmbeddingService(domain.EmbeddingSettings{Provider: domain.EmbeddingProviderOpenAI})
	assert.ErrorIs(t, err, domain.ErrMissingCredential)

	_, err = CreateEmbeddingService(domain.EmbeddingSettings{Provider: "word2vec"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
