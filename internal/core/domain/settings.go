package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an LLM adjudicator provider.
type AIProvider string

// Available LLM providers.
const (
	// AIProviderGroq is Groq's OpenAI-compatible API.
	AIProviderGroq AIProvider = "groq"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini is Google's Gemini API.
	AIProviderGemini AIProvider = "gemini"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderGroq, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini, AIProviderOllama:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p != AIProviderOllama
}

// DefaultAPIKeyEnv returns the environment variable conventionally holding
// the provider's key.
func (p AIProvider) DefaultAPIKeyEnv() string {
	switch p {
	case AIProviderGroq:
		return "GROQ_API_KEY"
	case AIProviderOpenAI:
		return "OPENAI_API_KEY"
	case AIProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case AIProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderGroq:
		return "Groq (cloud, OpenAI-compatible)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Gemini (cloud)"
	case AIProviderOllama:
		return "Ollama (local)"
	default:
		return unknownDescription
	}
}

// EmbeddingProvider identifies an embedding backend.
type EmbeddingProvider string

// Available embedding providers.
const (
	// EmbeddingProviderTFIDF is the local, deterministic TF-IDF embedder.
	EmbeddingProviderTFIDF EmbeddingProvider = "tfidf"

	// EmbeddingProviderOpenAI is an OpenAI-compatible embeddings endpoint.
	EmbeddingProviderOpenAI EmbeddingProvider = "openai"

	// EmbeddingProviderOllama is local Ollama instance.
	EmbeddingProviderOllama EmbeddingProvider = "ollama"
)

// IsValid returns true if the embedding provider is recognised.
func (p EmbeddingProvider) IsValid() bool {
	switch p {
	case EmbeddingProviderTFIDF, EmbeddingProviderOpenAI, EmbeddingProviderOllama:
		return true
	default:
		return false
	}
}

// IsLocal returns true if the provider needs no network.
func (p EmbeddingProvider) IsLocal() bool {
	return p == EmbeddingProviderTFIDF
}

// String returns the string representation.
func (p EmbeddingProvider) String() string {
	return string(p)
}

// Pipeline defaults.
const (
	// DefaultChunkSize is the chunk length in characters.
	DefaultChunkSize = 800

	// DefaultChunkOverlap is the overlap between consecutive chunks in characters.
	DefaultChunkOverlap = 200

	// DefaultTopK is the number of chunks retrieved as LLM context.
	DefaultTopK = 2

	// DefaultWorkers evaluates rules sequentially.
	DefaultWorkers = 1

	// DefaultLLMTimeout bounds a single adjudication call.
	DefaultLLMTimeout = 60 * time.Second

	// DefaultLLMProvider is the adjudicator used when none is configured.
	DefaultLLMProvider = AIProviderGroq

	// DefaultLLMModel is the adjudicator model.
	DefaultLLMModel = "llama-3.3-70b-versatile"

	// DefaultGroqBaseURL is Groq's OpenAI-compatible endpoint.
	DefaultGroqBaseURL = "https://api.groq.com/openai/v1"

	// DefaultReportFilename is the name of the CSV artifact.
	DefaultReportFilename = "compliance_report.csv"
)

// LLMSettings holds adjudicator configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// APIKey is held for the session only and never written anywhere.
	APIKey Secret

	// Timeout bounds each adjudication call.
	Timeout time.Duration

	// Temperature controls randomness; 0 is deterministic.
	Temperature float64

	// MaxTokens caps the response length. Zero leaves the provider default.
	MaxTokens int
}

// IsConfigured returns true if the provider is valid and has its credential.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey.IsEmpty() {
		return false
	}
	return true
}

// EmbeddingSettings holds embedding configuration.
type EmbeddingSettings struct {
	// Provider is the embedding backend.
	Provider EmbeddingProvider

	// Model is the embedding model name (ignored by tfidf).
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is used by remote embedders only.
	APIKey Secret

	// CacheSize is the number of cached query embeddings. Zero disables the cache.
	CacheSize int

	// CacheTTL is how long cached embeddings live.
	CacheTTL time.Duration
}
