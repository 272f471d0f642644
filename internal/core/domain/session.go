package domain

import "fmt"

// SessionConfig is the explicit configuration for one session.
// It is built once by a driving adapter and passed to every pipeline stage;
// no stage reads ambient global state.
type SessionConfig struct {
	// LLM configures the adjudicator.
	LLM LLMSettings

	// Embedding configures the semantic index embedder.
	Embedding EmbeddingSettings

	// ChunkSize is the chunk length in characters.
	ChunkSize int

	// ChunkOverlap is the overlap between consecutive chunks.
	ChunkOverlap int

	// TopK is the number of chunks retrieved as LLM context.
	TopK int

	// ScanScope selects the text the keyword scan runs against.
	ScanScope ScanScope

	// Workers bounds concurrent rule evaluation. 1 is sequential.
	Workers int
}

// DefaultSessionConfig returns a session using the default pipeline settings.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		LLM: LLMSettings{
			Provider: DefaultLLMProvider,
			Model:    DefaultLLMModel,
			BaseURL:  DefaultGroqBaseURL,
			Timeout:  DefaultLLMTimeout,
		},
		Embedding: EmbeddingSettings{
			Provider: EmbeddingProviderTFIDF,
		},
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
		TopK:         DefaultTopK,
		ScanScope:    ScanScopeFirstChunk,
		Workers:      DefaultWorkers,
	}
}

// Validate checks the session is usable. A missing credential is reported
// as ErrMissingCredential so callers can refuse to start the pipeline.
func (s SessionConfig) Validate() error {
	if !s.LLM.Provider.IsValid() {
		return fmt.Errorf("%w: unknown LLM provider %q", ErrInvalidInput, s.LLM.Provider)
	}
	if s.LLM.Provider.RequiresAPIKey() && s.LLM.APIKey.IsEmpty() {
		return fmt.Errorf("%s: %w", s.LLM.Provider, ErrMissingCredential)
	}
	if s.LLM.Timeout <= 0 {
		return fmt.Errorf("%w: llm timeout must be positive", ErrInvalidInput)
	}
	if !s.Embedding.Provider.IsValid() {
		return fmt.Errorf("%w: unknown embedding provider %q", ErrInvalidInput, s.Embedding.Provider)
	}
	if s.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive", ErrInvalidInput)
	}
	if s.ChunkOverlap < 0 || s.ChunkOverlap >= s.ChunkSize {
		return fmt.Errorf("%w: chunk overlap must be in [0, chunk size)", ErrInvalidInput)
	}
	if s.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive", ErrInvalidInput)
	}
	if !s.ScanScope.IsValid() {
		return fmt.Errorf("%w: unknown scan scope %q", ErrInvalidInput, s.ScanScope)
	}
	if s.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive", ErrInvalidInput)
	}
	return nil
}
