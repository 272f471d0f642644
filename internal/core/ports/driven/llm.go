package driven

import "context"

// LLMService provides language model completion for rule adjudication.
//
// Implementations include:
//   - Groq and OpenAI (openai-go, OpenAI-compatible chat completions)
//   - Anthropic (Claude)
//   - Gemini
//   - Ollama (local models)
//
// Implementations must not retry: one Generate call is one upstream request.
// Errors must never contain the API key.
type LLMService interface {
	// Generate produces text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate. Zero means provider default.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}
