// Package ollama provides an LLM service adapter using Ollama.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL  = "http://localhost:11434"
	DefaultLLMModel = "llama3.2"
)

// LLMConfig holds configuration for the Ollama LLM service.
type LLMConfig struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the LLM model to use (default: llama3.2).
	Model string

	// HTTPClient overrides the default client.
	HTTPClient *http.Client
}

// LLMService provides LLM operations using Ollama's /api/generate.
type LLMService struct {
	client  *http.Client
	baseURL string
	model   string
}

// generateRequest is the Ollama /api/generate request format.
type generateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	Stream  bool     `json:"stream"`
	Options *options `json:"options,omitempty"`
}

// options holds generation parameters. Temperature is a pointer so an
// explicit 0 is sent.
type options struct {
	NumPredict  int      `json:"num_predict,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// generateResponse is the Ollama /api/generate response format.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// NewLLMService creates a new Ollama LLM service.
func NewLLMService(cfg LLMConfig) *LLMService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}

	return &LLMService{
		client:  cfg.HTTPClient,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		model:   cfg.Model,
	}
}

// Generate produces a non-streamed completion for prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	temperature := opts.Temperature
	reqBody := generateRequest{
		Model:  s.model,
		Prompt: prompt,
		Stream: false,
		Options: &options{
			NumPredict:  opts.MaxTokens,
			Temperature: &temperature,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/generate", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if err != nil {
			return "", fmt.Errorf("ollama error (status %d): failed to read response", resp.StatusCode)
		}
		return "", fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if genResp.Error != "" {
		return "", fmt.Errorf("ollama error: %s", genResp.Error)
	}

	return strings.TrimSpace(genResp.Response), nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
