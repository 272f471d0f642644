package file

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/errcode"
)

// EnvPrefix prefixes every environment override, e.g. CLAUSECHECK_LLM_MODEL.
const EnvPrefix = "CLAUSECHECK"

// Settings is the typed view of the configuration.
type Settings struct {
	LLM        LLMConfig        `mapstructure:"llm"`
	Embedding  EmbeddingConfig  `mapstructure:"embedding"`
	Chunking   ChunkingConfig   `mapstructure:"chunking"`
	Evaluation EvaluationConfig `mapstructure:"evaluation"`
	Rules      RulesConfig      `mapstructure:"rules"`
	Server     ServerConfig     `mapstructure:"server"`
	Sources    SourcesConfig    `mapstructure:"sources"`

	path   string
	values map[string]any
}

// LLMConfig configures the adjudicator.
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"`
	Model       string        `mapstructure:"model"`
	BaseURL     string        `mapstructure:"base_url"`
	APIKeyEnv   string        `mapstructure:"api_key_env"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
}

// EmbeddingConfig configures the semantic index embedder.
type EmbeddingConfig struct {
	Provider  string        `mapstructure:"provider"`
	Model     string        `mapstructure:"model"`
	BaseURL   string        `mapstructure:"base_url"`
	APIKeyEnv string        `mapstructure:"api_key_env"`
	CacheSize int           `mapstructure:"cache_size"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
}

// ChunkingConfig sets chunk geometry in characters.
type ChunkingConfig struct {
	Size    int `mapstructure:"size"`
	Overlap int `mapstructure:"overlap"`
}

// EvaluationConfig controls rule evaluation.
type EvaluationConfig struct {
	ScanScope string `mapstructure:"scan_scope"`
	TopK      int    `mapstructure:"top_k"`
	Workers   int    `mapstructure:"workers"`
}

// RulesConfig selects the rule catalog. An empty path uses the built-in one.
type RulesConfig struct {
	Path string `mapstructure:"path"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Listen      string   `mapstructure:"listen"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// SourcesConfig configures remote document sources.
type SourcesConfig struct {
	GitHub  TokenSourceConfig `mapstructure:"github"`
	GDrive  TokenSourceConfig `mapstructure:"gdrive"`
	Dropbox TokenSourceConfig `mapstructure:"dropbox"`
	S3      S3Config          `mapstructure:"s3"`
}

// TokenSourceConfig names the environment variable holding a source token.
type TokenSourceConfig struct {
	TokenEnv string `mapstructure:"token_env"`
}

// S3Config overrides the AWS region and endpoint.
type S3Config struct {
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"`
}

// defaults is the single source of default values, keyed by dotted path.
// It seeds viper and is what WriteDefault writes.
var defaults = map[string]any{
	"llm.provider":              string(domain.DefaultLLMProvider),
	"llm.model":                 "",
	"llm.base_url":              "",
	"llm.api_key_env":           "",
	"llm.timeout":               domain.DefaultLLMTimeout.String(),
	"llm.temperature":           0.0,
	"llm.max_tokens":            0,
	"embedding.provider":        string(domain.EmbeddingProviderTFIDF),
	"embedding.model":           "",
	"embedding.base_url":        "",
	"embedding.api_key_env":     "",
	"embedding.cache_size":      256,
	"embedding.cache_ttl":       "10m",
	"chunking.size":             domain.DefaultChunkSize,
	"chunking.overlap":          domain.DefaultChunkOverlap,
	"evaluation.scan_scope":     string(domain.ScanScopeFirstChunk),
	"evaluation.top_k":          domain.DefaultTopK,
	"evaluation.workers":        domain.DefaultWorkers,
	"rules.path":                "",
	"server.listen":             "127.0.0.1:8080",
	"server.cors_origins":       []string{},
	"sources.github.token_env":  "GITHUB_TOKEN",
	"sources.gdrive.token_env":  "GDRIVE_ACCESS_TOKEN",
	"sources.dropbox.token_env": "DROPBOX_ACCESS_TOKEN",
	"sources.s3.region":         "",
	"sources.s3.endpoint":       "",
}

// DefaultPath returns ~/.clausecheck/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".clausecheck", "config.toml"), nil
}

// Load builds settings from defaults, the TOML file at path and the
// environment. A missing file at the default location is not an error; a
// missing file named explicitly is.
func Load(path string) (*Settings, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		if p, err := DefaultPath(); err == nil {
			path = p
		}
	}
	loaded := ""
	if path != "" {
		_, statErr := os.Stat(path)
		switch {
		case statErr == nil:
			v.SetConfigFile(path)
			v.SetConfigType("toml")
			if err := v.ReadInConfig(); err != nil {
				return nil, errcode.Wrapf(err, errcode.CodeConfigLoadReadFailure, "reading config %s", path)
			}
			loaded = path
		case explicit || !errors.Is(statErr, os.ErrNotExist):
			return nil, errcode.Wrapf(statErr, errcode.CodeConfigLoadReadFailure, "reading config %s", path)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, errcode.Wrapf(err, errcode.CodeConfigValidateInvalid, "unmarshalling config")
	}
	s.path = loaded
	s.values = flattenMap(v.AllSettings(), "")

	if errs := s.Validate(); len(errs) > 0 {
		return nil, errcode.Wrapf(errors.Join(errs...), errcode.CodeConfigValidateInvalid, "validating config")
	}
	return &s, nil
}

// Path returns the file the settings were read from, or "" when only
// defaults and the environment applied.
func (s *Settings) Path() string {
	return s.path
}

// Validate collects every problem rather than stopping at the first.
func (s *Settings) Validate() []error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("config: "+format+": %w", append(args, domain.ErrInvalidInput)...))
	}

	if !domain.AIProvider(s.LLM.Provider).IsValid() {
		bad("llm.provider must be one of [groq, openai, anthropic, gemini, ollama], got %q", s.LLM.Provider)
	}
	if s.LLM.Timeout <= 0 {
		bad("llm.timeout must be positive, got %s", s.LLM.Timeout)
	}
	if s.LLM.Temperature < 0 || s.LLM.Temperature > 2 {
		bad("llm.temperature must be in [0, 2], got %g", s.LLM.Temperature)
	}
	if s.LLM.MaxTokens < 0 {
		bad("llm.max_tokens must not be negative, got %d", s.LLM.MaxTokens)
	}

	if !domain.EmbeddingProvider(s.Embedding.Provider).IsValid() {
		bad("embedding.provider must be one of [tfidf, openai, ollama], got %q", s.Embedding.Provider)
	}
	if s.Embedding.CacheSize < 0 {
		bad("embedding.cache_size must not be negative, got %d", s.Embedding.CacheSize)
	}
	if s.Embedding.CacheSize > 0 && s.Embedding.CacheTTL <= 0 {
		bad("embedding.cache_ttl must be positive when the cache is enabled, got %s", s.Embedding.CacheTTL)
	}

	if s.Chunking.Size <= 0 {
		bad("chunking.size must be positive, got %d", s.Chunking.Size)
	}
	if s.Chunking.Overlap < 0 || (s.Chunking.Size > 0 && s.Chunking.Overlap >= s.Chunking.Size) {
		bad("chunking.overlap must be in [0, chunking.size), got %d", s.Chunking.Overlap)
	}

	if !domain.ScanScope(s.Evaluation.ScanScope).IsValid() {
		bad("evaluation.scan_scope must be one of [first_chunk, document], got %q", s.Evaluation.ScanScope)
	}
	if s.Evaluation.TopK <= 0 {
		bad("evaluation.top_k must be positive, got %d", s.Evaluation.TopK)
	}
	if s.Evaluation.Workers <= 0 {
		bad("evaluation.workers must be positive, got %d", s.Evaluation.Workers)
	}

	if s.Server.Listen == "" {
		bad("server.listen must not be empty")
	} else if _, _, err := net.SplitHostPort(s.Server.Listen); err != nil {
		bad("server.listen must be host:port, got %q", s.Server.Listen)
	}

	return errs
}

// APIKeyEnv returns the variable holding the LLM key: the configured name,
// or the provider's conventional one.
func (s *Settings) APIKeyEnv() string {
	if s.LLM.APIKeyEnv != "" {
		return s.LLM.APIKeyEnv
	}
	return domain.AIProvider(s.LLM.Provider).DefaultAPIKeyEnv()
}

// EmbeddingKeyEnv returns the variable holding the embedding key, falling
// back to OPENAI_API_KEY for the openai embedder.
func (s *Settings) EmbeddingKeyEnv() string {
	if s.Embedding.APIKeyEnv != "" {
		return s.Embedding.APIKeyEnv
	}
	if domain.EmbeddingProvider(s.Embedding.Provider) == domain.EmbeddingProviderOpenAI {
		return domain.AIProviderOpenAI.DefaultAPIKeyEnv()
	}
	return ""
}

// Session builds the per-session configuration. Keys are supplied by the
// caller and never read from or written to the settings.
func (s *Settings) Session(llmKey, embeddingKey domain.Secret) domain.SessionConfig {
	return domain.SessionConfig{
		LLM: domain.LLMSettings{
			Provider:    domain.AIProvider(s.LLM.Provider),
			Model:       s.LLM.Model,
			BaseURL:     s.LLM.BaseURL,
			APIKey:      llmKey,
			Timeout:     s.LLM.Timeout,
			Temperature: s.LLM.Temperature,
			MaxTokens:   s.LLM.MaxTokens,
		},
		Embedding: domain.EmbeddingSettings{
			Provider:  domain.EmbeddingProvider(s.Embedding.Provider),
			Model:     s.Embedding.Model,
			BaseURL:   s.Embedding.BaseURL,
			APIKey:    embeddingKey,
			CacheSize: s.Embedding.CacheSize,
			CacheTTL:  s.Embedding.CacheTTL,
		},
		ChunkSize:    s.Chunking.Size,
		ChunkOverlap: s.Chunking.Overlap,
		TopK:         s.Evaluation.TopK,
		ScanScope:    domain.ScanScope(s.Evaluation.ScanScope),
		Workers:      s.Evaluation.Workers,
	}
}

// Entry is one effective configuration value.
type Entry struct {
	Key   string
	Value any
}

// Entries returns every effective value sorted by key.
func (s *Settings) Entries() []Entry {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Entry, len(keys))
	for i, k := range keys {
		out[i] = Entry{Key: k, Value: s.values[k]}
	}
	return out
}

// flattenMap converts nested maps to dot-notation keys.
// E.g., {"a": {"b": 1}} becomes {"a.b": 1}.
func flattenMap(m map[string]any, prefix string) map[string]any {
	result := make(map[string]any)
	for key, value := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			for k, v := range flattenMap(nested, fullKey) {
				result[k] = v
			}
		} else {
			result[fullKey] = value
		}
	}
	return result
}

// nestMap is the inverse of flattenMap.
func nestMap(flat map[string]any) map[string]any {
	root := make(map[string]any)
	for key, value := range flat {
		parts := strings.Split(key, ".")
		node := root
		for _, p := range parts[:len(parts)-1] {
			child, ok := node[p].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[p] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = value
	}
	return root
}
