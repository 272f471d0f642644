package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/clausecheck/internal/adapters/driven/ai"
	"github.com/custodia-labs/clausecheck/internal/adapters/driven/config/file"
	prommetrics "github.com/custodia-labs/clausecheck/internal/adapters/driven/metrics/prometheus"
	"github.com/custodia-labs/clausecheck/internal/adapters/driven/rules"
	"github.com/custodia-labs/clausecheck/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/clausecheck/internal/connectors"
	"github.com/custodia-labs/clausecheck/internal/connectors/dropbox"
	"github.com/custodia-labs/clausecheck/internal/connectors/filesystem"
	"github.com/custodia-labs/clausecheck/internal/connectors/gdrive"
	"github.com/custodia-labs/clausecheck/internal/connectors/github"
	"github.com/custodia-labs/clausecheck/internal/connectors/s3"
	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
	"github.com/custodia-labs/clausecheck/internal/core/services"
	"github.com/custodia-labs/clausecheck/internal/errcode"
	"github.com/custodia-labs/clausecheck/internal/logger"
	"github.com/custodia-labs/clausecheck/internal/normalisers"
	"github.com/custodia-labs/clausecheck/internal/postprocessors"
)

// Seams replaced in tests.
var (
	newLLMService       = ai.CreateLLMService
	newEmbeddingService = ai.CreateEmbeddingService
	newSources          = defaultSources
	getenv              = os.Getenv
	stdinIsTerminal     = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }
	readPassword        = func() ([]byte, error) { return term.ReadPassword(int(os.Stdin.Fd())) }
)

// overrides are flag values layered over the loaded settings. Zero values
// leave the setting alone.
type overrides struct {
	provider string
	model    string
	timeout  time.Duration
	workers  int
	scope    string
	rules    string
}

func (o overrides) apply(s *file.Settings) error {
	if o.provider != "" {
		s.LLM.Provider = strings.ToLower(o.provider)
	}
	if o.model != "" {
		s.LLM.Model = o.model
	}
	if o.timeout != 0 {
		s.LLM.Timeout = o.timeout
	}
	if o.workers != 0 {
		s.Evaluation.Workers = o.workers
	}
	if o.scope != "" {
		s.Evaluation.ScanScope = o.scope
	}
	if o.rules != "" {
		s.Rules.Path = o.rules
	}
	if errs := s.Validate(); len(errs) > 0 {
		return errcode.Wrapf(errors.Join(errs...), errcode.CodeConfigValidateInvalid, "validating flags")
	}
	return nil
}

// addOverrideFlags registers the pipeline flags shared by every command
// that runs a check.
func addOverrideFlags(cmd *cobra.Command, o *overrides) {
	cmd.Flags().StringVar(&o.provider, "provider", "", "LLM provider: groq, openai, anthropic, gemini or ollama")
	cmd.Flags().StringVar(&o.model, "model", "", "LLM model name")
	cmd.Flags().DurationVar(&o.timeout, "timeout", 0, "per-rule LLM timeout (default llm.timeout)")
	cmd.Flags().IntVar(&o.workers, "workers", 0, "rules evaluated concurrently (default evaluation.workers)")
	cmd.Flags().StringVar(&o.scope, "scope", "", "keyword scan scope: first_chunk or document")
	cmd.Flags().StringVar(&o.rules, "rules", "", "rule catalog file (.yaml or .json)")
}

// loadSettings reads the config file named by --config and applies o.
func loadSettings(o overrides) (*file.Settings, error) {
	s, err := file.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := o.apply(s); err != nil {
		return nil, err
	}
	if p := s.Path(); p != "" {
		logger.Debug("Loaded config %s", p)
	}
	return s, nil
}

// loadRules loads the catalog named in the settings, or the built-in one.
func loadRules(ctx context.Context, s *file.Settings) (*services.RuleService, error) {
	src := rules.NewSource(s.Rules.Path)
	catalog, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	logger.Debug("Loaded %d rules from %s", catalog.Len(), src.Origin())
	return services.NewRuleService(catalog, src.Origin()), nil
}

// needsKeyPrompt reports whether the provider needs a key that the
// environment does not hold.
func needsKeyPrompt(s *file.Settings) bool {
	return domain.AIProvider(s.LLM.Provider).RequiresAPIKey() && strings.TrimSpace(getenv(s.APIKeyEnv())) == ""
}

// keyLabel names the key for prompts and errors, never its value.
func keyLabel(s *file.Settings) string {
	return fmt.Sprintf("%s API key (%s)", s.LLM.Provider, s.APIKeyEnv())
}

// resolveAPIKey reads the LLM key from the environment, or from a masked
// prompt when allowed and stdin is a terminal. The key is registered with
// the logger so it is redacted everywhere.
func resolveAPIKey(cmd *cobra.Command, s *file.Settings, allowPrompt bool) (domain.Secret, error) {
	provider := domain.AIProvider(s.LLM.Provider)
	if !provider.RequiresAPIKey() {
		return domain.Secret{}, nil
	}

	env := s.APIKeyEnv()
	key := domain.NewSecret(getenv(env))
	if key.IsEmpty() && allowPrompt && stdinIsTerminal() {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s is not set. Enter %s: ", env, keyLabel(s))
		raw, err := readPassword()
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return domain.Secret{}, fmt.Errorf("reading API key: %w", err)
		}
		key = domain.NewSecret(string(raw))
	}
	if key.IsEmpty() {
		return domain.Secret{}, errcode.Wrap(
			fmt.Errorf("%s: %w (set %s)", provider, domain.ErrMissingCredential, env),
			errcode.CodeSessionCredentialAbsent, "session")
	}
	logger.RegisterSecret(key)
	return key, nil
}

// resolveEmbeddingKey reads the embedder key. Only remote embedders use one.
func resolveEmbeddingKey(s *file.Settings) domain.Secret {
	env := s.EmbeddingKeyEnv()
	if env == "" {
		return domain.Secret{}
	}
	key := domain.NewSecret(getenv(env))
	if !key.IsEmpty() {
		logger.RegisterSecret(key)
	}
	return key
}

// defaultSources registers every document source.
// Tokens are read from the environment on each fetch.
func defaultSources(s *file.Settings) driven.SourceRegistry {
	return connectors.NewRegistry(
		filesystem.New(),
		github.New(github.NewClient(connectors.EnvToken(s.Sources.GitHub.TokenEnv))),
		gdrive.New(connectors.EnvToken(s.Sources.GDrive.TokenEnv)),
		dropbox.New(connectors.EnvToken(s.Sources.Dropbox.TokenEnv), nil),
		s3.New(s3.Config{Region: s.Sources.S3.Region, Endpoint: s.Sources.S3.Endpoint}),
	)
}

// app holds the services of one session.
type app struct {
	settings   *file.Settings
	session    domain.SessionConfig
	rules      *services.RuleService
	compliance *services.ComplianceService
	sources    driven.SourceRegistry
	metrics    *prommetrics.Metrics

	llm      driven.LLMService
	embedder driven.EmbeddingService
}

// newApp builds the pipeline for llmKey. The session is validated before
// any adapter is created.
func newApp(ctx context.Context, s *file.Settings, llmKey domain.Secret) (*app, error) {
	session := s.Session(llmKey, resolveEmbeddingKey(s))
	if err := services.ValidateSession(session); err != nil {
		return nil, err
	}

	ruleSvc, err := loadRules(ctx, s)
	if err != nil {
		return nil, err
	}
	pipeline, err := postprocessors.NewChunkingPipeline(session)
	if err != nil {
		return nil, err
	}

	llm, err := newLLMService(ctx, session.LLM)
	if err != nil {
		return nil, fmt.Errorf("creating LLM service: %w", err)
	}
	embedder, err := newEmbeddingService(session.Embedding)
	if err != nil {
		llm.Close()
		return nil, fmt.Errorf("creating embedding service: %w", err)
	}

	a := &app{
		settings: s,
		session:  session,
		rules:    ruleSvc,
		sources:  newSources(s),
		metrics:  prommetrics.New(),
		llm:      llm,
		embedder: embedder,
	}
	a.compliance, err = services.NewComplianceService(services.ComplianceDeps{
		Catalog:        ruleSvc.Catalog(),
		Normalisers:    normalisers.NewDefaultRegistry(),
		Pipeline:       pipeline,
		Embedder:       embedder,
		NewVectorIndex: func() driven.VectorIndex { return memory.New() },
		LLM:            llm,
		Sources:        a.sources,
		Metrics:        a.metrics,
	}, session)
	if err != nil {
		a.Close()
		return nil, err
	}
	logger.Debug("Session: provider=%s model=%s scope=%s workers=%d",
		session.LLM.Provider, llm.ModelName(), session.ScanScope, session.Workers)
	return a, nil
}

// buildApp loads settings, resolves the key and builds the pipeline.
func buildApp(cmd *cobra.Command, o overrides) (*app, error) {
	s, err := loadSettings(o)
	if err != nil {
		return nil, err
	}
	key, err := resolveAPIKey(cmd, s, true)
	if err != nil {
		return nil, err
	}
	return newApp(cmd.Context(), s, key)
}

// Close releases the AI adapters.
func (a *app) Close() {
	if a.embedder != nil {
		if err := a.embedder.Close(); err != nil {
			logger.Warn("Failed to close embedder: %v", err)
		}
	}
	if a.llm != nil {
		if err := a.llm.Close(); err != nil {
			logger.Warn("Failed to close LLM service: %v", err)
		}
	}
}
