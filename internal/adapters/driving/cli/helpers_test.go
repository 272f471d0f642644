package cli

import (
	"bytes"
	"context"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clausecheck/internal/adapters/driven/ai"
	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
	"github.com/custodia-labs/clausecheck/internal/logger"
	"github.com/custodia-labs/clausecheck/internal/report"
	"github.com/custodia-labs/clausecheck/internal/watcher"
)

const testKey = "gsk-test-secret-value"

// fakeLLM answers every prompt with a fixed verdict.
type fakeLLM struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeLLM) Generate(_ context.Context, _ string, _ driven.GenerateOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return "- Compliance NO\n- Missing elements: clause not found", nil
}

func (f *fakeLLM) ModelName() string { return "fake" }
func (f *fakeLLM) Close() error      { return nil }

// harness replaces the seams and captures output for one test.
type harness struct {
	env     map[string]string
	llm     *fakeLLM
	keys    []domain.Secret
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
	logs    *bytes.Buffer
	tty     bool
	typed   string
	prompts int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	h := &harness{
		env:    map[string]string{},
		llm:    &fakeLLM{},
		stdout: new(bytes.Buffer),
		stderr: new(bytes.Buffer),
		logs:   new(bytes.Buffer),
	}

	origLLM, origEmb, origEnv := newLLMService, newEmbeddingService, getenv
	origTTY, origRead, origTUI := stdinIsTerminal, readPassword, runTUIApp

	newLLMService = func(_ context.Context, s domain.LLMSettings) (driven.LLMService, error) {
		h.keys = append(h.keys, s.APIKey)
		return h.llm, nil
	}
	newEmbeddingService = ai.CreateEmbeddingService
	getenv = func(name string) string { return h.env[name] }
	stdinIsTerminal = func() bool { return h.tty }
	readPassword = func() ([]byte, error) {
		h.prompts++
		return []byte(h.typed), nil
	}
	logger.SetOutput(h.logs)
	resetFlags()

	t.Cleanup(func() {
		newLLMService, newEmbeddingService, getenv = origLLM, origEmb, origEnv
		stdinIsTerminal, readPassword, runTUIApp = origTTY, origRead, origTUI
		logger.SetVerbose(false)
		logger.SetOutput(os.Stderr)
		logger.ResetSecrets()
		resetFlags()
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	return h
}

// run executes the root command with args.
func (h *harness) run(args ...string) error {
	h.stdout.Reset()
	h.stderr.Reset()
	rootCmd.SetOut(h.stdout)
	rootCmd.SetErr(h.stderr)
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

// resetFlags restores every package-level flag variable, since cobra keeps
// parsed values between executions.
func resetFlags() {
	verbose, configPath = false, ""
	checkType, checkOutput, checkFormat, checkOpts = "", "", string(report.FormatCSV), overrides{}
	rulesFormat, rulesPath = "table", ""
	configForce = false
	serveListen, serveOpts = "", overrides{}
	mcpPort, mcpOpts = 0, overrides{}
	watchOutDir, watchFormat, watchDebounce, watchOpts = "", string(report.FormatCSV), watcher.DefaultDebounce, overrides{}
	tuiType, tuiOpts = "", overrides{}
}

// writeContract writes a contract that matches governing_law by keyword.
func writeContract(t *testing.T, dir, name string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("MASTER SERVICES AGREEMENT\n\n")
	b.WriteString("The governing law of this Agreement is the law of the State of Delaware.\n\n")
	for i := 0; i < 10; i++ {
		b.WriteString("The provider performs the services with reasonable skill and care.\n\n")
	}
	path := dir + "/" + name
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))
	return path
}
