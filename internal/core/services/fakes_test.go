package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
)

// scriptedLLM records every prompt and replies from a script.
type scriptedLLM struct {
	mu       sync.Mutex
	prompts  []string
	reply    func(prompt string) (string, error)
	delay    time.Duration
	deadline []bool
}

func newScriptedLLM(reply func(prompt string) (string, error)) *scriptedLLM {
	return &scriptedLLM{reply: reply}
}

func (l *scriptedLLM) Generate(ctx context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	l.mu.Lock()
	l.prompts = append(l.prompts, prompt)
	_, hasDeadline := ctx.Deadline()
	l.deadline = append(l.deadline, hasDeadline)
	delay := l.delay
	l.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if l.reply == nil {
		return "- Compliance NO", nil
	}
	return l.reply(prompt)
}

func (l *scriptedLLM) ModelName() string { return "scripted" }
func (l *scriptedLLM) Close() error      { return nil }

func (l *scriptedLLM) calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.prompts)
}

func (l *scriptedLLM) promptsSnapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.prompts...)
}

// ruleFromPrompt extracts the description line from an adjudication prompt.
func ruleFromPrompt(prompt string) string {
	for _, line := range strings.Split(prompt, "\n") {
		if strings.HasPrefix(line, "Rule: ") {
			return strings.TrimPrefix(line, "Rule: ")
		}
	}
	return ""
}

// stubRetriever returns fixed chunks or an error.
type stubRetriever struct {
	mu      sync.Mutex
	chunks  []domain.Chunk
	err     error
	queries []string
	ks      []int
}

func (r *stubRetriever) Search(_ context.Context, query string, k int) ([]domain.Chunk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, query)
	r.ks = append(r.ks, k)
	if r.err != nil {
		return nil, r.err
	}
	if k < len(r.chunks) {
		return r.chunks[:k], nil
	}
	return r.chunks, nil
}

// recordingMetrics counts observations.
type recordingMetrics struct {
	mu      sync.Mutex
	methods map[domain.Method]int
	runs    int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{methods: make(map[domain.Method]int)}
}

func (m *recordingMetrics) ObserveRule(_ domain.ComplianceRule, method domain.Method, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.methods[method]++
}

func (m *recordingMetrics) ObserveRun(_ *domain.Report, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs++
}

// fixedEmbedder maps texts to vectors by a caller-supplied function.
type fixedEmbedder struct {
	vec      func(text string) []float32
	batchErr error
	fits     int
}

func (e *fixedEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return e.vec(text), nil
}

func (e *fixedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if e.batchErr != nil {
		return nil, e.batchErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i], _ = e.Embed(ctx, t)
	}
	return out, nil
}

func (e *fixedEmbedder) Dimensions() int   { return 2 }
func (e *fixedEmbedder) ModelName() string { return "fixed" }
func (e *fixedEmbedder) Close() error      { return nil }

// fittingEmbedder is a fixedEmbedder that also counts Fit calls.
type fittingEmbedder struct {
	fixedEmbedder
}

func (e *fittingEmbedder) Fit(_ context.Context, _ []string) error {
	e.fits++
	return nil
}

func testCatalog(rules ...domain.ComplianceRule) *domain.Catalog {
	c, err := domain.NewCatalog(rules)
	if err != nil {
		panic(err)
	}
	return c
}

func testSession() domain.SessionConfig {
	s := domain.DefaultSessionConfig()
	s.LLM.APIKey = domain.NewSecret("gsk-live-secret")
	return s
}
