package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
	"github.com/custodia-labs/clausecheck/internal/logger"
)

// Evaluator settles each catalog rule by keyword scan, falling back to one
// LLM adjudication over retrieved context.
type Evaluator struct {
	llm     driven.LLMService
	metrics driven.Metrics
	secret  domain.Secret
	topK    int
	timeout time.Duration
	workers int
	opts    driven.GenerateOptions
}

// NewEvaluator creates an evaluator using the session's retrieval, timeout
// and worker settings. metrics may be nil.
func NewEvaluator(llm driven.LLMService, session domain.SessionConfig, metrics driven.Metrics) *Evaluator {
	e := &Evaluator{
		llm:     llm,
		metrics: metrics,
		secret:  session.LLM.APIKey,
		topK:    session.TopK,
		timeout: session.LLM.Timeout,
		workers: session.Workers,
		opts: driven.GenerateOptions{
			MaxTokens:   session.LLM.MaxTokens,
			Temperature: session.LLM.Temperature,
		},
	}
	if e.topK <= 0 {
		e.topK = domain.DefaultTopK
	}
	if e.timeout <= 0 {
		e.timeout = domain.DefaultLLMTimeout
	}
	if e.workers <= 0 {
		e.workers = domain.DefaultWorkers
	}
	return e
}

// Evaluate returns one result per rule in catalog order. It never fails:
// adjudication problems are recorded as LLM ERROR evidence on the row.
func (e *Evaluator) Evaluate(ctx context.Context, catalog *domain.Catalog, text string, retriever Retriever) []domain.EvaluationResult {
	rules := catalog.Rules()
	results := make([]domain.EvaluationResult, len(rules))
	lowered := strings.ToLower(text)

	if e.workers == 1 {
		for i, rule := range rules {
			results[i] = e.evaluateRule(ctx, rule, lowered, retriever)
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, rule := range rules {
		g.Go(func() error {
			results[i] = e.evaluateRule(ctx, rule, lowered, retriever)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// EvaluateRule settles a single rule against text.
func (e *Evaluator) EvaluateRule(ctx context.Context, rule domain.ComplianceRule, text string, retriever Retriever) domain.EvaluationResult {
	return e.evaluateRule(ctx, rule, strings.ToLower(text), retriever)
}

func (e *Evaluator) evaluateRule(ctx context.Context, rule domain.ComplianceRule, lowered string, retriever Retriever) domain.EvaluationResult {
	start := time.Now()
	res := e.settle(ctx, rule, lowered, retriever)
	if e.metrics != nil {
		e.metrics.ObserveRule(rule, res.Method, time.Since(start))
	}
	logger.Debug("Rule %s: method=%s compliant=%t", rule.ID, res.Method, res.Compliant)
	return res
}

func (e *Evaluator) settle(ctx context.Context, rule domain.ComplianceRule, lowered string, retriever Retriever) domain.EvaluationResult {
	if err := ctx.Err(); err != nil {
		return e.failed(rule, err.Error())
	}

	if matched := matchKeywords(rule.Keywords, lowered); len(matched) > 0 {
		return domain.EvaluationResult{
			Rule:            rule,
			Compliant:       true,
			MatchedKeywords: matched,
			Evidence:        domain.KeywordEvidence,
			Method:          domain.MethodKeyword,
		}
	}

	if retriever == nil {
		return e.failed(rule, "retrieval failed: "+domain.ErrIndexNotBuilt.Error())
	}
	chunks, err := retriever.Search(ctx, rule.Description, e.topK)
	if err != nil {
		return e.failed(rule, "retrieval failed: "+err.Error())
	}

	if e.llm == nil {
		return e.failed(rule, domain.ErrLLMUnavailable.Error())
	}
	prompt := BuildPrompt(rule.Description, JoinContext(chunks))

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	response, err := e.llm.Generate(callCtx, prompt, e.opts)
	switch {
	case err != nil && ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded):
		return e.failed(rule, fmt.Sprintf("timed out after %s", e.timeout))
	case err != nil:
		return e.failed(rule, err.Error())
	case strings.TrimSpace(response) == "":
		return e.failed(rule, "empty response")
	}

	return domain.EvaluationResult{
		Rule:     rule,
		Evidence: response,
		Method:   domain.MethodLLM,
	}
}

// failed records an adjudication failure with the API key scrubbed.
func (e *Evaluator) failed(rule domain.ComplianceRule, reason string) domain.EvaluationResult {
	reason = e.secret.Redact(reason)
	logger.Warn("Rule %s: %s", rule.ID, reason)
	return domain.EvaluationResult{
		Rule:     rule,
		Evidence: domain.LLMErrorPrefix + reason,
		Method:   domain.MethodLLMError,
	}
}

// matchKeywords returns the keywords found in lowered, in keyword order.
// Keywords are stored lowercase by the catalog.
func matchKeywords(keywords []string, lowered string) []string {
	var matched []string
	for _, kw := range keywords {
		if strings.Contains(lowered, strings.ToLower(kw)) {
			matched = append(matched, kw)
		}
	}
	return matched
}

// MatchKeywords reports the rule's keywords present in text, ignoring case.
func MatchKeywords(rule domain.ComplianceRule, text string) []string {
	return matchKeywords(rule.Keywords, strings.ToLower(text))
}
