package domain

import (
	"strings"
	"time"
)

// KeywordEvidence is the fixed evidence recorded for keyword matches.
const KeywordEvidence = "Keyword match found. Likely compliant."

// LLMErrorPrefix tags evidence produced by a failed adjudication.
const LLMErrorPrefix = "LLM ERROR: "

// Method records how a verdict was reached.
type Method string

// Evaluation methods.
const (
	// MethodKeyword means a keyword variant was found; no LLM call was made.
	MethodKeyword Method = "keyword"

	// MethodLLM means the LLM adjudicated and its response is the evidence.
	MethodLLM Method = "llm"

	// MethodLLMError means adjudication failed and the evidence carries the reason.
	MethodLLMError Method = "llm_error"
)

// EvaluationResult is the verdict for one rule in one run.
type EvaluationResult struct {
	// Rule is the evaluated rule.
	Rule ComplianceRule

	// Compliant is true only for keyword matches. LLM verdicts are stored
	// as evidence and never parsed.
	Compliant bool

	// MatchedKeywords lists matched variants in catalog keyword order.
	MatchedKeywords []string

	// Evidence is the keyword notice, the raw LLM response or an
	// LLM ERROR string. Never empty.
	Evidence string

	// Method is how the verdict was reached.
	Method Method
}

// CompliantLabel renders the compliant flag as YES or NO.
func (r EvaluationResult) CompliantLabel() string {
	if r.Compliant {
		return "YES"
	}
	return "NO"
}

// MatchedLabel renders matched keywords comma-joined, or "None".
func (r EvaluationResult) MatchedLabel() string {
	if len(r.MatchedKeywords) == 0 {
		return "None"
	}
	return strings.Join(r.MatchedKeywords, ", ")
}

// ScanScope selects the text the keyword scan runs against.
type ScanScope string

// Available scan scopes.
const (
	// ScanScopeFirstChunk scans only the first chunk of the document.
	ScanScopeFirstChunk ScanScope = "first_chunk"

	// ScanScopeDocument scans the whole extracted text.
	ScanScopeDocument ScanScope = "document"
)

// IsValid returns true if the scope is recognised.
func (s ScanScope) IsValid() bool {
	return s == ScanScopeFirstChunk || s == ScanScopeDocument
}

// String returns the string representation.
func (s ScanScope) String() string {
	return string(s)
}

// Report is the outcome of one compliance run over one document.
type Report struct {
	// ID identifies the run.
	ID string

	// DocumentURI is where the document came from.
	DocumentURI string

	// DocumentTitle is the extracted title.
	DocumentTitle string

	// ChunkCount is the number of chunks indexed.
	ChunkCount int

	// ScanScope is the keyword scan scope used.
	ScanScope ScanScope

	// GeneratedAt is when evaluation finished.
	GeneratedAt time.Time

	// Results holds one entry per rule, in catalog order.
	Results []EvaluationResult
}

// Compliant returns the number of compliant rows.
func (r *Report) Compliant() int {
	n := 0
	for _, res := range r.Results {
		if res.Compliant {
			n++
		}
	}
	return n
}

// NonCompliant returns the number of non-compliant rows.
func (r *Report) NonCompliant() int {
	return len(r.Results) - r.Compliant()
}

// LLMErrors returns the number of rows whose adjudication failed.
func (r *Report) LLMErrors() int {
	n := 0
	for _, res := range r.Results {
		if res.Method == MethodLLMError {
			n++
		}
	}
	return n
}
