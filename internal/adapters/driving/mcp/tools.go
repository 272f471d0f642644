package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/clausecheck/internal/report"
)

// CheckInput is the input schema for the check_contract tool.
type CheckInput struct {
	URI string `json:"uri" jsonschema:"path to a local .txt, .pdf or .docx contract, or a github://, gdrive:// or s3:// URI"`
}

// CheckOutput is the output schema for the check_contract tool.
type CheckOutput struct {
	ReportID     string    `json:"report_id"`
	DocumentURI  string    `json:"document_uri"`
	GeneratedAt  string    `json:"generated_at"`
	Summary      string    `json:"summary"`
	Compliant    int       `json:"compliant"`
	NonCompliant int       `json:"non_compliant"`
	LLMErrors    int       `json:"llm_errors"`
	Results      []RuleRow `json:"results"`
}

// RuleRow is one report line.
type RuleRow struct {
	RuleID          string `json:"rule_id"`
	Rule            string `json:"rule"`
	Severity        string `json:"severity"`
	Compliant       string `json:"compliant"`
	MatchedKeywords string `json:"matched_keywords"`
	Evidence        string `json:"evidence"`
	Method          string `json:"method"`
}

// ListRulesInput is the input schema for the list_rules tool.
type ListRulesInput struct {
	Severity string `json:"severity,omitempty" jsonschema:"only return rules of this severity (LOW, MEDIUM or HIGH)"`
}

// ListRulesOutput is the output schema for the list_rules tool.
type ListRulesOutput struct {
	Rules []RuleInfo `json:"rules"`
	Count int        `json:"count"`
}

// RuleInfo describes one catalog rule.
type RuleInfo struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	Severity    string   `json:"severity"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "check_contract",
		Description: "Check a contract against every compliance rule and return one row per rule",
	}, s.handleCheck)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_rules",
		Description: "List the compliance rules contracts are checked against",
	}, s.handleListRules)
}

// handleCheck runs one compliance check.
func (s *Server) handleCheck(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CheckInput,
) (*mcp.CallToolResult, CheckOutput, error) {
	uri := strings.TrimSpace(input.URI)
	if uri == "" {
		return nil, CheckOutput{}, errors.New("uri is required")
	}

	rep, err := s.ports.Compliance.CheckURI(ctx, uri)
	if err != nil {
		return nil, CheckOutput{}, fmt.Errorf("checking %s: %w", uri, err)
	}

	summary := report.Summarise(rep)
	rows := report.Rows(rep)
	output := CheckOutput{
		ReportID:     rep.ID,
		DocumentURI:  rep.DocumentURI,
		GeneratedAt:  rep.GeneratedAt.Format(time.RFC3339),
		Summary:      summary.String(),
		Compliant:    summary.Compliant,
		NonCompliant: summary.NonCompliant,
		LLMErrors:    summary.LLMErrors,
		Results:      make([]RuleRow, len(rows)),
	}
	for i, r := range rows {
		output.Results[i] = RuleRow(r)
	}

	return nil, output, nil
}

// handleListRules returns the catalog, optionally filtered by severity.
func (s *Server) handleListRules(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ListRulesInput,
) (*mcp.CallToolResult, ListRulesOutput, error) {
	want := strings.ToUpper(strings.TrimSpace(input.Severity))

	output := ListRulesOutput{Rules: []RuleInfo{}}
	for _, r := range s.ports.Rules.List() {
		if want != "" && string(r.Severity) != want {
			continue
		}
		output.Rules = append(output.Rules, ruleInfo(r.ID, r.Description, r.Keywords, string(r.Severity)))
	}
	output.Count = len(output.Rules)

	return nil, output, nil
}

func ruleInfo(id, description string, keywords []string, severity string) RuleInfo {
	return RuleInfo{
		ID:          id,
		Description: description,
		Keywords:    append([]string(nil), keywords...),
		Severity:    severity,
	}
}
