package mcp

import (
	"context"
	"time"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

// mockComplianceService is a mock implementation of driving.ComplianceService.
type mockComplianceService struct {
	report *domain.Report
	err    error
	uris   []string
}

func (m *mockComplianceService) Check(_ context.Context, raw *domain.RawDocument) (*domain.Report, error) {
	m.uris = append(m.uris, raw.URI)
	return m.report, m.err
}

func (m *mockComplianceService) CheckURI(_ context.Context, uri string) (*domain.Report, error) {
	m.uris = append(m.uris, uri)
	return m.report, m.err
}

// mockRuleService is a mock implementation of driving.RuleService.
type mockRuleService struct {
	rules []domain.ComplianceRule
}

func (m *mockRuleService) List() []domain.ComplianceRule {
	return m.rules
}

func (m *mockRuleService) Get(id string) (domain.ComplianceRule, error) {
	for _, r := range m.rules {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.ComplianceRule{}, domain.ErrNotFound
}

var testRules = []domain.ComplianceRule{
	{ID: "governing_law", Description: "Governing law and jurisdiction must be specified",
		Keywords: []string{"governing law", "laws of"}, Severity: domain.SeverityHigh},
	{ID: "force_majeure", Description: "Force majeure clause should be included",
		Keywords: []string{"force majeure"}, Severity: domain.SeverityLow},
}

func testReport() *domain.Report {
	return &domain.Report{
		ID:          "rep-1",
		DocumentURI: "/contracts/msa.pdf",
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Results: []domain.EvaluationResult{
			{Rule: testRules[0], Compliant: true, MatchedKeywords: []string{"laws of"},
				Evidence: domain.KeywordEvidence, Method: domain.MethodKeyword},
			{Rule: testRules[1], Evidence: "- Compliance NO", Method: domain.MethodLLM},
		},
	}
}

func newTestServer(compliance *mockComplianceService) *Server {
	server, err := NewServer(&Ports{Compliance: compliance, Rules: &mockRuleService{rules: testRules}}, "test")
	if err != nil {
		panic(err)
	}
	return server
}
