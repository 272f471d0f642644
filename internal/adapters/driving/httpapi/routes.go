package httpapi

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

// CheckPath accepts contract uploads.
const CheckPath = "/api/v1/check"

func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Tags:        []string{"system"},
	}, func(_ context.Context, _ *struct{}) (*HealthResponse, error) {
		return &HealthResponse{Body: HealthBody{Status: "ok", Version: s.cfg.Version}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "list-rules",
		Method:      http.MethodGet,
		Path:        "/api/v1/rules",
		Summary:     "List compliance rules in evaluation order",
		Tags:        []string{"rules"},
	}, s.handleListRules)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-rule",
		Method:      http.MethodGet,
		Path:        "/api/v1/rules/{id}",
		Summary:     "Get one compliance rule",
		Tags:        []string{"rules"},
	}, s.handleGetRule)

	// The upload streams a CSV attachment, so it is served by chi directly.
	s.router.Post(CheckPath, s.handleCheck)

	if s.services.Metrics != nil {
		s.router.Handle("/metrics", s.services.Metrics)
	}
}

// HealthBody is the JSON body of the health endpoint response.
type HealthBody struct {
	Status  string `json:"status" example:"ok" doc:"Health status"`
	Version string `json:"version" doc:"Server version"`
}

// HealthResponse wraps the health check response.
type HealthResponse struct {
	Body HealthBody
}

// RuleBody is one catalog rule.
type RuleBody struct {
	ID          string   `json:"id" doc:"Rule key"`
	Description string   `json:"description" doc:"Requirement text, also the semantic query"`
	Keywords    []string `json:"keywords" doc:"Lowercase keyword variants"`
	Severity    string   `json:"severity" enum:"LOW,MEDIUM,HIGH"`
}

type listRulesOutput struct {
	Body struct {
		Rules []RuleBody `json:"rules"`
		Count int        `json:"count"`
	}
}

type getRuleInput struct {
	ID string `path:"id"`
}

type getRuleOutput struct {
	Body RuleBody
}

func (s *Server) handleListRules(_ context.Context, _ *struct{}) (*listRulesOutput, error) {
	rules := s.services.Rules.List()
	out := &listRulesOutput{}
	out.Body.Rules = make([]RuleBody, len(rules))
	for i, r := range rules {
		out.Body.Rules[i] = ruleBody(r)
	}
	out.Body.Count = len(rules)
	return out, nil
}

func (s *Server) handleGetRule(_ context.Context, input *getRuleInput) (*getRuleOutput, error) {
	r, err := s.services.Rules.Get(input.ID)
	if err != nil {
		return nil, huma.Error404NotFound("rule " + input.ID + " not found")
	}
	return &getRuleOutput{Body: ruleBody(r)}, nil
}

func ruleBody(r domain.ComplianceRule) RuleBody {
	return RuleBody{
		ID:          r.ID,
		Description: r.Description,
		Keywords:    append([]string(nil), r.Keywords...),
		Severity:    string(r.Severity),
	}
}
