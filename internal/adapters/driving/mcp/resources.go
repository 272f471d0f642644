package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for clausecheck resources.
	uriScheme = "clausecheck://"

	// rulesURI lists the whole catalog.
	rulesURI = uriScheme + "rules"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         rulesURI,
		Name:        "rules",
		Description: "The compliance rule catalog in evaluation order",
		MIMEType:    "application/json",
	}, s.handleRulesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: rulesURI + "/{ruleId}",
		Name:        "rule",
		Description: "A single compliance rule",
		MIMEType:    "application/json",
	}, s.handleRuleResource)
}

// handleRulesResource returns every rule as JSON.
func (s *Server) handleRulesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	rules := s.ports.Rules.List()
	infos := make([]RuleInfo, len(rules))
	for i, r := range rules {
		infos[i] = ruleInfo(r.ID, r.Description, r.Keywords, string(r.Severity))
	}
	return jsonResource(req.Params.URI, infos)
}

// handleRuleResource returns one rule by ID.
func (s *Server) handleRuleResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id := extractRuleID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	r, err := s.ports.Rules.Get(id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting rule: %w", err)
	}
	return jsonResource(req.Params.URI, ruleInfo(r.ID, r.Description, r.Keywords, string(r.Severity)))
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractRuleID extracts the rule ID from a URI like clausecheck://rules/{ruleId}.
func extractRuleID(uri string) string {
	id, ok := strings.CutPrefix(uri, rulesURI+"/")
	if !ok || strings.Contains(id, "/") {
		return ""
	}
	return id
}
