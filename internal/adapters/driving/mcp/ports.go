package mcp

import (
	"github.com/custodia-labs/clausecheck/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
type Ports struct {
	// Compliance runs checks.
	Compliance driving.ComplianceService

	// Rules exposes the catalog.
	Rules driving.RuleService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Compliance == nil {
		return ErrMissingComplianceService
	}
	if p.Rules == nil {
		return ErrMissingRuleService
	}
	return nil
}
