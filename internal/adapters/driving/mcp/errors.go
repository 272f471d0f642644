// Package mcp provides an MCP (Model Context Protocol) server adapter for
// clausecheck. It lets AI assistants check contracts and read the rule
// catalog.
package mcp

import "errors"

var (
	// ErrMissingComplianceService is returned when the compliance service is not provided.
	ErrMissingComplianceService = errors.New("mcp: compliance service is required")

	// ErrMissingRuleService is returned when the rule service is not provided.
	ErrMissingRuleService = errors.New("mcp: rule service is required")
)
