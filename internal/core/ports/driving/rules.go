package driving

import "github.com/custodia-labs/clausecheck/internal/core/domain"

// RuleService exposes the loaded rule catalog.
type RuleService interface {
	// List returns every rule in catalog order.
	List() []domain.ComplianceRule

	// Get returns one rule by id, or domain.ErrNotFound.
	Get(id string) (domain.ComplianceRule, error)
}
