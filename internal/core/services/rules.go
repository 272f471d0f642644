package services

import (
	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driving"
)

// Ensure RuleService implements the interface.
var _ driving.RuleService = (*RuleService)(nil)

// RuleService exposes a loaded catalog read-only.
type RuleService struct {
	catalog *domain.Catalog
	origin  string
}

// NewRuleService wraps catalog. origin names where it was loaded from.
func NewRuleService(catalog *domain.Catalog, origin string) *RuleService {
	return &RuleService{catalog: catalog, origin: origin}
}

// List returns every rule in catalog order.
func (s *RuleService) List() []domain.ComplianceRule {
	if s.catalog == nil {
		return nil
	}
	return s.catalog.Rules()
}

// Get returns the rule with the given id.
func (s *RuleService) Get(id string) (domain.ComplianceRule, error) {
	if s.catalog == nil {
		return domain.ComplianceRule{}, domain.ErrNotFound
	}
	return s.catalog.Get(id)
}

// Origin returns where the catalog came from.
func (s *RuleService) Origin() string {
	return s.origin
}

// Catalog returns the wrapped catalog.
func (s *RuleService) Catalog() *domain.Catalog {
	return s.catalog
}
