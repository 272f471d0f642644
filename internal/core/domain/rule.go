package domain

import (
	"fmt"
	"strings"
)

// Severity is an informational risk tier attached to a rule.
// It is carried into the report and never influences the verdict.
type Severity string

// Available severities.
const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// ParseSeverity parses a severity case-insensitively.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(strings.ToUpper(strings.TrimSpace(s)))
	if !sev.IsValid() {
		return "", fmt.Errorf("%w: unknown severity %q", ErrInvalidInput, s)
	}
	return sev, nil
}

// IsValid returns true if the severity is recognised.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s Severity) String() string {
	return string(s)
}

// ComplianceRule is a named contractual requirement with detection keywords.
type ComplianceRule struct {
	// ID is the unique key of the rule within its catalog (e.g. "governing_law").
	ID string `json:"id" yaml:"id"`

	// Description is the human-readable requirement. It doubles as the
	// semantic search query when the keyword scan fails.
	Description string `json:"description" yaml:"description"`

	// Keywords are lowercase variants whose presence marks the rule satisfied.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// Severity is the informational risk tier.
	Severity Severity `json:"severity" yaml:"severity"`
}

// Validate checks the rule invariants.
func (r ComplianceRule) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: rule id is empty", ErrInvalidCatalog)
	}
	if strings.TrimSpace(r.Description) == "" {
		return fmt.Errorf("%w: rule %s has no description", ErrInvalidCatalog, r.ID)
	}
	if len(r.Keywords) == 0 {
		return fmt.Errorf("%w: rule %s has no keywords", ErrInvalidCatalog, r.ID)
	}
	for i, kw := range r.Keywords {
		if strings.TrimSpace(kw) == "" {
			return fmt.Errorf("%w: rule %s keyword %d is blank", ErrInvalidCatalog, r.ID, i)
		}
	}
	if !r.Severity.IsValid() {
		return fmt.Errorf("%w: rule %s has invalid severity %q", ErrInvalidCatalog, r.ID, r.Severity)
	}
	return nil
}

// normalised returns a deep copy with lowercase, trimmed keywords.
func (r ComplianceRule) normalised() ComplianceRule {
	kws := make([]string, len(r.Keywords))
	for i, kw := range r.Keywords {
		kws[i] = strings.ToLower(strings.TrimSpace(kw))
	}
	return ComplianceRule{
		ID:          strings.TrimSpace(r.ID),
		Description: strings.TrimSpace(r.Description),
		Keywords:    kws,
		Severity:    r.Severity,
	}
}

// Catalog is an immutable, ordered set of compliance rules.
// Iteration order is the order rules were supplied in and is the order
// results appear in every report.
type Catalog struct {
	rules []ComplianceRule
	index map[string]int
}

// NewCatalog validates and copies the given rules into a catalog.
func NewCatalog(rules []ComplianceRule) (*Catalog, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("%w: catalog has no rules", ErrInvalidCatalog)
	}

	c := &Catalog{
		rules: make([]ComplianceRule, 0, len(rules)),
		index: make(map[string]int, len(rules)),
	}
	for _, r := range rules {
		r = r.normalised()
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.index[r.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate rule id %s", ErrInvalidCatalog, r.ID)
		}
		c.index[r.ID] = len(c.rules)
		c.rules = append(c.rules, r)
	}
	return c, nil
}

// Rules returns a copy of the rules in catalog order.
func (c *Catalog) Rules() []ComplianceRule {
	out := make([]ComplianceRule, len(c.rules))
	for i, r := range c.rules {
		out[i] = r.normalised()
	}
	return out
}

// Len returns the number of rules.
func (c *Catalog) Len() int {
	return len(c.rules)
}

// Get returns the rule with the given id.
func (c *Catalog) Get(id string) (ComplianceRule, error) {
	i, ok := c.index[id]
	if !ok {
		return ComplianceRule{}, fmt.Errorf("rule %s: %w", id, ErrNotFound)
	}
	return c.rules[i].normalised(), nil
}
