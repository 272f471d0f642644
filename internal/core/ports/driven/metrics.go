package driven

import (
	"time"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

// Metrics records pipeline observations.
type Metrics interface {
	// ObserveRule records how one rule was settled and how long it took.
	ObserveRule(rule domain.ComplianceRule, method domain.Method, elapsed time.Duration)

	// ObserveRun records a finished run.
	ObserveRun(report *domain.Report, elapsed time.Duration)
}
