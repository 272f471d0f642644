package driving

import (
	"context"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

// ComplianceService runs the compliance pipeline over one document:
// extract, chunk, index, evaluate every catalog rule, report.
type ComplianceService interface {
	// Check evaluates a raw document against the catalog.
	// Extraction failures, unsupported types and empty documents are
	// returned as errors before any rule is evaluated. LLM failures are
	// recorded per rule in the report instead.
	Check(ctx context.Context, raw *domain.RawDocument) (*domain.Report, error)

	// CheckURI fetches the document through the matching source, then checks it.
	CheckURI(ctx context.Context, uri string) (*domain.Report, error)
}
