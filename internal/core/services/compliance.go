package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driving"
	"github.com/custodia-labs/clausecheck/internal/errcode"
	"github.com/custodia-labs/clausecheck/internal/logger"
)

// Ensure ComplianceService implements the interface.
var _ driving.ComplianceService = (*ComplianceService)(nil)

// ComplianceDeps holds the collaborators of a compliance run.
// Sources and Metrics are optional.
type ComplianceDeps struct {
	Catalog        *domain.Catalog
	Normalisers    driven.NormaliserRegistry
	Pipeline       driven.PostProcessorPipeline
	Embedder       driven.EmbeddingService
	NewVectorIndex func() driven.VectorIndex
	LLM            driven.LLMService
	Sources        driven.SourceRegistry
	Metrics        driven.Metrics
}

// ComplianceService runs extract, chunk, index, evaluate and report for
// one document per call. Each call builds its own index; only the catalog
// and adapters are shared.
type ComplianceService struct {
	deps      ComplianceDeps
	session   domain.SessionConfig
	evaluator *Evaluator

	// fitMu serialises runs when the embedder is fitted per document.
	fitMu  sync.Mutex
	fitted bool
}

// NewComplianceService validates the session and wires the pipeline.
// A missing API key fails with domain.ErrMissingCredential.
func NewComplianceService(deps ComplianceDeps, session domain.SessionConfig) (*ComplianceService, error) {
	if err := ValidateSession(session); err != nil {
		return nil, err
	}
	switch {
	case deps.Catalog == nil:
		return nil, fmt.Errorf("%w: catalog is required", domain.ErrInvalidInput)
	case deps.Normalisers == nil:
		return nil, fmt.Errorf("%w: normaliser registry is required", domain.ErrInvalidInput)
	case deps.Pipeline == nil:
		return nil, fmt.Errorf("%w: chunking pipeline is required", domain.ErrInvalidInput)
	case deps.Embedder == nil:
		return nil, domain.ErrEmbeddingUnavailable
	case deps.NewVectorIndex == nil:
		return nil, fmt.Errorf("%w: vector index factory is required", domain.ErrInvalidInput)
	case deps.LLM == nil:
		return nil, domain.ErrLLMUnavailable
	}

	fitted := driven.FitsCorpus(deps.Embedder)
	return &ComplianceService{
		deps:      deps,
		session:   session,
		evaluator: NewEvaluator(deps.LLM, session, deps.Metrics),
		fitted:    fitted,
	}, nil
}

// ValidateSession checks session and attaches an error code. Drivers call
// it before building any adapter so a missing key fails first.
func ValidateSession(session domain.SessionConfig) error {
	if err := session.Validate(); err != nil {
		code := errcode.CodeSessionConfigInvalid
		if errors.Is(err, domain.ErrMissingCredential) {
			code = errcode.CodeSessionCredentialAbsent
		}
		return errcode.Wrap(err, code, "session")
	}
	return nil
}

// Session returns the session the service was built with.
func (s *ComplianceService) Session() domain.SessionConfig {
	return s.session
}

// Catalog returns the catalog every run evaluates.
func (s *ComplianceService) Catalog() *domain.Catalog {
	return s.deps.Catalog
}

// CheckURI fetches uri through the registered sources, then checks it.
func (s *ComplianceService) CheckURI(ctx context.Context, uri string) (*domain.Report, error) {
	if s.deps.Sources == nil {
		return nil, errcode.Wrap(fmt.Errorf("%w: no sources configured", domain.ErrUnsupportedSource),
			errcode.CodeSourceUnsupported, "fetch", errcode.Field("uri", uri))
	}
	logger.Section("Fetch")
	raw, err := s.deps.Sources.Fetch(ctx, uri)
	if err != nil {
		if errcode.CodeOf(err) != "" {
			return nil, err
		}
		code := errcode.CodeSourceFetchFailure
		if errors.Is(err, domain.ErrUnsupportedSource) {
			code = errcode.CodeSourceUnsupported
		}
		return nil, errcode.Wrap(err, code, "fetch", errcode.Field("uri", uri))
	}
	logger.Debug("Fetched %s (%s, %d bytes)", raw.URI, raw.MIMEType, len(raw.Content))
	return s.Check(ctx, raw)
}

// Check evaluates raw against every rule of the catalog.
func (s *ComplianceService) Check(ctx context.Context, raw *domain.RawDocument) (*domain.Report, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: document is nil", domain.ErrInvalidInput)
	}
	start := time.Now()

	logger.Section("Ingest")
	result, err := s.deps.Normalisers.Normalise(ctx, raw)
	if err != nil {
		return nil, err
	}
	doc := result.Document
	if doc.IsBlank() {
		return nil, errcode.Wrap(fmt.Errorf("%s: %w", raw.URI, domain.ErrEmptyDocument),
			errcode.CodeIngestDocumentEmpty, "ingest",
			errcode.Field("uri", raw.URI), errcode.Field("mime_type", raw.MediaType()))
	}
	logger.Debug("Extracted %q: %d characters", doc.Title, len([]rune(doc.Content)))

	logger.Section("Chunk")
	chunks, err := s.deps.Pipeline.Process(ctx, &doc)
	if err != nil {
		return nil, fmt.Errorf("chunk document: %w", err)
	}
	if len(chunks) == 0 {
		return nil, errcode.Wrap(fmt.Errorf("%s: %w", raw.URI, domain.ErrEmptyDocument),
			errcode.CodeIngestDocumentEmpty, "chunk", errcode.Field("uri", raw.URI))
	}
	logger.Debug("Produced %d chunks", len(chunks))

	if s.fitted {
		s.fitMu.Lock()
		defer s.fitMu.Unlock()
	}

	logger.Section("Index")
	index := NewSemanticIndex(s.deps.Embedder, s.deps.NewVectorIndex())
	defer func() {
		if err := index.Close(); err != nil {
			logger.Warn("Failed to close semantic index: %v", err)
		}
	}()
	if err := index.Build(ctx, chunks); err != nil {
		return nil, errcode.Wrap(err, errcode.CodeIndexBuildFailure, "index", errcode.Field("uri", raw.URI))
	}

	logger.Section("Evaluate")
	text := chunks[0].Content
	if s.session.ScanScope == domain.ScanScopeDocument {
		text = doc.Content
	}
	results := s.evaluator.Evaluate(ctx, s.deps.Catalog, text, index)

	logger.Section("Report")
	report := &domain.Report{
		ID:            uuid.NewString(),
		DocumentURI:   doc.URI,
		DocumentTitle: doc.Title,
		ChunkCount:    len(chunks),
		ScanScope:     s.session.ScanScope,
		GeneratedAt:   time.Now().UTC(),
		Results:       results,
	}
	logger.Info("Report %s: %d compliant, %d non-compliant, %d LLM errors",
		report.ID, report.Compliant(), report.NonCompliant(), report.LLMErrors())

	if s.deps.Metrics != nil {
		s.deps.Metrics.ObserveRun(report, time.Since(start))
	}
	return report, nil
}
