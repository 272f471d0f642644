package normalisers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
	"github.com/custodia-labs/clausecheck/internal/errcode"
	"github.com/custodia-labs/clausecheck/internal/normalisers/docx"
	"github.com/custodia-labs/clausecheck/internal/normalisers/pdf"
	"github.com/custodia-labs/clausecheck/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry dispatches raw documents to the highest-priority normaliser
// registered for their media type.
type Registry struct {
	mu     sync.RWMutex
	byMIME map[string][]driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byMIME: make(map[string][]driven.Normaliser)}
}

// NewDefaultRegistry registers the plaintext, PDF and DOCX normalisers.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(plaintext.New())
	r.Register(pdf.New())
	r.Register(docx.New())
	return r
}

// Register adds a normaliser for each of its MIME types.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, mt := range n.SupportedMIMETypes() {
		list := append(r.byMIME[mt], n)
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Priority() > list[j].Priority()
		})
		r.byMIME[mt] = list
	}
}

// SupportedMIMETypes returns all MIME types that can be normalised, sorted.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.byMIME))
	for mt := range r.byMIME {
		types = append(types, mt)
	}
	sort.Strings(types)
	return types
}

// Normalise extracts text with the best normaliser for raw's media type.
// Unknown types fail with domain.ErrUnsupportedType; extraction problems
// carry domain.ErrExtractionFailed. Both are coded.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	mt := raw.MediaType()
	r.mu.RLock()
	candidates := r.byMIME[mt]
	r.mu.RUnlock()

	if len(candidates) == 0 {
		return nil, errcode.Wrap(
			fmt.Errorf("unsupported file type %q: %w", mt, domain.ErrUnsupportedType),
			errcode.CodeIngestTypeUnsupported, "ingest",
			errcode.Field("mime_type", mt), errcode.Field("uri", raw.URI),
		)
	}

	result, err := candidates[0].Normalise(ctx, raw)
	if err != nil {
		if errors.Is(err, domain.ErrExtractionFailed) {
			return nil, errcode.Wrap(err, errcode.CodeIngestExtractFailure, "ingest",
				errcode.Field("mime_type", mt), errcode.Field("uri", raw.URI))
		}
		return nil, err
	}
	return result, nil
}
