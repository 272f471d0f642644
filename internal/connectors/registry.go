package connectors

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
)

// FileScheme is used for URIs without a scheme.
const FileScheme = "file"

// Ensure Registry implements the interface.
var _ driven.SourceRegistry = (*Registry)(nil)

// Registry dispatches URIs to document sources by scheme.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]driven.DocumentSource
}

// NewRegistry creates a registry holding the given sources.
// A later source replaces an earlier one with the same scheme.
func NewRegistry(sources ...driven.DocumentSource) *Registry {
	r := &Registry{sources: make(map[string]driven.DocumentSource, len(sources))}
	for _, src := range sources {
		r.Register(src)
	}
	return r
}

// Register adds or replaces the source for its scheme.
func (r *Registry) Register(src driven.DocumentSource) {
	if src == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[strings.ToLower(src.Scheme())] = src
}

// Fetch retrieves uri through the source registered for its scheme.
func (r *Registry) Fetch(ctx context.Context, uri string) (*domain.RawDocument, error) {
	if strings.TrimSpace(uri) == "" {
		return nil, fmt.Errorf("%w: empty URI", domain.ErrInvalidInput)
	}
	scheme := SchemeOf(uri)

	r.mu.RLock()
	src, ok := r.sources[scheme]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %s)",
			domain.ErrUnsupportedSource, scheme, strings.Join(r.Schemes(), ", "))
	}
	return src.Fetch(ctx, uri)
}

// Schemes lists the registered schemes in sorted order.
func (r *Registry) Schemes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.sources))
	for s := range r.sources {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// SchemeOf returns the lowercased scheme of uri, or FileScheme when uri
// carries none ("contracts/msa.pdf", "C:\contracts\msa.pdf").
func SchemeOf(uri string) string {
	scheme, _, found := strings.Cut(uri, "://")
	if !found || scheme == "" || strings.ContainsAny(scheme, `/\ `) {
		return FileScheme
	}
	return strings.ToLower(scheme)
}
