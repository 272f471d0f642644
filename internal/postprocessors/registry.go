package postprocessors

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
)

// BuilderFunc builds a processor from its settings, e.g. chunk_size and
// overlap for the chunker.
type BuilderFunc func(cfg map[string]any) (driven.PostProcessor, error)

// Registry resolves processor names to builders.
type Registry struct {
	builders map[string]BuilderFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]BuilderFunc),
	}
}

// Register binds name to builder, replacing any earlier binding.
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.builders[name] = builder
}

// Build constructs the processor registered as name.
func (r *Registry) Build(name string, cfg map[string]any) (driven.PostProcessor, error) {
	builder, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown processor %q (registered: %v)", domain.ErrInvalidInput, name, r.Names())
	}
	return builder(cfg)
}

// BuildPipeline builds each named processor, in order, into a Pipeline.
// configs may omit entries; missing config means builder defaults.
func (r *Registry) BuildPipeline(names []string, configs map[string]map[string]any) (*Pipeline, error) {
	p := NewPipeline()
	for _, name := range names {
		proc, err := r.Build(name, configs[name])
		if err != nil {
			return nil, err
		}
		p.Add(proc)
	}
	return p, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Names lists registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
