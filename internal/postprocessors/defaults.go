package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
	"github.com/custodia-labs/clausecheck/internal/postprocessors/chunker"
)

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register("chunker", buildChunker)
}

// NewChunkingPipeline returns the standard pipeline: one chunker with the
// session's size and overlap.
func NewChunkingPipeline(session domain.SessionConfig) (*Pipeline, error) {
	r := NewRegistry()
	RegisterDefaults(r)
	return r.BuildPipeline([]string{"chunker"}, map[string]map[string]any{
		"chunker": {
			"chunk_size": session.ChunkSize,
			"overlap":    session.ChunkOverlap,
		},
	})
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - chunk_size (int): Characters per chunk (default: 800)
//   - overlap (int): Overlapping characters between chunks (default: 200)
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	size, hasSize := getIntFromConfig(cfg, "chunk_size")
	if hasSize {
		if size <= 0 {
			return nil, fmt.Errorf("chunker: chunk_size must be positive, got %d", size)
		}
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if overlap, ok := getIntFromConfig(cfg, "overlap"); ok {
		if overlap < 0 {
			return nil, fmt.Errorf("chunker: overlap must not be negative, got %d", overlap)
		}
		opts = append(opts, chunker.WithOverlap(overlap))
	}

	return chunker.New(opts...), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
// The bool reports whether the key held a number.
func getIntFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
