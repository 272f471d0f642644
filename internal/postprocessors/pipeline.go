// Package postprocessors turns extracted contract text into the chunks the
// semantic index embeds. Processors are built by name from a Registry and
// run in sequence by a Pipeline; the standard chain is one chunker.
package postprocessors

import (
	"context"
	"fmt"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
	"github.com/custodia-labs/clausecheck/internal/logger"
)

var _ driven.PostProcessorPipeline = (*Pipeline)(nil)

// Pipeline runs processors in order, each receiving the chunks its
// predecessor returned. The first one receives nil.
type Pipeline struct {
	stages []driven.PostProcessor
}

// NewPipeline chains stages in the given order.
func NewPipeline(stages ...driven.PostProcessor) *Pipeline {
	return &Pipeline{stages: stages}
}

// Process chunks doc. A failing stage aborts the run and is named in the
// error.
func (p *Pipeline) Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil: %w", domain.ErrInvalidInput)
	}

	var chunks []domain.Chunk
	for _, stage := range p.stages {
		out, err := stage.Process(ctx, doc, chunks)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", stage.Name(), err)
		}
		logger.Debug("Processor %s: %d chunks from %s", stage.Name(), len(out), doc.ID)
		chunks = out
	}
	return chunks, nil
}

// Add appends a stage.
func (p *Pipeline) Add(stage driven.PostProcessor) {
	p.stages = append(p.stages, stage)
}

// Len returns the number of stages.
func (p *Pipeline) Len() int { return len(p.stages) }
