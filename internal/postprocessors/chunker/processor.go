// Package chunker provides a recursive, overlap-preserving text chunking processor.
//
// Chunk boundaries prefer a paragraph break, then a line break, then a
// sentence end, then a word break, and fall back to a hard cut only when
// the window holds none of them. Every chunk after the first begins with
// exactly the configured overlap of its predecessor, so dropping that prefix
// from each chunk and concatenating reproduces the input exactly.
package chunker

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// separatorLevels are tried in order; within a level the latest match wins.
var separatorLevels = [][]string{
	{"\n\n"},
	{"\n"},
	{". ", "! ", "? ", ".\n"},
	{" ", "\t"},
}

// Processor splits document content into overlapping chunks.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured chunk size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
// Chunk IDs are derived from the document ID and position, so the same
// document always yields the same chunks.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if doc.Content == "" {
		// Empty content produces no chunks
		return nil, nil
	}

	text := []rune(doc.Content)
	spans := p.Split(text)
	chunks := make([]domain.Chunk, 0, len(spans))

	for i, s := range spans {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ov := 0
		if i > 0 {
			ov = p.overlap
		}
		chunks = append(chunks, domain.Chunk{
			ID:         chunkID(doc.ID, i),
			DocumentID: doc.ID,
			Content:    string(text[s.Start:s.End]),
			Position:   i,
			Overlap:    ov,
			Metadata: map[string]any{
				"start": s.Start,
				"end":   s.End,
			},
		})
	}

	return chunks, nil
}

// Span is a half-open [Start, End) range of rune offsets.
type Span struct {
	Start int
	End   int
}

// Split returns the chunk spans for text. Consecutive spans overlap by
// exactly the configured overlap. Text no longer than the chunk size is a
// single span.
func (p *Processor) Split(text []rune) []Span {
	n := len(text)
	if n == 0 {
		return nil
	}

	var spans []Span
	start := 0
	for n-start > p.chunkSize {
		end := p.breakPoint(text, start)
		spans = append(spans, Span{Start: start, End: end})
		start = end - p.overlap
	}
	return append(spans, Span{Start: start, End: n})
}

// breakPoint picks the end of the chunk starting at start.
// The end lies in [lower, start+chunkSize] where lower leaves the chunk
// longer than the overlap, so the next start always advances.
func (p *Processor) breakPoint(text []rune, start int) int {
	limit := start + p.chunkSize
	lower := start + max(p.overlap+1, p.chunkSize/2)

	for _, level := range separatorLevels {
		best := -1
		for _, sep := range level {
			if e := lastSeparatorEnd(text, []rune(sep), lower, limit); e > best {
				best = e
			}
		}
		if best > 0 {
			return best
		}
	}
	return limit
}

// lastSeparatorEnd returns the largest e in [lower, limit] such that
// text[e-len(sep):e] == sep, or -1.
func lastSeparatorEnd(text, sep []rune, lower, limit int) int {
	for e := limit; e >= lower; e-- {
		s := e - len(sep)
		if s < 0 {
			return -1
		}
		if slices.Equal(text[s:e], sep) {
			return e
		}
	}
	return -1
}

// chunkNamespace scopes chunk IDs derived with uuid.NewSHA1.
var chunkNamespace = uuid.MustParse("6f1c7a2e-4b8d-5e39-9a0d-2c4f1b7e8a31")

func chunkID(documentID string, position int) string {
	return uuid.NewSHA1(chunkNamespace, []byte(fmt.Sprintf("%s#%d", documentID, position))).String()
}
