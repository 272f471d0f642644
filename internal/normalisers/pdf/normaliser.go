// Package pdf extracts text from PDF contracts page by page.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
	"github.com/custodia-labs/clausecheck/internal/normalisers/docmeta"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// PageExtractor returns the plain text of each page, in page order.
// Pages without a text layer are returned as "".
type PageExtractor func(content []byte) ([]string, error)

// Normaliser handles PDF documents.
type Normaliser struct {
	extract PageExtractor
}

// Option configures the Normaliser.
type Option func(*Normaliser)

// WithPageExtractor replaces the PDF parser. Used in tests.
func WithPageExtractor(fn PageExtractor) Option {
	return func(n *Normaliser) {
		n.extract = fn
	}
}

// New creates a new PDF normaliser.
func New(opts ...Option) *Normaliser {
	n := &Normaliser{extract: extractPages}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts and joins page text with "\n".
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pages, err := n.extract(raw.Content)
	if err != nil {
		return nil, fmt.Errorf("pdf: %v: %w", err, domain.ErrExtractionFailed)
	}

	kept := make([]string, 0, len(pages))
	for _, page := range pages {
		if strings.TrimSpace(page) == "" {
			continue
		}
		kept = append(kept, page)
	}
	content := strings.Join(kept, "\n")

	title := ""
	if raw.Metadata != nil {
		title, _ = raw.Metadata["title"].(string)
	}
	if title == "" {
		title = docmeta.FirstLine(content)
	}
	if title == "" {
		title = docmeta.TitleFromURI(raw.URI)
	}

	meta := docmeta.Metadata(raw.Metadata, raw.MediaType(), "pdf")
	meta["pages"] = len(pages)
	meta["text_pages"] = len(kept)

	return &driven.NormaliseResult{
		Document: domain.Document{
			ID:       docmeta.DocumentID(raw),
			URI:      raw.URI,
			Title:    title,
			Content:  content,
			Metadata: meta,
		},
	}, nil
}

// extractPages reads every page with ledongthuc/pdf. The parser panics on
// some malformed inputs, so panics become errors.
func extractPages(content []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	total := reader.NumPage()
	pages = make([]string, 0, total)
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}
