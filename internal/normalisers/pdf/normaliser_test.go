package pdf

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

func fixedPages(pages ...string) PageExtractor {
	return func([]byte) ([]string, error) { return pages, nil }
}

func TestSupportedMIMETypes(t *testing.T) {
	assert.Equal(t, []string{"application/pdf"}, New().SupportedMIMETypes())
	assert.Equal(t, 50, New().Priority())
}

func TestNormalise_NilDocument(t *testing.T) {
	result, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestNormalise_JoinsPagesSkippingEmpty(t *testing.T) {
	n := New(WithPageExtractor(fixedPages(
		"SERVICES AGREEMENT\nParties",
		"",
		"   ",
		"Termination for convenience.",
	)))

	result, err := n.Normalise(context.Background(), &domain.RawDocument{URI: "msa.pdf", MIMEType: "application/pdf"})
	require.NoError(t, err)

	doc := result.Document
	assert.Equal(t, "SERVICES AGREEMENT\nParties\nTermination for convenience.", doc.Content)
	assert.Equal(t, "SERVICES AGREEMENT", doc.Title)
	assert.Equal(t, 4, doc.Metadata["pages"])
	assert.Equal(t, 2, doc.Metadata["text_pages"])
	assert.Equal(t, "pdf", doc.Metadata["format"])
}

func TestNormalise_TitleFallsBackToFilename(t *testing.T) {
	n := New(WithPageExtractor(fixedPages("", "")))

	result, err := n.Normalise(context.Background(), &domain.RawDocument{URI: "/x/scanned_lease.pdf"})
	require.NoError(t, err)
	assert.Empty(t, result.Document.Content)
	assert.Equal(t, "scanned lease", result.Document.Title)
}

func TestNormalise_ExtractorError(t *testing.T) {
	n := New(WithPageExtractor(func([]byte) ([]string, error) {
		return nil, errors.New("encrypted")
	}))

	_, err := n.Normalise(context.Background(), &domain.RawDocument{URI: "locked.pdf"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
	assert.Contains(t, err.Error(), "encrypted")
}

func TestNormalise_MalformedBytes(t *testing.T) {
	_, err := New().Normalise(context.Background(), &domain.RawDocument{
		URI:     "broken.pdf",
		Content: []byte("not a pdf file"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestNormalise_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(WithPageExtractor(fixedPages("x"))).Normalise(ctx, &domain.RawDocument{URI: "a.pdf"})
	assert.ErrorIs(t, err, context.Canceled)
}
