package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

func TestSupportedMIMETypes(t *testing.T) {
	assert.Equal(t, []string{"text/plain"}, New().SupportedMIMETypes())
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 50, New().Priority())
}

func TestNormalise_NilDocument(t *testing.T) {
	result, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestNormalise_UTF8(t *testing.T) {
	raw := &domain.RawDocument{
		URI:      "/contracts/supply_agreement.txt",
		MIMEType: "text/plain",
		Content:  []byte("This Agreement shall be governed by the laws of England."),
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)

	doc := result.Document
	assert.Equal(t, "This Agreement shall be governed by the laws of England.", doc.Content)
	assert.Equal(t, "supply agreement", doc.Title)
	assert.Equal(t, raw.URI, doc.URI)
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "text/plain", doc.Metadata["mime_type"])
	assert.Equal(t, "utf-8", doc.Metadata["charset"])
}

func TestNormalise_StripsBOM(t *testing.T) {
	raw := &domain.RawDocument{
		URI:     "nda.txt",
		Content: append([]byte{0xEF, 0xBB, 0xBF}, []byte("Confidential")...),
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "Confidential", result.Document.Content)
}

func TestNormalise_Windows1252Fallback(t *testing.T) {
	raw := &domain.RawDocument{
		URI:     "legacy.txt",
		Content: []byte("Caf\xe9 \x93Supplier\x94"),
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "Café “Supplier”", result.Document.Content)
	assert.Equal(t, "windows-1252", result.Document.Metadata["charset"])
}

func TestNormalise_DeclaredCharset(t *testing.T) {
	raw := &domain.RawDocument{
		URI:      "legacy.txt",
		MIMEType: `text/plain; charset="ISO-8859-1"`,
		Content:  []byte("Ren\xe9e"),
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "Renée", result.Document.Content)
}

func TestNormalise_DeclaredUTF8IsSniffed(t *testing.T) {
	raw := &domain.RawDocument{
		URI:      "x.txt",
		MIMEType: "text/plain; charset=utf-8",
		Content:  []byte("Déjà vu"),
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "Déjà vu", result.Document.Content)
	assert.Equal(t, "utf-8", result.Document.Metadata["charset"])
}

func TestNormalise_MetadataTitle(t *testing.T) {
	raw := &domain.RawDocument{
		URI:      "gdrive://abc",
		Content:  []byte("text"),
		Metadata: map[string]any{"title": "Master Services Agreement"},
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "Master Services Agreement", result.Document.Title)
}
