package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

func TestSource_Scheme(t *testing.T) {
	assert.Equal(t, "file", New().Scheme())
}

func TestSource_Fetch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "msa.txt")
	require.NoError(t, os.WriteFile(path, []byte("This Agreement shall be governed by the laws of Delaware."), 0o600))

	for _, uri := range []string{path, "file://" + path} {
		t.Run(uri, func(t *testing.T) {
			doc, err := New().Fetch(context.Background(), uri)
			require.NoError(t, err)
			assert.Equal(t, path, doc.URI)
			assert.Equal(t, "text/plain", doc.MIMEType)
			assert.Contains(t, string(doc.Content), "governed")
			assert.Equal(t, "msa.txt", doc.Metadata["filename"])
		})
	}
}

func TestSource_FetchSniffsExtensionlessFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contract")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n"), 0o600))

	doc, err := New().Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", doc.MIMEType)
}

func TestSource_FetchForeignExtensionNotSniffed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contract.rtf")
	require.NoError(t, os.WriteFile(path, []byte("This Agreement is governed by the laws of Delaware."), 0o600))

	doc, err := New().Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.NotContains(t, doc.MIMEType, "text/plain")
}

func TestSource_FetchErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := New().Fetch(context.Background(), filepath.Join(dir, "missing.pdf"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = New().Fetch(context.Background(), dir)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = New().Fetch(context.Background(), "file://")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New().Fetch(ctx, filepath.Join(dir, "x.txt"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, "/tmp/a.pdf", ResolvePath("file:///tmp/a.pdf"))
	assert.Equal(t, "docs/a.pdf", ResolvePath(" docs/a.pdf "))
}
