// Package filesystem reads contracts from the local disk.
package filesystem

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
	"github.com/custodia-labs/clausecheck/internal/normalisers"
)

// Scheme is the URI scheme served by this source.
const Scheme = "file"

// Ensure Source implements the interface.
var _ driven.DocumentSource = (*Source)(nil)

// Source reads file:// URIs and bare paths.
type Source struct{}

// New creates a filesystem source.
func New() *Source {
	return &Source{}
}

// Scheme returns "file".
func (s *Source) Scheme() string {
	return Scheme
}

// Fetch reads the file at uri. The MIME type comes from the extension,
// then from the content.
func (s *Source) Fetch(ctx context.Context, uri string) (*domain.RawDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := ResolvePath(uri)
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", domain.ErrInvalidInput)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrInvalidInput, path)
	}
	if info.Size() > domain.MaxDocumentBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit is %d",
			domain.ErrInvalidInput, path, info.Size(), domain.MaxDocumentBytes)
	}

	content, err := io.ReadAll(io.LimitReader(f, domain.MaxDocumentBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return &domain.RawDocument{
		URI:      path,
		MIMEType: normalisers.DetectMIMEType(path, content),
		Content:  content,
		Metadata: map[string]any{
			"source":   Scheme,
			"filename": filepath.Base(path),
			"size":     info.Size(),
			"modified": info.ModTime().UTC(),
		},
	}, nil
}

// ResolvePath converts a file:// URI or bare path to a local path.
func ResolvePath(uri string) string {
	uri = strings.TrimSpace(uri)
	if rest, ok := strings.CutPrefix(uri, "file://"); ok {
		return rest
	}
	return uri
}
