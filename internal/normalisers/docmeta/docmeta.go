// Package docmeta holds the helpers every normaliser shares: stable
// document IDs, titles and metadata copies.
package docmeta

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

// documentNamespace scopes content-derived document IDs.
var documentNamespace = uuid.MustParse("3b0e9d4c-71a2-5f86-b4d1-9e2a6c8f0d57")

// DocumentID derives a stable ID from the URI and the raw bytes, so the same
// upload always produces the same document and chunk IDs.
func DocumentID(raw *domain.RawDocument) string {
	name := make([]byte, 0, len(raw.URI)+1+len(raw.Content))
	name = append(name, raw.URI...)
	name = append(name, 0)
	name = append(name, raw.Content...)
	return uuid.NewSHA1(documentNamespace, name).String()
}

// Title checks metadata for a title first, then falls back to the URI.
// Remote connectors such as Google Drive set Metadata["title"].
func Title(raw *domain.RawDocument) string {
	if raw.Metadata != nil {
		if title, ok := raw.Metadata["title"].(string); ok && title != "" {
			return title
		}
	}
	return TitleFromURI(raw.URI)
}

// TitleFromURI turns "contracts/master_services-agreement.pdf" into
// "master services agreement".
func TitleFromURI(uri string) string {
	filename := filepath.Base(uri)
	if filename == "." || filename == string(filepath.Separator) {
		return ""
	}
	if ext := filepath.Ext(filename); ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}

// FirstLine returns the first non-blank line of text, trimmed.
func FirstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// Metadata copies src and records the MIME type and format.
func Metadata(src map[string]any, mimeType, format string) map[string]any {
	dst := make(map[string]any, len(src)+2)
	for k, v := range src {
		dst[k] = v
	}
	dst["mime_type"] = mimeType
	dst["format"] = format
	return dst
}
