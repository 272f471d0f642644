package domain

import (
	"mime"
	"strings"
)

// MaxDocumentBytes caps the size of a contract read from any source.
const MaxDocumentBytes = 32 << 20

// RawDocument represents opaque bytes fetched by a connector or uploaded
// by a user, before text extraction.
type RawDocument struct {
	// URI is the original location (file path, URL, object key).
	URI string

	// MIMEType is the declared content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// Metadata contains connector-specific key-value pairs.
	Metadata map[string]any
}

// MediaType returns the declared MIME type without parameters, lowercased.
// "text/plain; charset=utf-8" becomes "text/plain".
func (r *RawDocument) MediaType() string {
	mt, _, err := mime.ParseMediaType(r.MIMEType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(r.MIMEType))
	}
	return mt
}

// Document is the extracted plaintext of a contract.
type Document struct {
	// ID is the unique identifier for the document within a run.
	ID string

	// URI is the original location.
	URI string

	// Title is the human-readable title.
	Title string

	// Content is the full extracted text before chunking.
	Content string

	// Metadata contains arbitrary key-value pairs (mime_type, format, pages).
	Metadata map[string]any
}

// IsBlank reports whether the document has no non-whitespace content.
func (d *Document) IsBlank() bool {
	return strings.TrimSpace(d.Content) == ""
}

// Chunk is a bounded, overlapping segment of a document.
// Chunks are read-only once produced.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Overlap is the number of leading characters this chunk shares with
	// the previous chunk. Zero for the first chunk.
	Overlap int

	// Embedding is the vector representation, set by the semantic index.
	Embedding []float32

	// Metadata contains chunk-specific key-value pairs.
	Metadata map[string]any
}

// Fresh returns the part of the chunk not shared with its predecessor.
func (c Chunk) Fresh() string {
	runes := []rune(c.Content)
	if c.Overlap <= 0 || c.Overlap > len(runes) {
		return c.Content
	}
	return string(runes[c.Overlap:])
}
