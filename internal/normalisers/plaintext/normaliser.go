package plaintext

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
	"github.com/custodia-labs/clausecheck/internal/normalisers/docmeta"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/plain"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise decodes the raw bytes to text.
// Valid UTF-8 is used as-is minus any BOM. A declared charset is honoured;
// otherwise undecodable input is read as Windows-1252.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	content, charset, err := decode(raw)
	if err != nil {
		return nil, err
	}

	meta := docmeta.Metadata(raw.Metadata, raw.MediaType(), "text")
	meta["charset"] = charset

	return &driven.NormaliseResult{
		Document: domain.Document{
			ID:       docmeta.DocumentID(raw),
			URI:      raw.URI,
			Title:    docmeta.Title(raw),
			Content:  content,
			Metadata: meta,
		},
	}, nil
}

func decode(raw *domain.RawDocument) (text, charset string, err error) {
	body := raw.Content

	if enc, name := declaredEncoding(raw.MIMEType); enc != nil {
		out, derr := enc.NewDecoder().Bytes(body)
		if derr != nil {
			return "", "", fmt.Errorf("decode %s: %v: %w", name, derr, domain.ErrExtractionFailed)
		}
		return string(out), name, nil
	}

	if utf8.Valid(body) {
		return string(bytes.TrimPrefix(body, utf8BOM)), "utf-8", nil
	}

	out, derr := charmap.Windows1252.NewDecoder().Bytes(body)
	if derr != nil {
		return "", "", fmt.Errorf("decode windows-1252: %v: %w", derr, domain.ErrExtractionFailed)
	}
	return string(out), "windows-1252", nil
}

// declaredEncoding returns the decoder for a non-UTF-8 charset parameter.
// UTF-8 and unknown charsets return nil so the content is sniffed instead.
func declaredEncoding(mimeType string) (encoding.Encoding, string) {
	idx := strings.Index(strings.ToLower(mimeType), "charset=")
	if idx < 0 {
		return nil, ""
	}
	name := strings.Trim(strings.TrimSpace(strings.SplitN(mimeType[idx+len("charset="):], ";", 2)[0]), `"'`)
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, ""
	}
	canonical, err := htmlindex.Name(enc)
	if err != nil || canonical == "utf-8" {
		return nil, ""
	}
	return enc, canonical
}
