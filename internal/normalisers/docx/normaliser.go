package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
	"github.com/custodia-labs/clausecheck/internal/normalisers/docmeta"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// MIMEType is the OOXML word-processing media type.
const MIMEType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

const (
	documentPart = "word/document.xml"
	corePart     = "docProps/core.xml"
)

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{MIMEType}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts paragraph text from word/document.xml, one paragraph
// per line, including paragraphs nested in tables.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("docx: not a zip archive: %w", domain.ErrExtractionFailed)
	}

	body, err := readPart(reader, documentPart)
	if err != nil {
		return nil, fmt.Errorf("docx: %v: %w", err, domain.ErrExtractionFailed)
	}

	content, paragraphs, err := paragraphText(body)
	if err != nil {
		return nil, fmt.Errorf("docx: parse %s: %v: %w", documentPart, err, domain.ErrExtractionFailed)
	}

	title := coreTitle(reader)
	if title == "" {
		title = docmeta.Title(raw)
	}

	meta := docmeta.Metadata(raw.Metadata, raw.MediaType(), "docx")
	meta["paragraphs"] = paragraphs

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

var errPartMissing = errors.New("part missing")

func readPart(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%s: %w", name, errPartMissing)
}

// paragraphText walks the document tokens. w:t contributes text, w:tab a
// tab, w:br and w:cr a line break, and each closing w:p ends a line.
func paragraphText(data []byte) (string, int, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		lines      []string
		current    strings.Builder
		inText     bool
		paragraphs int
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", 0, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				current.WriteByte('\t')
			case "br", "cr":
				current.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				lines = append(lines, current.String())
				current.Reset()
				paragraphs++
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}

	return strings.TrimSpace(strings.Join(lines, "\n")), paragraphs, nil
}

type coreXML struct {
	Title string `xml:"title"`
}

// coreTitle returns dc:title from docProps/core.xml, or "".
func coreTitle(reader *zip.Reader) string {
	data, err := readPart(reader, corePart)
	if err != nil {
		return ""
	}
	var core coreXML
	if err := xml.Unmarshal(data, &core); err != nil {
		return ""
	}
	return strings.TrimSpace(core.Title)
}
