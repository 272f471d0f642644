package normalisers

import (
	"bytes"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/clausecheck/internal/normalisers/docx"
)

// octetStream is reported for extensions nothing here reads.
const octetStream = "application/octet-stream"

// extensionTypes maps the accepted file extensions to media types.
var extensionTypes = map[string]string{
	".txt":  "text/plain",
	".text": "text/plain",
	".pdf":  "application/pdf",
	".docx": docx.MIMEType,
}

// MIMETypeForExtension returns the media type for a file extension such as
// ".pdf", or "" when the extension is not accepted.
func MIMETypeForExtension(ext string) string {
	return extensionTypes[strings.ToLower(ext)]
}

// DetectMIMEType returns the media type from the filename's extension.
// Content is sniffed only when the name has no extension; zip archives
// holding word/document.xml count as DOCX. An extension that is not
// accepted never maps to a type a normaliser reads.
func DetectMIMEType(filename string, content []byte) string {
	ext := filepath.Ext(filename)
	if ext != "" {
		if mt := MIMETypeForExtension(ext); mt != "" {
			return mt
		}
		return foreignType(ext)
	}

	sniffed := http.DetectContentType(content)
	switch {
	case strings.HasPrefix(sniffed, "application/pdf"):
		return "application/pdf"
	case strings.HasPrefix(sniffed, "application/zip"):
		if bytes.Contains(content, []byte("word/document.xml")) {
			return docx.MIMEType
		}
		return "application/zip"
	default:
		return sniffed
	}
}

func foreignType(ext string) string {
	mt, _, err := mime.ParseMediaType(mime.TypeByExtension(ext))
	if err != nil || mt == "" {
		return octetStream
	}
	for _, accepted := range extensionTypes {
		if mt == accepted {
			return octetStream
		}
	}
	return mt
}
