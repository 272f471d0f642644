package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/errcode"
	"github.com/custodia-labs/clausecheck/internal/logger"
	"github.com/custodia-labs/clausecheck/internal/normalisers"
	"github.com/custodia-labs/clausecheck/internal/report"
)

// FormField is the multipart field carrying the contract.
const FormField = "file"

// handleCheck runs one compliance check over an uploaded contract. The
// report is a CSV attachment unless the client accepts JSON.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, domain.MaxDocumentBytes+1<<20)
	raw, err := readUpload(r)
	if err != nil {
		writeProblem(w, err)
		return
	}

	rep, err := s.services.Compliance.Check(r.Context(), raw)
	if err != nil {
		logger.Warn("Check %s failed: %v", raw.URI, err)
		writeProblem(w, err)
		return
	}

	var buf bytes.Buffer
	if wantsJSON(r.Header.Get("Accept")) {
		err = report.WriteJSON(&buf, rep)
		w.Header().Set("Content-Type", "application/json")
	} else {
		err = report.WriteCSV(&buf, rep)
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition",
			mime.FormatMediaType("attachment", map[string]string{"filename": report.DefaultFilename}))
	}
	if err != nil {
		writeProblem(w, errcode.Wrap(err, errcode.CodeReportWriteFailure, "report"))
		return
	}
	w.Header().Set("X-Report-Id", rep.ID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// readUpload extracts the contract from the multipart form. The MIME type
// comes from the part header, or is sniffed when the header is generic.
func readUpload(r *http.Request) (*domain.RawDocument, error) {
	file, header, err := r.FormFile(FormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: upload exceeds %d bytes", errTooLarge, domain.MaxDocumentBytes)
		}
		return nil, fmt.Errorf("%w: multipart field %q is required", domain.ErrInvalidInput, FormField)
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, domain.MaxDocumentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading upload: %v", domain.ErrInvalidInput, err)
	}
	if len(content) > domain.MaxDocumentBytes {
		return nil, fmt.Errorf("%w: upload exceeds %d bytes", errTooLarge, domain.MaxDocumentBytes)
	}

	name := filepath.Base(header.Filename)
	mimeType := strings.TrimSpace(header.Header.Get("Content-Type"))
	if mt, _, err := mime.ParseMediaType(mimeType); err != nil || mt == "application/octet-stream" || filepath.Ext(name) != "" {
		mimeType = normalisers.DetectMIMEType(name, content)
	}

	return &domain.RawDocument{
		URI:      name,
		MIMEType: mimeType,
		Content:  content,
		Metadata: map[string]any{"source": "upload", "filename": name},
	}, nil
}

// wantsJSON reports whether the Accept header prefers JSON over CSV.
func wantsJSON(accept string) bool {
	for _, part := range strings.Split(accept, ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		switch mt {
		case "application/json", "application/problem+json":
			return true
		case "text/csv":
			return false
		}
	}
	return false
}

var errTooLarge = errors.New("request entity too large")

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, domain.ErrEmptyDocument), errors.Is(err, domain.ErrExtractionFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrMissingCredential), errors.Is(err, domain.ErrLLMUnavailable),
		errors.Is(err, domain.ErrEmbeddingUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// problem is an RFC 9457 body extended with the error code.
type problem struct {
	huma.ErrorModel
	Code string `json:"code,omitempty"`
}

func writeProblem(w http.ResponseWriter, err error) {
	status := statusFor(err)
	body := problem{
		ErrorModel: huma.ErrorModel{
			Title:  http.StatusText(status),
			Status: status,
			Detail: err.Error(),
		},
		Code: string(errcode.CodeOf(err)),
	}
	if status == http.StatusInternalServerError {
		body.Detail = "internal error"
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
