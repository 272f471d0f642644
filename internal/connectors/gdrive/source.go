package gdrive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
	"github.com/custodia-labs/clausecheck/internal/normalisers"
	"github.com/custodia-labs/clausecheck/internal/normalisers/docx"
)

// Scheme is the URI scheme served by this source.
const Scheme = "gdrive"

const (
	// MimeTypeGoogleDoc is a native Google Docs document.
	MimeTypeGoogleDoc = "application/vnd.google-apps.document"

	// workspacePrefix marks native Google Workspace types.
	workspacePrefix = "application/vnd.google-apps."

	// fileFields are the metadata fields requested before downloading.
	fileFields = "id,name,mimeType,size,modifiedTime,webViewLink"
)

// Ensure Source implements the interface.
var _ driven.DocumentSource = (*Source)(nil)

// Source fetches contracts from Google Drive.
type Source struct {
	tokens     driven.TokenProvider
	endpoint   string
	httpClient *http.Client
}

// Option configures a Source.
type Option func(*Source)

// WithEndpoint overrides the Drive API base URL.
func WithEndpoint(endpoint string) Option {
	return func(s *Source) {
		s.endpoint = endpoint
	}
}

// WithHTTPClient uses client as is, bypassing the token provider.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Source) {
		s.httpClient = client
	}
}

// New creates a Drive source authenticated by tokens.
func New(tokens driven.TokenProvider, opts ...Option) *Source {
	s := &Source{tokens: tokens}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scheme returns "gdrive".
func (s *Source) Scheme() string {
	return Scheme
}

// FileID extracts the file ID from gdrive://<fileID>.
func FileID(uri string) (string, error) {
	id, ok := strings.CutPrefix(uri, Scheme+"://")
	id = strings.Trim(id, "/")
	if !ok || id == "" || strings.Contains(id, "/") {
		return "", ErrInvalidURI
	}
	return id, nil
}

// Fetch downloads or exports the file named by uri.
func (s *Source) Fetch(ctx context.Context, uri string) (*domain.RawDocument, error) {
	id, err := FileID(uri)
	if err != nil {
		return nil, err
	}
	svc, err := s.service(ctx)
	if err != nil {
		return nil, err
	}

	file, err := svc.Files.Get(id).Fields(fileFields).SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return nil, wrapError("get file "+id, err)
	}
	if file.Size > domain.MaxDocumentBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit is %d",
			domain.ErrInvalidInput, file.Name, file.Size, domain.MaxDocumentBytes)
	}

	var (
		resp     *http.Response
		mimeType string
	)
	switch {
	case file.MimeType == MimeTypeGoogleDoc:
		resp, err = svc.Files.Export(id, docx.MIMEType).Context(ctx).Download()
		mimeType = docx.MIMEType
	case strings.HasPrefix(file.MimeType, workspacePrefix):
		return nil, fmt.Errorf("%w: %s (%s)", domain.ErrUnsupportedType, file.Name, file.MimeType)
	default:
		resp, err = svc.Files.Get(id).SupportsAllDrives(true).Context(ctx).Download()
	}
	if err != nil {
		return nil, wrapError("download "+id, err)
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(io.LimitReader(resp.Body, domain.MaxDocumentBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", id, err)
	}
	if mimeType == "" {
		mimeType = normalisers.DetectMIMEType(file.Name, content)
	}

	return &domain.RawDocument{
		URI:      Scheme + "://" + id,
		MIMEType: mimeType,
		Content:  content,
		Metadata: map[string]any{
			"source":        Scheme,
			"file_id":       file.Id,
			"filename":      file.Name,
			"drive_mime":    file.MimeType,
			"web_link":      file.WebViewLink,
			"modified_time": file.ModifiedTime,
		},
	}, nil
}

func (s *Source) service(ctx context.Context) (*drive.Service, error) {
	var opts []option.ClientOption
	switch {
	case s.httpClient != nil:
		opts = append(opts, option.WithHTTPClient(s.httpClient))
	case s.tokens != nil:
		if _, err := s.tokens.GetToken(ctx); err != nil {
			return nil, err
		}
		opts = append(opts, option.WithTokenSource(NewTokenSource(ctx, s.tokens)))
	default:
		return nil, fmt.Errorf("%w: no Drive token provider configured", domain.ErrSourceAuthRequired)
	}
	if s.endpoint != "" {
		opts = append(opts, option.WithEndpoint(s.endpoint))
	}

	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return svc, nil
}
