// Package dropbox fetches contracts from Dropbox.
//
// URIs name a path, dropbox://Legal/2024/msa.pdf, or a file ID,
// dropbox://id:a4ayc_80_OEAAAAAAAAAXw. The access token is read from the
// token provider on every fetch.
package dropbox

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	sdk "github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/files"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
	"github.com/custodia-labs/clausecheck/internal/normalisers"
)

// Scheme is the URI scheme served by this source.
const Scheme = "dropbox"

var _ driven.DocumentSource = (*Source)(nil)

// Downloader is the part of the Dropbox files client the source uses.
type Downloader interface {
	Download(arg *files.DownloadArg) (*files.FileMetadata, io.ReadCloser, error)
}

// ClientFactory builds a Downloader for one access token.
type ClientFactory func(token string) Downloader

// NewClient returns the SDK files client for token.
func NewClient(token string) Downloader {
	return files.New(sdk.Config{Token: token})
}

// Source fetches dropbox:// URIs.
type Source struct {
	tokens    driven.TokenProvider
	newClient ClientFactory
}

// New creates a source authenticated by tokens. A nil factory uses the SDK.
func New(tokens driven.TokenProvider, newClient ClientFactory) *Source {
	if newClient == nil {
		newClient = NewClient
	}
	return &Source{tokens: tokens, newClient: newClient}
}

// Scheme returns "dropbox".
func (s *Source) Scheme() string {
	return Scheme
}

// ParsePath returns the Dropbox path or ID named by uri.
func ParsePath(uri string) (string, error) {
	rest, ok := strings.CutPrefix(uri, Scheme+"://")
	rest = strings.TrimLeft(rest, "/")
	if !ok || rest == "" || strings.HasSuffix(rest, "/") {
		return "", fmt.Errorf("%w: dropbox URI must be dropbox://path/to/file or dropbox://id:<id>", domain.ErrInvalidInput)
	}
	if strings.HasPrefix(rest, "id:") {
		return rest, nil
	}
	return "/" + rest, nil
}

// Fetch downloads the file named by uri.
func (s *Source) Fetch(ctx context.Context, uri string) (*domain.RawDocument, error) {
	target, err := ParsePath(uri)
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.GetToken(ctx)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	meta, body, err := s.newClient(token).Download(files.NewDownloadArg(target))
	if err != nil {
		return nil, wrapError(uri, err)
	}
	defer body.Close()

	if meta != nil && meta.Size > uint64(domain.MaxDocumentBytes) {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit is %d",
			domain.ErrInvalidInput, uri, meta.Size, domain.MaxDocumentBytes)
	}
	content, err := io.ReadAll(io.LimitReader(body, domain.MaxDocumentBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", uri, err)
	}
	return toRawDocument(uri, target, meta, content), nil
}

func toRawDocument(uri, target string, meta *files.FileMetadata, content []byte) *domain.RawDocument {
	name := path.Base(target)
	md := map[string]any{"source": Scheme}
	if meta != nil {
		if meta.Name != "" {
			name = meta.Name
		}
		md["file_id"] = meta.Id
		md["path"] = meta.PathDisplay
		md["rev"] = meta.Rev
		md["size"] = meta.Size
		if !meta.ServerModified.IsZero() {
			md["modified"] = meta.ServerModified.UTC().Format(time.RFC3339)
		}
	}
	md["filename"] = name

	return &domain.RawDocument{
		URI:      uri,
		MIMEType: normalisers.DetectMIMEType(name, content),
		Content:  content,
		Metadata: md,
	}
}

// wrapError maps Dropbox error summaries, e.g. "path/not_found/..", to
// domain errors.
func wrapError(uri string, err error) error {
	summary := err.Error()
	switch {
	case strings.Contains(summary, "not_found"):
		return fmt.Errorf("download %s: %w: %v", uri, domain.ErrNotFound, err)
	case strings.Contains(summary, "invalid_access_token"),
		strings.Contains(summary, "expired_access_token"),
		strings.Contains(summary, "missing_scope"):
		return fmt.Errorf("download %s: %w: %v", uri, domain.ErrSourceAuthRequired, err)
	case strings.Contains(summary, "too_many_requests"):
		return fmt.Errorf("download %s: %w: %v", uri, domain.ErrRateLimited, err)
	}
	return fmt.Errorf("download %s: %w", uri, err)
}
