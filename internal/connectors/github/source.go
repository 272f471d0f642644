package github

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
	"github.com/custodia-labs/clausecheck/internal/normalisers"
)

// Scheme is the URI scheme served by this source.
const Scheme = "github"

// Ensure Source implements the interface.
var _ driven.DocumentSource = (*Source)(nil)

// Location identifies one file in a repository.
type Location struct {
	Owner string
	Repo  string
	Path  string
	Ref   string
}

// ParseURI splits github://owner/repo/path[@ref].
func ParseURI(uri string) (Location, error) {
	rest, ok := strings.CutPrefix(uri, Scheme+"://")
	if !ok {
		return Location{}, ErrInvalidURI
	}

	var loc Location
	if i := strings.LastIndex(rest, "@"); i >= 0 {
		rest, loc.Ref = rest[:i], rest[i+1:]
		if loc.Ref == "" {
			return Location{}, fmt.Errorf("%w: empty ref", ErrInvalidURI)
		}
	}

	parts := strings.SplitN(strings.Trim(rest, "/"), "/", 3)
	if len(parts) < 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return Location{}, ErrInvalidURI
	}
	loc.Owner, loc.Repo, loc.Path = parts[0], parts[1], parts[2]
	return loc, nil
}

// String formats the location back to a URI.
func (l Location) String() string {
	s := fmt.Sprintf("%s://%s/%s/%s", Scheme, l.Owner, l.Repo, l.Path)
	if l.Ref != "" {
		s += "@" + l.Ref
	}
	return s
}

// Source fetches contracts from GitHub repositories.
type Source struct {
	client *Client
}

// New creates a GitHub source over client.
func New(client *Client) *Source {
	return &Source{client: client}
}

// Scheme returns "github".
func (s *Source) Scheme() string {
	return Scheme
}

// Fetch downloads the file named by uri.
func (s *Source) Fetch(ctx context.Context, uri string) (*domain.RawDocument, error) {
	loc, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	content, err := s.client.GetFileContent(ctx, loc.Owner, loc.Repo, loc.Path, loc.Ref)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", loc, err)
	}

	meta := map[string]any{
		"source":   Scheme,
		"owner":    loc.Owner,
		"repo":     loc.Repo,
		"path":     loc.Path,
		"filename": path.Base(loc.Path),
	}
	if loc.Ref != "" {
		meta["ref"] = loc.Ref
	}
	return &domain.RawDocument{
		URI:      loc.String(),
		MIMEType: normalisers.DetectMIMEType(loc.Path, content),
		Content:  content,
		Metadata: meta,
	}, nil
}
