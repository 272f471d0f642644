package driven

import (
	"context"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

// DocumentSource fetches a single contract from a location.
// Each source (filesystem, github, gdrive, s3) handles one URI scheme.
type DocumentSource interface {
	// Scheme returns the URI scheme handled (e.g. "github").
	// The filesystem source returns "file" and also handles bare paths.
	Scheme() string

	// Fetch retrieves the document. The returned RawDocument carries the
	// declared or detected MIME type.
	Fetch(ctx context.Context, uri string) (*domain.RawDocument, error)
}

// TokenProvider supplies access tokens for remote sources.
// Tokens are read at call time and never stored by the caller.
type TokenProvider interface {
	// GetToken returns an access token, or domain.ErrSourceAuthRequired.
	GetToken(ctx context.Context) (string, error)
}

// SourceRegistry dispatches a URI to the DocumentSource for its scheme.
type SourceRegistry interface {
	// Fetch retrieves uri through the matching source, or fails with
	// domain.ErrUnsupportedSource.
	Fetch(ctx context.Context, uri string) (*domain.RawDocument, error)

	// Schemes lists the registered schemes in sorted order.
	Schemes() []string
}
