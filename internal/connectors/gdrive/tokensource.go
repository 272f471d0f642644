package gdrive

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
)

// tokenSource adapts a TokenProvider to oauth2.TokenSource so the Drive
// client asks for the token only when it sends a request.
type tokenSource struct {
	provider driven.TokenProvider
	ctx      context.Context
}

// NewTokenSource creates an oauth2.TokenSource from a TokenProvider.
func NewTokenSource(ctx context.Context, provider driven.TokenProvider) oauth2.TokenSource {
	return &tokenSource{provider: provider, ctx: ctx}
}

// Token implements oauth2.TokenSource.
func (t *tokenSource) Token() (*oauth2.Token, error) {
	accessToken, err := t.provider.GetToken(t.ctx)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}, nil
}
