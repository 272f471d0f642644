package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
	"github.com/custodia-labs/clausecheck/internal/logger"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Client wraps the go-github client with pacing and error mapping.
// A fresh go-github client is built per call so tokens are never held.
type Client struct {
	tokenProvider driven.TokenProvider
	rateLimiter   *RateLimiter
	baseURL       *url.URL
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL points the client at a GitHub Enterprise or test server.
func WithBaseURL(raw string) ClientOption {
	return func(c *Client) {
		if !strings.HasSuffix(raw, "/") {
			raw += "/"
		}
		if u, err := url.Parse(raw); err == nil {
			c.baseURL = u
		}
	}
}

// WithRateLimiter replaces the default limiter.
func WithRateLimiter(rl *RateLimiter) ClientOption {
	return func(c *Client) {
		c.rateLimiter = rl
	}
}

// NewClient creates a GitHub API client. tokenProvider may be nil for
// anonymous access.
func NewClient(tokenProvider driven.TokenProvider, opts ...ClientOption) *Client {
	c := &Client{
		tokenProvider: tokenProvider,
		rateLimiter:   NewRateLimiter(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// newGitHub builds a go-github client for one call.
func (c *Client) newGitHub(ctx context.Context) (*gh.Client, error) {
	var httpClient *http.Client
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}
	if token != "" {
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	} else {
		httpClient = &http.Client{}
	}
	httpClient.Timeout = DefaultTimeout

	client := gh.NewClient(httpClient)
	if c.baseURL != nil {
		client.BaseURL = c.baseURL
	}
	return client, nil
}

func (c *Client) token(ctx context.Context) (string, error) {
	if c.tokenProvider == nil {
		return "", nil
	}
	token, err := c.tokenProvider.GetToken(ctx)
	switch {
	case errors.Is(err, domain.ErrSourceAuthRequired):
		logger.Debug("GitHub token not set, fetching anonymously")
		return "", nil
	case err != nil:
		return "", fmt.Errorf("get token: %w", err)
	}
	return token, nil
}

// GetFileContent retrieves the bytes of one file at ref ("" for the
// default branch). Files above the contents API limit are downloaded.
func (c *Client) GetFileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error) {
	client, err := c.newGitHub(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	opts := &gh.RepositoryContentGetOptions{Ref: ref}
	file, dir, resp, err := client.Repositories.GetContents(ctx, owner, repo, path, opts)
	c.observe(resp)
	if err != nil {
		return nil, wrapError(err)
	}
	if file == nil {
		return nil, fmt.Errorf("%w: %s/%s/%s is a directory (%d entries)",
			domain.ErrInvalidInput, owner, repo, path, len(dir))
	}
	if file.GetType() != "" && file.GetType() != "file" {
		return nil, fmt.Errorf("%w: %s/%s/%s is a %s", domain.ErrInvalidInput, owner, repo, path, file.GetType())
	}
	if file.GetSize() > domain.MaxDocumentBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit is %d",
			domain.ErrInvalidInput, path, file.GetSize(), domain.MaxDocumentBytes)
	}

	if file.GetEncoding() == "none" {
		return c.download(ctx, client, owner, repo, path, opts)
	}
	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return []byte(content), nil
}

// download streams a file too large for the contents API.
func (c *Client) download(ctx context.Context, client *gh.Client, owner, repo, path string, opts *gh.RepositoryContentGetOptions) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}
	rc, resp, err := client.Repositories.DownloadContents(ctx, owner, repo, path, opts)
	c.observe(resp)
	if err != nil {
		return nil, wrapError(err)
	}
	defer rc.Close()

	content, err := io.ReadAll(io.LimitReader(rc, domain.MaxDocumentBytes))
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", path, err)
	}
	return content, nil
}

func (c *Client) observe(resp *gh.Response) {
	if resp != nil {
		c.rateLimiter.UpdateFromResponse(resp.Response)
	}
}

// wrapError converts go-github errors to our error types.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		return &RateLimitError{
			ResetAt:   rateErr.Rate.Reset.Time,
			Remaining: rateErr.Rate.Remaining,
			Limit:     rateErr.Rate.Limit,
		}
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		resetAt := time.Now().Add(time.Minute)
		if abuseErr.RetryAfter != nil {
			resetAt = time.Now().Add(*abuseErr.RetryAfter)
		}
		return &RateLimitError{ResetAt: resetAt}
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		apiErr := &APIError{
			StatusCode: ghErr.Response.StatusCode,
			Message:    ghErr.Message,
		}
		if ghErr.Response.Request != nil && ghErr.Response.Request.URL != nil {
			apiErr.URL = ghErr.Response.Request.URL.Path
		}
		return apiErr
	}

	return err
}
