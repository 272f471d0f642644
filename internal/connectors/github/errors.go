package github

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

// ErrInvalidURI indicates a github:// URI that names no file.
var ErrInvalidURI = fmt.Errorf("%w: github URI must be github://owner/repo/path[@ref]", domain.ErrInvalidInput)

// RateLimitError represents a rate limit exceeded error with reset time.
type RateLimitError struct {
	ResetAt   time.Time
	Remaining int
	Limit     int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("github: rate limit exceeded, resets at %s", e.ResetAt.Format(time.RFC3339))
}

// Unwrap lets callers match domain.ErrRateLimited.
func (e *RateLimitError) Unwrap() error {
	return domain.ErrRateLimited
}

// APIError represents a GitHub API error response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// Unwrap maps the status code to a domain sentinel, if any.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrSourceAuthRequired
	case http.StatusTooManyRequests:
		return domain.ErrRateLimited
	default:
		return nil
	}
}

// IsNotFound checks if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return errors.Is(err, domain.ErrRateLimited)
}

// IsUnauthorized checks if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized
	}
	return false
}
