package gdrive

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

// ErrInvalidURI indicates a gdrive:// URI without a file ID.
var ErrInvalidURI = fmt.Errorf("%w: drive URI must be gdrive://<fileID>", domain.ErrInvalidInput)

// wrapError attaches the domain sentinel matching a Google API status.
func wrapError(op string, err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	switch gerr.Code {
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w: %v", op, domain.ErrNotFound, err)
	case http.StatusUnauthorized, http.StatusForbidden:
		if isRateLimitReason(gerr) {
			return fmt.Errorf("%s: %w: %v", op, domain.ErrRateLimited, err)
		}
		return fmt.Errorf("%s: %w: %v", op, domain.ErrSourceAuthRequired, err)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w: %v", op, domain.ErrRateLimited, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// isRateLimitReason reports Drive's 403 flavour of rate limiting.
func isRateLimitReason(gerr *googleapi.Error) bool {
	for _, item := range gerr.Errors {
		switch item.Reason {
		case "rateLimitExceeded", "userRateLimitExceeded":
			return true
		}
	}
	return false
}
