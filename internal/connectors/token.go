package connectors

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
	"github.com/custodia-labs/clausecheck/internal/logger"
)

// Ensure EnvToken implements the interface.
var _ driven.TokenProvider = EnvToken("")

// EnvToken reads an access token from the named environment variable on
// every call. The value is registered with the logger for redaction and is
// never kept.
type EnvToken string

// GetToken returns the variable's value or domain.ErrSourceAuthRequired.
func (e EnvToken) GetToken(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := string(e)
	if name == "" {
		return "", fmt.Errorf("%w: no token variable configured", domain.ErrSourceAuthRequired)
	}
	token := strings.TrimSpace(os.Getenv(name))
	if token == "" {
		return "", fmt.Errorf("%w: set %s", domain.ErrSourceAuthRequired, name)
	}
	logger.RegisterSecret(domain.NewSecret(token))
	return token, nil
}
