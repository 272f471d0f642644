package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/clausecheck/internal/logger"
)

// instructions tell the client how the tools relate.
const instructions = `clausecheck evaluates contracts against a catalog of compliance rules.
Call list_rules or read clausecheck://rules to see the catalog. Call
check_contract with a file path or remote URI to get one row per rule.
Rows with method "llm" carry the model's analysis as evidence; they are
reported non-compliant and should be read by a person.`

// shutdownGrace bounds how long in-flight HTTP sessions may finish.
const shutdownGrace = 5 * time.Second

// Server exposes the checker to MCP clients.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer registers the check tools and rule resources. version is
// reported to clients.
func NewServer(ports *Ports, version string) (*Server, error) {
	if ports == nil {
		return nil, ErrMissingComplianceService
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}
	if version == "" {
		version = "dev"
	}

	s := &Server{
		ports: ports,
		server: mcp.NewServer(
			&mcp.Implementation{Name: "clausecheck", Version: version},
			&mcp.ServerOptions{Instructions: instructions},
		),
	}
	s.registerTools()
	s.registerResources()
	return s, nil
}

// Run serves JSON-RPC over stdio until ctx is done or the client hangs up.
func (s *Server) Run(ctx context.Context) error {
	logger.Debug("MCP server on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves streamable HTTP on addr until ctx is done.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr: addr,
		Handler: mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
			return s.server
		}, nil),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("MCP HTTP shutdown: %v", err)
		}
	}()

	logger.Debug("MCP server on http://%s", addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-stopped
	return nil
}
