// Package httpapi serves the checker over HTTP: a multipart upload that
// returns the compliance report, the rule catalog, health and metrics.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/custodia-labs/clausecheck/internal/core/ports/driving"
	"github.com/custodia-labs/clausecheck/internal/logger"
)

// Config holds HTTP server configuration.
type Config struct {
	ListenAddr   string
	CORSOrigins  []string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Version      string
}

// Services are the driving ports the API exposes. Metrics is optional.
type Services struct {
	Compliance driving.ComplianceService
	Rules      driving.RuleService
	Metrics    http.Handler
}

// Server wraps a chi router with a huma API and an HTTP server.
type Server struct {
	router   chi.Router
	api      huma.API
	cfg      Config
	services Services
}

// New creates a Server with every route registered.
func New(cfg Config, svc Services) (*Server, error) {
	if cfg.ListenAddr == "" {
		return nil, errors.New("listen address is required")
	}
	if svc.Compliance == nil || svc.Rules == nil {
		return nil, errors.New("compliance and rule services are required")
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = time.Minute
	}
	// A full run makes one LLM call per unmatched rule.
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 15 * time.Minute
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(corsMiddleware(cfg.CORSOrigins))

	humaConfig := huma.DefaultConfig("clausecheck", cfg.Version)
	humaConfig.Info.Description = "Contract compliance checker API"
	api := humachi.New(r, humaConfig)

	s := &Server{
		router:   r,
		api:      api,
		cfg:      cfg,
		services: svc,
	}
	s.registerRoutes()
	return s, nil
}

// Handler returns the underlying http.Handler for testing.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server and blocks until the context is cancelled,
// then performs graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.ListenAddr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	logger.Info("Listening on http://%s", ln.Addr())

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return <-errCh
}

func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:     origins,
		AllowedMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:     []string{"Accept", "Content-Type"},
		ExposedHeaders:     []string{"Content-Disposition", "X-Report-Id"},
		AllowCredentials:   false,
		MaxAge:             300,
		OptionsPassthrough: false,
	})
}

// requestLogger logs each request in verbose mode.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logger.Debug("%s %s %d %s", r.Method, r.URL.Path, ww.Status(), time.Since(start).Round(time.Millisecond))
	})
}
