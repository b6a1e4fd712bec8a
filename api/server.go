// Package api exposes the assistant over HTTP: JSON chat turns, SSE
// and plain-text streaming, feedback intake, catalog and trend
// inspection, plus health endpoints.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/udyogmitra/mitra/internal/catalog"
	"github.com/udyogmitra/mitra/internal/log"
	"github.com/udyogmitra/mitra/internal/team"
)

const (
	readHeaderTimeout = 10 * time.Second
	// No write timeout: generation streams can legitimately run for the
	// full generation window.
	shutdownTimeout = 10 * time.Second
)

// Errors returned by the server constructor.
var (
	ErrConfigNil = errors.New("api: config is nil")
	ErrNoRunner  = errors.New("api: turn runner is required")
	ErrNoCatalog = errors.New("api: catalog is required")
	ErrNilLogger = errors.New("api: logger is required")
)

// Config carries the server's collaborators. Queries and Pinger are
// optional and nil when the server runs without persistence.
type Config struct {
	Runner  TurnRunner
	Catalog *catalog.Catalog
	Roster  team.Roster
	Queries QuerySource
	Pinger  Pinger
	Logger  log.Logger
}

func (c *Config) validate() error {
	if c == nil {
		return ErrConfigNil
	}
	if c.Runner == nil {
		return ErrNoRunner
	}
	if c.Catalog == nil {
		return ErrNoCatalog
	}
	if c.Logger == nil {
		return ErrNilLogger
	}
	return nil
}

// Server serves the HTTP API.
type Server struct {
	runner  TurnRunner
	catalog *catalog.Catalog
	roster  team.Roster
	queries QuerySource
	pinger  Pinger
	logger  log.Logger
}

func NewServer(cfg *Config) (*Server, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	roster := cfg.Roster
	if roster == nil {
		roster = team.DefaultRoster()
	}

	return &Server{
		runner:  cfg.Runner,
		catalog: cfg.Catalog,
		roster:  roster,
		queries: cfg.Queries,
		pinger:  cfg.Pinger,
		logger:  cfg.Logger,
	}, nil
}

// Handler returns the full route table wrapped in recovery and request
// logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("POST /api/chat/stream", s.handleChatStream)
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("POST /api/feedback", s.handleFeedback)
	mux.HandleFunc("GET /api/records", s.handleRecords)
	mux.HandleFunc("GET /api/trends", s.handleTrends)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)

	return chain(mux,
		recoveryMiddleware(s.logger),
		loggingMiddleware(s.logger),
	)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
