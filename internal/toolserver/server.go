// Package toolserver exposes the query toolkit over HTTP so external
// orchestrators can drive the same gate as the interactive CLI. The surface
// is exactly the toolkit's three operations plus a health probe; there is no
// route that reaches the database outside the screening path.
package toolserver

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/askdb-labs/askdb/internal/tools"
)

// Server is the HTTP tool server.
type Server struct {
	addr    string
	toolkit *tools.Toolkit
	logger  *slog.Logger
}

// Config holds configuration for the tool server.
type Config struct {
	Addr    string
	Toolkit *tools.Toolkit
	Logger  *slog.Logger
}

// NewServer creates a new tool server instance. The caller owns the database
// connection behind the toolkit and keeps it open for the server's lifetime.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		addr:    cfg.Addr,
		toolkit: cfg.Toolkit,
		logger:  logger,
	}
}

// Serve starts the tool server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting tool server", slog.String("addr", s.addr))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.routes(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start HTTP server
	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down tool server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// routes builds the router. Split out from Serve so tests can mount the
// handler tree without binding a port.
func (s *Server) routes() http.Handler {
	h := NewHandlers(s.toolkit, s.logger)

	r := chi.NewMux()
	r.Use(
		requestLogger(s.logger),
		middleware.Recoverer,
		middleware.Compress(5),
	)

	r.Get("/healthz", h.Health)
	r.Route("/v1/tools", func(r chi.Router) {
		r.Post("/get_schema", h.GetSchema)
		r.Post("/preview_query", h.PreviewQuery)
		r.Post("/execute_query", h.ExecuteQuery)
	})

	return r
}
