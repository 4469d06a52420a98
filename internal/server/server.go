// Package server exposes the lineage engine over HTTP as a JSON API.
package server

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

	"github.com/leapstack-labs/leaplineage/internal/lineage"
)

// Server is the lineage API server.
type Server struct {
	engine *lineage.Engine
	port   int
	logger *slog.Logger
}

// Config holds configuration for the API server.
type Config struct {
	Engine *lineage.Engine
	Port   int
	Logger *slog.Logger
}

// NewServer creates a new API server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		engine: cfg.Engine,
		port:   cfg.Port,
		logger: logger,
	}
}

// Routes builds the chi router for the API.
func (s *Server) Routes() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	r.Get("/health", s.handleHealth)

	r.Route("/lineage", func(r chi.Router) {
		r.Get("/query", s.handleQuery)
		r.Post("/query", s.handleQueryPost)

		r.Get("/datasets", s.handleListDatasets)
		r.Post("/datasets", s.handleAddDataset)
		r.Get("/jobs", s.handleListJobs)
		r.Post("/jobs", s.handleAddJob)
		r.Get("/runs", s.handleListRuns)
		r.Post("/runs", s.handleAddRun)

		r.Post("/columns", s.handleAddColumnLineage)
		r.Get("/columns/{dataset}", s.handleColumnLineage)

		r.Get("/impact/{namespace}/{dataset}", s.handleImpact)
		r.Get("/metrics", s.handleMetrics)
		r.Get("/export", s.handleExport)
		r.Get("/graph/visualization", s.handleVisualization)
	})

	return r
}

// Serve starts the API server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting lineage API server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

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

		s.logger.Debug("shutting down lineage API server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
