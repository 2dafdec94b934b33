// Package transport serves the optional status endpoint exposed by the
// launcher while a pipeline run is in progress.
package transport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fedscan/internal/config"
	"fedscan/internal/observability"
	"fedscan/internal/pipeline"
)

// Server exposes run state and Prometheus metrics over HTTP.
type Server struct {
	cfg    config.StatusConfig
	logger *slog.Logger
	http   *http.Server
}

// NewServer wires the status routes for the given run.
func NewServer(cfg config.StatusConfig, state *pipeline.State, metrics *observability.Metrics, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.WriteTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		render.JSON(w, req, map[string]string{"status": "ok"})
	})
	r.Get("/api/status", func(w http.ResponseWriter, req *http.Request) {
		render.JSON(w, req, state.Snapshot())
	})
	r.Method(http.MethodGet, "/metrics",
		promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	return &Server{
		cfg:    cfg,
		logger: logger,
		http: &http.Server{
			Addr:         cfg.Listen,
			Handler:      r,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}
}

// Start serves in the background until Shutdown is called. Listen failures
// are logged rather than aborting the run; the endpoint is best effort.
func (s *Server) Start() {
	go func() {
		s.logger.Info("status endpoint listening", slog.String("addr", s.cfg.Listen))
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Warn("status endpoint stopped", slog.String("error", err.Error()))
		}
	}()
}

// Shutdown stops the server, waiting at most the configured timeout for
// in-flight requests.
func (s *Server) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(ctx); err != nil {
		s.logger.Warn("status endpoint shutdown failed", slog.String("error", err.Error()))
	}
}
