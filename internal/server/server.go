// Package server exposes the ingested snapshot over HTTP: a JSON API consumed by
// the chart pages, the pages themselves, static assets and Prometheus metrics.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/emotionmap/internal/config"
	"github.com/sanspareilsmyn/emotionmap/internal/dataset"
)

//go:embed templates/*.html
var templateFS embed.FS

const readHeaderTimeout = 10 * time.Second

// Server serves one immutable snapshot; handlers never write to it.
type Server struct {
	cfg    config.ServerConfig
	snap   *dataset.Snapshot
	logger *zap.Logger
	pages  *template.Template
	now    func() time.Time
}

// New prepares the handlers for snap.
func New(cfg config.ServerConfig, snap *dataset.Snapshot, logger *zap.Logger) (*Server, error) {
	pages, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse page templates: %w", err)
	}
	return &Server{
		cfg:    cfg,
		snap:   snap,
		logger: logger,
		pages:  pages,
		now:    time.Now,
	}, nil
}

// Handler returns the routed and instrumented handler tree.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/auth/{userId}", s.handleAuth)
	mux.HandleFunc("GET /api/bpm/{userId}", s.handleBPM)
	mux.HandleFunc("GET /api/users", s.handleUsers)
	mux.HandleFunc("GET /api/global", s.handleGlobal)
	mux.HandleFunc("GET /api/summary/{userId}", s.handleSummary)

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /auth/{userId}", s.handleSeatPage)
	mux.HandleFunc("GET /user/{userId}", s.handleSeatPage)

	mux.Handle("GET /metrics", promhttp.Handler())

	if dir := s.cfg.StaticDir; dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			mux.Handle("GET /", http.FileServer(http.Dir(dir)))
		} else {
			s.logger.Warn("Static directory unavailable, not serving static files", zap.String("dir", dir))
		}
	}

	return s.withRequestID(s.withAccessLog(mux))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server...", zap.Duration("timeout", s.cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return ctx.Err()
}
