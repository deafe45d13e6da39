// Package api exposes the HTTP interface for the discovery and retrieval
// engine.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ckolb-dev/webscout/internal/engine"
	"github.com/ckolb-dev/webscout/internal/metrics"
)

// Server wires HTTP handlers to the engine.
type Server struct {
	router chi.Router
	engine *engine.Engine
	logger *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(eng *engine.Engine, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		engine: eng,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(timeoutMiddleware(5 * time.Minute))

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/discover", s.discover)
		r.Post("/crawl", s.crawl)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// urlsRequest accepts either a single URL or a list; the single-URL
// convenience is resolved here at the boundary, not inside the engine.
type urlsRequest struct {
	URL  string   `json:"url,omitempty"`
	URLs []string `json:"urls,omitempty"`
}

func (r urlsRequest) list() []string {
	if len(r.URLs) > 0 {
		return r.URLs
	}
	if r.URL != "" {
		return []string{r.URL}
	}
	return nil
}

func (s *Server) discover(w http.ResponseWriter, r *http.Request) {
	urls, ok := decodeURLs(w, r)
	if !ok {
		return
	}
	writeReport(w, s.engine.Discover(r.Context(), urls))
}

func (s *Server) crawl(w http.ResponseWriter, r *http.Request) {
	urls, ok := decodeURLs(w, r)
	if !ok {
		return
	}
	writeReport(w, s.engine.Crawl(r.Context(), urls))
}

func decodeURLs(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	var req urlsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return nil, false
	}
	urls := req.list()
	if len(urls) == 0 {
		writeError(w, http.StatusBadRequest, "at least one URL required")
		return nil, false
	}
	return urls, true
}

func writeReport(w http.ResponseWriter, report string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(report))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Serve runs the HTTP server until the context is canceled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("HTTP server listening", zap.String("addr", addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
