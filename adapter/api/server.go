// Package api exposes the preview/apply workflow over a JSON HTTP API.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/tempora-app/tempora/pkg/observability"
)

// Server wraps the HTTP server hosting the scheduling API.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer builds the route table and returns a ready-to-start server.
func NewServer(addr string, handler *SchedulingHandler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("POST /api/v1/preview", handler.RunPreview)
	mux.HandleFunc("POST /api/v1/preview/apply", handler.ApplyPreview)
	mux.HandleFunc("POST /api/v1/preview/retry", handler.RetryPreview)
	mux.HandleFunc("GET /api/v1/preview", handler.GetPreview)
	mux.HandleFunc("DELETE /api/v1/preview", handler.CancelPreview)
	mux.HandleFunc("POST /api/v1/blocks", handler.PlaceTask)
	mux.HandleFunc("POST /api/v1/sweep", handler.SweepMissed)
	mux.HandleFunc("GET /api/v1/schedule", handler.GetSchedule)
	mux.HandleFunc("GET /api/v1/slots", handler.FindAvailableSlots)

	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      requestMiddleware(mux, logger),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// Start runs the server until it is shut down.
func (s *Server) Start() error {
	s.logger.Info("API server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// requestMiddleware attaches a request ID to the context and logs each
// request with its duration.
func requestMiddleware(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := observability.WithRequestID(r.Context(), r.Header.Get("X-Request-ID"))
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		logger.InfoContext(ctx, "request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
