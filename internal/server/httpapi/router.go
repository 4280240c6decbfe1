// Package httpapi is the HTTP face of the gateway: it accepts multipart
// uploads and delete requests and forwards them to the object store.
package httpapi

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophdrop/internal/logging"
	"github.com/dmitrijs2005/gophdrop/internal/server/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Store is the object store behind the API.
type Store interface {
	Put(ctx context.Context, name string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, name string) error
	PublicURL(name string) string
}

// Options tune the router. A nil Metrics disables /metrics.
type Options struct {
	MaxUploadSize int64
	Metrics       *metrics.Metrics
}

// NewRouter wires the middleware stack and routes:
//
//	POST /api/upload       multipart upload, field "file"
//	POST /api/delete-file  JSON {"path": ...}
//	GET  /health           liveness
//	GET  /metrics          Prometheus, when enabled
func NewRouter(store Store, logger logging.Logger, opts Options) http.Handler {
	h := newHandler(store, logger, opts)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/upload", h.Upload)
		r.Post("/delete-file", h.DeleteFile)
	})

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	return r
}

func requestLogger(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			args := []any{
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start).String(),
			}
			// health probes and scrapes are noisy
			if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
				logger.Debug(r.Context(), "request completed", args...)
				return
			}
			logger.Info(r.Context(), "request completed", args...)
		})
	}
}
