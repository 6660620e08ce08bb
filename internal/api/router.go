package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// healthCheckTimeout bounds the upstream check made by /api/v1/health.
const healthCheckTimeout = 3 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	if s.prometheus != nil {
		r.Handle("/metrics", s.prometheus)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)
		r.Post("/directives", s.handleDirective)
	})

	return r
}

// handleHealth reports liveness and, when configured, whether the channel
// API answers. An unreachable channel API degrades the status but still
// returns 200; directives may yet succeed once it recovers.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":  "ok",
		"version": s.version,
	}

	if s.channels != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		if err := s.channels.HealthCheck(ctx); err != nil {
			resp["status"] = "degraded"
			resp["channel_api"] = err.Error()
		} else {
			resp["channel_api"] = "ok"
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
