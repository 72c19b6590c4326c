// Package httptransport is the thin HTTP layer over the exchange core. It
// delegates to the pipeline and setup orchestrator without embedding business
// logic so transport concerns remain isolated.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dwn-gateway/internal/platform/middleware"
)

// NewRouter wires all public endpoints with middleware.
func NewRouter(h *Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)

	r.Get("/healthz", h.handleHealth)
	r.Get("/readyz", h.handleReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Get("/v1/manifests", h.handleListManifests)
	r.Post("/v1/applications", h.handleSubmitApplication)

	return r
}
