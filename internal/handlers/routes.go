package handlers

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Pipeline PipelineService
	Limiter  RateLimiter
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	requests := VideoRequestHandler{Pipeline: deps.Pipeline, Limiter: deps.Limiter}
	videos := VideoHandler{Pipeline: deps.Pipeline}

	mux.HandleFunc("GET /healthz", health.Handle)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /api/v1/video-requests", requests.Create)
	mux.HandleFunc("GET /api/v1/video-requests/{id}", requests.Get)
	mux.HandleFunc("POST /api/v1/video-requests/{id}/render", requests.Render)
	mux.HandleFunc("POST /api/v1/video-requests/{id}/refine", requests.Refine)
	mux.HandleFunc("GET /api/v1/videos/by-request/{id}", videos.ByRequest)
}
