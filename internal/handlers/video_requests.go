package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/ezanim/backend/internal/logging"
	"github.com/ezanim/backend/internal/models"
	"github.com/ezanim/backend/internal/pipeline"
	"github.com/ezanim/backend/internal/repositories"
)

// VideoRequestHandler exposes the request lifecycle over HTTP: submission,
// status/preview polling, the render trigger and caller-driven refinement.
type VideoRequestHandler struct {
	Pipeline PipelineService
	Limiter  RateLimiter
}

type createRequest struct {
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspectRatio"`
}

type refineRequest struct {
	Critique string `json:"critique"`
}

type videoRequestResponse struct {
	ID          string    `json:"id"`
	Prompt      string    `json:"prompt"`
	Script      string    `json:"script,omitempty"`
	HTMLContent string    `json:"htmlContent,omitempty"`
	Duration    float64   `json:"duration,omitempty"`
	AspectRatio string    `json:"aspectRatio"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func viewVideoRequest(request models.VideoRequest) videoRequestResponse {
	return videoRequestResponse{
		ID:          request.ID,
		Prompt:      request.Prompt,
		Script:      request.Script,
		HTMLContent: request.HTMLContent,
		Duration:    request.Duration,
		AspectRatio: string(request.AspectRatio),
		Status:      string(request.Status),
		CreatedAt:   request.CreatedAt,
		UpdatedAt:   request.UpdatedAt,
	}
}

// Create handles POST /api/v1/video-requests.
func (h VideoRequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Pipeline == nil {
		logger.Error("pipeline service unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "service unavailable"})
		return
	}

	if !allowRequest(h.Limiter, r, "submit") {
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"error": "too many submissions, slow down"})
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid submission payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	request, err := h.Pipeline.Submit(ctx, req.Prompt, req.AspectRatio)
	if err != nil {
		if errors.Is(err, pipeline.ErrPromptTooShort) || errors.Is(err, models.ErrUnsupportedAspectRatio) {
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		logger.Error("submission failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to accept request"})
		return
	}

	logger.Info("video request accepted", "videoRequestID", request.ID, "aspectRatio", request.AspectRatio)
	respondJSON(ctx, w, http.StatusAccepted, viewVideoRequest(request))
}

// Get handles GET /api/v1/video-requests/{id}.
func (h VideoRequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	request, err := h.Pipeline.Get(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "video request not found"})
			return
		}
		logging.FromContext(ctx).Error("request lookup failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to load request"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, viewVideoRequest(request))
}

// Render handles POST /api/v1/video-requests/{id}/render.
func (h VideoRequestHandler) Render(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	request, err := h.Pipeline.TriggerRender(ctx, r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "video request not found"})
		case errors.Is(err, pipeline.ErrNotRenderable):
			respondJSON(ctx, w, http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			logger.Error("render trigger failed", "error", err)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to start render"})
		}
		return
	}

	logger.Info("render triggered", "videoRequestID", request.ID)
	respondJSON(ctx, w, http.StatusAccepted, viewVideoRequest(request))
}

// Refine handles POST /api/v1/video-requests/{id}/refine.
func (h VideoRequestHandler) Refine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.Limiter, r, "refine") {
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"error": "too many refinements, slow down"})
		return
	}

	// Body is optional; without a critique the critic decides what to fix.
	// An empty body is fine, a malformed one is not.
	var req refineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		logger.Warn("invalid refinement payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	request, err := h.Pipeline.Refine(ctx, r.PathValue("id"), req.Critique)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "video request not found"})
		case errors.Is(err, pipeline.ErrNotRenderable), errors.Is(err, pipeline.ErrNoMarkup):
			respondJSON(ctx, w, http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			logger.Error("refinement failed", "error", err)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to refine animation"})
		}
		return
	}

	respondJSON(ctx, w, http.StatusOK, viewVideoRequest(request))
}
