package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/ezanim/backend/internal/logging"
	"github.com/ezanim/backend/internal/models"
	"github.com/ezanim/backend/internal/repositories"
)

// VideoHandler serves the rendered artifact for a request.
type VideoHandler struct {
	Pipeline PipelineService
}

type videoResponse struct {
	ID             string    `json:"id"`
	VideoRequestID string    `json:"videoRequestId"`
	URL            string    `json:"url"`
	Duration       float64   `json:"duration"`
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	FPS            int       `json:"fps"`
	CreatedAt      time.Time `json:"createdAt"`
}

func viewVideo(video models.Video) videoResponse {
	return videoResponse{
		ID:             video.ID,
		VideoRequestID: video.VideoRequestID,
		URL:            video.URL,
		Duration:       video.Duration,
		Width:          video.Width,
		Height:         video.Height,
		FPS:            video.FPS,
		CreatedAt:      video.CreatedAt,
	}
}

// ByRequest handles GET /api/v1/videos/by-request/{id}.
func (h VideoHandler) ByRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	video, err := h.Pipeline.VideoByRequest(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "video not found"})
			return
		}
		logging.FromContext(ctx).Error("video lookup failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to load video"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, viewVideo(video))
}
