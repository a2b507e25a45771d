package handlers

import (
	"context"

	"github.com/ezanim/backend/internal/models"
)

// PipelineService is the boundary the HTTP layer drives. It mirrors the
// caller-facing operations of the pipeline service.
type PipelineService interface {
	Submit(ctx context.Context, prompt, aspect string) (models.VideoRequest, error)
	Get(ctx context.Context, id string) (models.VideoRequest, error)
	TriggerRender(ctx context.Context, id string) (models.VideoRequest, error)
	Refine(ctx context.Context, id, critique string) (models.VideoRequest, error)
	VideoByRequest(ctx context.Context, requestID string) (models.Video, error)
}
