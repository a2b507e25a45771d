package repositories

import (
	"context"

	"github.com/ezanim/backend/internal/models"
)

// VideoRequestStore exposes keyed persistence for pipeline requests. Writes
// are whole-record: callers build a new value via the models copy-on-write
// helpers and hand it over, so the store only ever sees complete versions.
type VideoRequestStore interface {
	Create(ctx context.Context, request models.VideoRequest) error
	Get(ctx context.Context, id string) (models.VideoRequest, error)
	Update(ctx context.Context, request models.VideoRequest) error
}

// VideoStore persists rendered artifacts. Save upserts on the owning request
// id so a re-render replaces the previous artifact record.
type VideoStore interface {
	Save(ctx context.Context, video models.Video) error
	FindByRequestID(ctx context.Context, videoRequestID string) (models.Video, error)
}
