package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/ezanim/backend/internal/models"
)

func TestMemoryVideoRequestStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryVideoRequestStore()

	request := models.NewVideoRequest("explain gravity using falling apples", models.AspectLandscape)
	if err := store.Create(ctx, request); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Create(ctx, request); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate create error = %v, want ErrConflict", err)
	}

	got, err := store.Get(ctx, request.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != request {
		t.Errorf("get returned %+v, want %+v", got, request)
	}

	// Re-reading without intervening writes must be stable.
	again, err := store.Get(ctx, request.ID)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if again != got {
		t.Error("consecutive reads returned different values")
	}

	updated := request.WithStatus(models.StatusPreviewReady).WithHTMLContent("<html></html>")
	if err := store.Update(ctx, updated); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err = store.Get(ctx, request.ID)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got.Status != models.StatusPreviewReady || got.HTMLContent != "<html></html>" {
		t.Errorf("update not visible: %+v", got)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("get missing error = %v, want ErrNotFound", err)
	}
	if err := store.Update(ctx, models.VideoRequest{ID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("update missing error = %v, want ErrNotFound", err)
	}
}

func TestMemoryVideoStoreUpsert(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryVideoStore()

	first := models.NewVideo("req-1", "https://cdn.example.com/videos/req-1.mp4", "videos/req-1.mp4", 12.5, 1920, 1080, 60)
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}

	replacement := models.NewVideo("req-1", "https://cdn.example.com/videos/req-1.mp4", "videos/req-1.mp4", 14.0, 1920, 1080, 60)
	if err := store.Save(ctx, replacement); err != nil {
		t.Fatalf("save replacement: %v", err)
	}

	got, err := store.FindByRequestID(ctx, "req-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.ID != replacement.ID || got.Duration != 14.0 {
		t.Errorf("expected replacement record, got %+v", got)
	}

	if _, err := store.FindByRequestID(ctx, "req-2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("find missing error = %v, want ErrNotFound", err)
	}
}
