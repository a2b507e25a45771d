package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ezanim/backend/internal/capture"
	"github.com/ezanim/backend/internal/encode"
	"github.com/ezanim/backend/internal/logging"
	"github.com/ezanim/backend/internal/models"
	"github.com/ezanim/backend/internal/repositories"
)

// Renderer runs the render half of the pipeline: frame capture, encode,
// publish, Video record. A render job owns the request from RENDERING through
// COMPLETED or FAILED.
type Renderer struct {
	requests  repositories.VideoRequestStore
	videos    repositories.VideoStore
	capturer  FrameCapturer
	encoder   Encoder
	publisher Publisher
	workDir   string
	fps       int
}

// RendererDeps bundles the collaborators a Renderer needs.
type RendererDeps struct {
	Requests  repositories.VideoRequestStore
	Videos    repositories.VideoStore
	Capturer  FrameCapturer
	Encoder   Encoder
	Publisher Publisher
	WorkDir   string
	FPS       int
}

func NewRenderer(deps RendererDeps) *Renderer {
	if deps.FPS <= 0 {
		deps.FPS = 60
	}
	return &Renderer{
		requests:  deps.Requests,
		videos:    deps.Videos,
		capturer:  deps.Capturer,
		encoder:   deps.Encoder,
		publisher: deps.Publisher,
		workDir:   deps.WorkDir,
		fps:       deps.FPS,
	}
}

// Run captures, encodes and publishes the request's animation. Local frames
// and the encoded file are removed afterwards on every path; only the
// published object survives.
func (r *Renderer) Run(ctx context.Context, requestID string) error {
	ctx, span := logging.StartSpan(ctx, "pipeline.render")
	defer span.End()
	logger := logging.FromContext(ctx).With("videoRequestID", requestID)
	ctx = logging.WithLogger(ctx, logger)

	request, err := r.requests.Get(ctx, requestID)
	if err != nil {
		return fmt.Errorf("load request: %w", err)
	}
	if request.Status != models.StatusRendering {
		return fmt.Errorf("render job for request in status %s", request.Status)
	}
	if request.HTMLContent == "" {
		r.markFailed(ctx, request)
		return fmt.Errorf("render job without animation markup")
	}

	renderDir := filepath.Join(r.workDir, "renders", request.ID)
	framesDir := filepath.Join(renderDir, "frames")
	outputPath := filepath.Join(renderDir, "video.mp4")
	defer r.cleanup(ctx, renderDir)

	width, height := request.AspectRatio.Dimensions()

	if _, err := r.capturer.Capture(ctx, capture.Request{
		HTML:      request.HTMLContent,
		Duration:  request.Duration,
		FPS:       r.fps,
		Width:     width,
		Height:    height,
		OutputDir: framesDir,
	}); err != nil {
		r.markFailed(ctx, request)
		return fmt.Errorf("capture frames: %w", err)
	}

	if err := r.encoder.Encode(ctx, encode.Request{
		FramesDir:  framesDir,
		AudioPath:  request.AudioPath,
		FPS:        r.fps,
		Width:      width,
		Height:     height,
		OutputPath: outputPath,
	}); err != nil {
		r.markFailed(ctx, request)
		return fmt.Errorf("encode video: %w", err)
	}

	url, key, err := r.publisher.PublishVideo(ctx, request.ID, outputPath)
	if err != nil {
		r.markFailed(ctx, request)
		return fmt.Errorf("publish video: %w", err)
	}

	video := models.NewVideo(request.ID, url, key, request.Duration, width, height, r.fps)
	if err := r.videos.Save(ctx, video); err != nil {
		r.markFailed(ctx, request)
		return fmt.Errorf("persist video record: %w", err)
	}

	if err := r.requests.Update(ctx, request.WithStatus(models.StatusCompleted)); err != nil {
		return fmt.Errorf("persist completion: %w", err)
	}

	logger.Info("render pipeline finished", "url", url, "width", width, "height", height, "fps", r.fps)
	return nil
}

// cleanup removes the request's local render artifacts. Best effort: a
// failing delete is logged, never propagated.
func (r *Renderer) cleanup(ctx context.Context, dir string) {
	if err := os.RemoveAll(dir); err != nil {
		logging.FromContext(ctx).Warn("render cleanup failed", "dir", dir, "error", err)
	}
}

func (r *Renderer) markFailed(ctx context.Context, request models.VideoRequest) {
	logger := logging.FromContext(ctx)
	if err := r.requests.Update(ctx, request.WithStatus(models.StatusFailed)); err != nil {
		logger.Error("failed to mark request failed", "videoRequestID", request.ID, "error", err)
	}
}
