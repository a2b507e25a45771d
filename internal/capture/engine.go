package capture

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/ezanim/backend/internal/config"
	"github.com/ezanim/backend/internal/logging"
)

// captureModeFlag tells the loaded document it is being sampled, so its own
// script must not auto-start playback.
const captureModeFlag = "__CAPTURE_MODE__"

// timelineGlobal is the controllable animation clock the generated markup is
// required to expose.
const timelineGlobal = "tl"

// Request describes one capture run.
type Request struct {
	HTML     string
	Duration float64
	FPS      int
	Width    int
	Height   int
	// OutputDir receives the numbered frame images.
	OutputDir string
}

// Engine samples a document's timeline at fixed computed timestamps. The
// resulting frame count and per-frame times depend only on (duration, fps),
// never on how fast the host happens to render.
type Engine struct {
	factory      SandboxFactory
	settleDelay  time.Duration
	timelineWait time.Duration
}

// NewEngine constructs a capture engine.
func NewEngine(factory SandboxFactory, cfg config.RenderConfig) *Engine {
	return &Engine{
		factory:      factory,
		settleDelay:  cfg.SettleDelay,
		timelineWait: cfg.TimelineWait,
	}
}

// TotalFrames computes the exact frame count for a duration at a frame rate.
func TotalFrames(duration float64, fps int) int {
	return int(math.Ceil(duration * float64(fps)))
}

// FrameTimestampMS computes the timeline position of frame i in milliseconds.
func FrameTimestampMS(i, fps int) float64 {
	return float64(i) / float64(fps) * 1000
}

// Capture renders every frame of the request into OutputDir and returns the
// ordered frame paths. Frames are captured strictly sequentially: each seek
// mutates the single sandbox page the run owns.
func (e *Engine) Capture(ctx context.Context, req Request) ([]string, error) {
	logger := logging.FromContext(ctx)

	if req.FPS <= 0 {
		return nil, fmt.Errorf("capture: fps must be positive, got %d", req.FPS)
	}
	if req.Duration <= 0 {
		return nil, fmt.Errorf("capture: duration must be positive, got %f", req.Duration)
	}

	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create frame directory: %w", err)
	}

	sandbox, err := e.factory.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open sandbox: %w", err)
	}
	defer sandbox.Close()

	if err := sandbox.SetFlag(ctx, captureModeFlag); err != nil {
		return nil, err
	}
	if err := sandbox.Load(ctx, req.HTML, req.Width, req.Height); err != nil {
		return nil, err
	}
	if err := sandbox.WaitForGlobal(ctx, timelineGlobal, e.timelineWait); err != nil {
		return nil, err
	}

	totalFrames := TotalFrames(req.Duration, req.FPS)
	logger.Info("capturing frames", "totalFrames", totalFrames, "fps", req.FPS, "duration", req.Duration)

	frames := make([]string, 0, totalFrames)
	for i := 0; i < totalFrames; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := sandbox.Seek(ctx, timelineGlobal, FrameTimestampMS(i, req.FPS)); err != nil {
			return nil, err
		}
		if e.settleDelay > 0 {
			time.Sleep(e.settleDelay)
		}

		image, err := sandbox.Screenshot(ctx)
		if err != nil {
			return nil, err
		}

		framePath := filepath.Join(req.OutputDir, fmt.Sprintf("frame_%06d.png", i))
		if err := os.WriteFile(framePath, image, 0o644); err != nil {
			return nil, fmt.Errorf("write frame %d: %w", i, err)
		}
		frames = append(frames, framePath)
	}

	return frames, nil
}
