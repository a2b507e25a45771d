// Package encode assembles captured frame sequences and narration audio
// into a finished video file using ffmpeg.
package encode

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/ezanim/backend/internal/logging"
)

// Request describes one encode job. Width and Height pin the output size;
// the frames are already captured at these dimensions, so this only guards
// against a stray odd-sized input breaking yuv420p.
type Request struct {
	FramesDir  string
	AudioPath  string
	FPS        int
	Width      int
	Height     int
	OutputPath string
}

// Encoder shells out to ffmpeg. The binary path is configurable so
// deployments can pin a specific build.
type Encoder struct {
	ffmpegPath string
}

func NewEncoder(ffmpegPath string) *Encoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Encoder{ffmpegPath: ffmpegPath}
}

// Encode muxes the numbered PNG frames under req.FramesDir with the audio
// track into an H.264 MP4 at req.OutputPath. The output duration follows
// the shorter stream so trailing silence never pads the video.
func (e *Encoder) Encode(ctx context.Context, req Request) error {
	logger := logging.FromContext(ctx)

	if req.FPS <= 0 {
		return fmt.Errorf("encode: fps must be positive, got %d", req.FPS)
	}
	if req.FramesDir == "" || req.OutputPath == "" {
		return fmt.Errorf("encode: frames directory and output path are required")
	}

	args := buildArgs(req)
	logger.Info("encoding video", "output", req.OutputPath, "fps", req.FPS)

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, tail(stderr.String(), 512))
	}
	return nil
}

func buildArgs(req Request) []string {
	args := []string{
		"-y",
		"-framerate", fmt.Sprintf("%d", req.FPS),
		"-i", filepath.Join(req.FramesDir, "frame_%06d.png"),
	}
	if req.AudioPath != "" {
		args = append(args, "-i", req.AudioPath)
	}
	args = append(args,
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "22",
		"-pix_fmt", "yuv420p",
	)
	if req.Width > 0 && req.Height > 0 {
		args = append(args, "-s", fmt.Sprintf("%dx%d", req.Width, req.Height))
	}
	// No -shortest: the frame sequence intentionally outlasts the narration
	// by the silent tail, and the output must run to the last frame.
	if req.AudioPath != "" {
		args = append(args, "-c:a", "aac")
	}
	args = append(args, req.OutputPath)
	return args
}

// tail returns at most the last n bytes of s. ffmpeg writes its failure
// reason at the end of a long progress log.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
