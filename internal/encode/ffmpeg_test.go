package encode

import (
	"context"
	"strings"
	"testing"
)

func TestBuildArgsWithAudio(t *testing.T) {
	args := buildArgs(Request{
		FramesDir:  "/tmp/frames",
		AudioPath:  "/tmp/narration.mp3",
		FPS:        60,
		Width:      1920,
		Height:     1080,
		OutputPath: "/tmp/out.mp4",
	})

	joined := strings.Join(args, " ")
	want := "-y -framerate 60 -i /tmp/frames/frame_%06d.png -i /tmp/narration.mp3 " +
		"-c:v libx264 -preset fast -crf 22 -pix_fmt yuv420p -s 1920x1080 -c:a aac /tmp/out.mp4"
	if joined != want {
		t.Errorf("args = %q, want %q", joined, want)
	}
	// The video stream outlasts the narration by the silent tail and the
	// mux must run to the last frame, never to the audio EOF.
	if strings.Contains(joined, "-shortest") {
		t.Errorf("output must not be trimmed to the audio stream: %q", joined)
	}
}

func TestBuildArgsWithoutAudio(t *testing.T) {
	args := buildArgs(Request{
		FramesDir:  "/tmp/frames",
		FPS:        30,
		OutputPath: "/tmp/out.mp4",
	})

	joined := strings.Join(args, " ")
	if strings.Contains(joined, "-c:a") || strings.Contains(joined, "-shortest") {
		t.Errorf("audio flags present without an audio input: %q", joined)
	}
	if !strings.HasSuffix(joined, "/tmp/out.mp4") {
		t.Errorf("output path must come last: %q", joined)
	}
}

func TestEncodeValidatesRequest(t *testing.T) {
	enc := NewEncoder("")

	if err := enc.Encode(context.Background(), Request{FramesDir: "/tmp/frames", OutputPath: "/tmp/out.mp4"}); err == nil {
		t.Error("expected error for zero fps")
	}
	if err := enc.Encode(context.Background(), Request{FPS: 60}); err == nil {
		t.Error("expected error for missing paths")
	}
}

func TestTail(t *testing.T) {
	if got := tail("short", 512); got != "short" {
		t.Errorf("tail = %q", got)
	}
	if got := tail("abcdef", 3); got != "def" {
		t.Errorf("tail = %q", got)
	}
}
