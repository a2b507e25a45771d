package capture

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ezanim/backend/internal/config"
)

type fakeSandbox struct {
	flag        string
	loaded      bool
	timelineErr error
	seekGlobal  string
	seeks       []float64
	// latency simulates a slow host; it must not influence the output.
	latency func() time.Duration
	closed  bool
}

func (s *fakeSandbox) SetFlag(_ context.Context, name string) error {
	s.flag = name
	return nil
}

func (s *fakeSandbox) Load(_ context.Context, html string, width, height int) error {
	s.loaded = true
	return nil
}

func (s *fakeSandbox) WaitForGlobal(_ context.Context, name string, timeout time.Duration) error {
	return s.timelineErr
}

func (s *fakeSandbox) Seek(_ context.Context, name string, ms float64) error {
	if s.latency != nil {
		time.Sleep(s.latency())
	}
	s.seekGlobal = name
	s.seeks = append(s.seeks, ms)
	return nil
}

func (s *fakeSandbox) Screenshot(_ context.Context) ([]byte, error) {
	return []byte("png"), nil
}

func (s *fakeSandbox) Close() error {
	s.closed = true
	return nil
}

type fakeFactory struct {
	sandbox *fakeSandbox
}

func (f *fakeFactory) Open(_ context.Context) (Sandbox, error) {
	return f.sandbox, nil
}

func newTestEngine(sandbox *fakeSandbox) *Engine {
	return NewEngine(&fakeFactory{sandbox: sandbox}, config.RenderConfig{
		SettleDelay:  0,
		TimelineWait: time.Second,
	})
}

func TestCaptureProducesExactFrameSequence(t *testing.T) {
	cases := []struct {
		duration   float64
		fps        int
		wantFrames int
	}{
		{duration: 1.0, fps: 30, wantFrames: 30},
		{duration: 2.5, fps: 30, wantFrames: 75},
		{duration: 0.1, fps: 60, wantFrames: 6},
		{duration: 10.02, fps: 60, wantFrames: 602},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%vs@%dfps", tc.duration, tc.fps), func(t *testing.T) {
			sandbox := &fakeSandbox{}
			engine := newTestEngine(sandbox)

			frames, err := engine.Capture(context.Background(), Request{
				HTML:      "<html></html>",
				Duration:  tc.duration,
				FPS:       tc.fps,
				Width:     1920,
				Height:    1080,
				OutputDir: t.TempDir(),
			})
			if err != nil {
				t.Fatalf("capture: %v", err)
			}

			if len(frames) != tc.wantFrames {
				t.Fatalf("captured %d frames, want %d", len(frames), tc.wantFrames)
			}
			if len(sandbox.seeks) != tc.wantFrames {
				t.Fatalf("performed %d seeks, want %d", len(sandbox.seeks), tc.wantFrames)
			}

			for i, ms := range sandbox.seeks {
				want := float64(i) / float64(tc.fps) * 1000
				if ms != want {
					t.Fatalf("frame %d seeked to %fms, want %fms", i, ms, want)
				}
			}
		})
	}
}

func TestCaptureIndependentOfHostLatency(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	jittery := &fakeSandbox{latency: func() time.Duration {
		return time.Duration(rng.Intn(3)) * time.Millisecond
	}}
	steady := &fakeSandbox{}

	run := func(sandbox *fakeSandbox) []float64 {
		engine := newTestEngine(sandbox)
		if _, err := engine.Capture(context.Background(), Request{
			HTML:      "<html></html>",
			Duration:  0.5,
			FPS:       24,
			Width:     1080,
			Height:    1080,
			OutputDir: t.TempDir(),
		}); err != nil {
			t.Fatalf("capture: %v", err)
		}
		return sandbox.seeks
	}

	jitterySeeks := run(jittery)
	steadySeeks := run(steady)

	if len(jitterySeeks) != len(steadySeeks) {
		t.Fatalf("frame counts differ under latency: %d vs %d", len(jitterySeeks), len(steadySeeks))
	}
	for i := range steadySeeks {
		if jitterySeeks[i] != steadySeeks[i] {
			t.Fatalf("frame %d timestamp differs under latency: %f vs %f", i, jitterySeeks[i], steadySeeks[i])
		}
	}
}

func TestCaptureWritesOrderedFrameFiles(t *testing.T) {
	sandbox := &fakeSandbox{}
	engine := newTestEngine(sandbox)
	dir := t.TempDir()

	frames, err := engine.Capture(context.Background(), Request{
		HTML:      "<html></html>",
		Duration:  0.2,
		FPS:       10,
		Width:     1920,
		Height:    1080,
		OutputDir: dir,
	})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}

	if len(frames) != 2 {
		t.Fatalf("captured %d frames, want 2", len(frames))
	}
	for i, frame := range frames {
		want := filepath.Join(dir, fmt.Sprintf("frame_%06d.png", i))
		if frame != want {
			t.Errorf("frame %d path = %s, want %s", i, frame, want)
		}
		if _, err := os.Stat(frame); err != nil {
			t.Errorf("frame file missing: %v", err)
		}
	}

	if sandbox.flag != captureModeFlag {
		t.Errorf("capture flag = %q, want %q", sandbox.flag, captureModeFlag)
	}
	if sandbox.seekGlobal != timelineGlobal {
		t.Errorf("seek global = %q, want %q", sandbox.seekGlobal, timelineGlobal)
	}
	if !sandbox.closed {
		t.Error("sandbox not closed after capture")
	}
}

func TestCaptureFailsFastWithoutTimeline(t *testing.T) {
	sandbox := &fakeSandbox{timelineErr: ErrTimelineMissing}
	engine := newTestEngine(sandbox)

	_, err := engine.Capture(context.Background(), Request{
		HTML:      "<html></html>",
		Duration:  5,
		FPS:       60,
		Width:     1920,
		Height:    1080,
		OutputDir: t.TempDir(),
	})
	if !errors.Is(err, ErrTimelineMissing) {
		t.Fatalf("error = %v, want ErrTimelineMissing", err)
	}
	if len(sandbox.seeks) != 0 {
		t.Errorf("captured %d frames despite missing timeline", len(sandbox.seeks))
	}
	if !sandbox.closed {
		t.Error("sandbox not closed on failure")
	}
}

func TestTotalFrames(t *testing.T) {
	if got := TotalFrames(10, 60); got != 600 {
		t.Errorf("TotalFrames(10, 60) = %d, want 600", got)
	}
	if got := TotalFrames(10.001, 60); got != 601 {
		t.Errorf("TotalFrames(10.001, 60) = %d, want 601", got)
	}
}
