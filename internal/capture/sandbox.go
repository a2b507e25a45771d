// Package capture turns a self-animating HTML document into an exact frame
// sequence by driving its timeline directly instead of letting it play in
// real time.
package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"

	"github.com/ezanim/backend/internal/config"
)

// ErrTimelineMissing indicates the loaded document never exposed its
// animation timeline; capturing would only produce a frozen frame sequence.
var ErrTimelineMissing = errors.New("animation timeline never became ready")

// Sandbox is one isolated browser page under external control.
type Sandbox interface {
	// SetFlag arranges for a truthy global to exist before any document
	// script runs. Must be called before Load.
	SetFlag(ctx context.Context, name string) error
	Load(ctx context.Context, html string, width, height int) error
	WaitForGlobal(ctx context.Context, name string, timeout time.Duration) error
	Seek(ctx context.Context, name string, ms float64) error
	Screenshot(ctx context.Context) ([]byte, error)
	Close() error
}

// SandboxFactory opens fresh sandbox pages against a shared browser.
type SandboxFactory interface {
	Open(ctx context.Context) (Sandbox, error)
}

// ChromeFactory pools a single headless browser process and hands out one tab
// per capture call. The browser is started lazily on first use.
type ChromeFactory struct {
	chromePath string

	mu        sync.Mutex
	allocCtx  context.Context
	allocStop context.CancelFunc
}

// NewChromeFactory constructs a factory from configuration.
func NewChromeFactory(cfg config.RenderConfig) *ChromeFactory {
	return &ChromeFactory{chromePath: cfg.ChromePath}
}

func (f *ChromeFactory) allocator() context.Context {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.allocCtx == nil {
		opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
		opts = append(opts,
			chromedp.Flag("hide-scrollbars", true),
			chromedp.Flag("force-device-scale-factor", "1"),
		)
		if f.chromePath != "" {
			opts = append(opts, chromedp.ExecPath(f.chromePath))
		}
		f.allocCtx, f.allocStop = chromedp.NewExecAllocator(context.Background(), opts...)
	}

	return f.allocCtx
}

// Open creates a new tab. The caller owns it exclusively and must Close it.
func (f *ChromeFactory) Open(ctx context.Context) (Sandbox, error) {
	tabCtx, cancel := chromedp.NewContext(f.allocator())

	// Force browser startup now so failures surface here, not mid-capture.
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("start browser sandbox: %w", err)
	}

	return &chromeSandbox{ctx: tabCtx, cancel: cancel}, nil
}

// Shutdown terminates the pooled browser process.
func (f *ChromeFactory) Shutdown() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.allocStop != nil {
		f.allocStop()
		f.allocCtx = nil
		f.allocStop = nil
	}
}

type chromeSandbox struct {
	ctx      context.Context
	cancel   context.CancelFunc
	tempFile string
}

func (s *chromeSandbox) SetFlag(ctx context.Context, name string) error {
	script := fmt.Sprintf("window.%s = true;", name)
	err := chromedp.Run(s.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(script).Do(ctx)
		return err
	}))
	if err != nil {
		return fmt.Errorf("set sandbox flag %s: %w", name, err)
	}
	return nil
}

func (s *chromeSandbox) Load(ctx context.Context, html string, width, height int) error {
	// Navigating a real file keeps relative CDN fetches and same-origin
	// script execution behaving like production.
	file := filepath.Join(os.TempDir(), fmt.Sprintf("ezanim-capture-%s.html", uuid.NewString()))
	if err := os.WriteFile(file, []byte(html), 0o644); err != nil {
		return fmt.Errorf("write sandbox document: %w", err)
	}
	s.tempFile = file

	err := chromedp.Run(s.ctx,
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Navigate("file://"+file),
	)
	if err != nil {
		return fmt.Errorf("load sandbox document: %w", err)
	}
	return nil
}

func (s *chromeSandbox) WaitForGlobal(ctx context.Context, name string, timeout time.Duration) error {
	expr := fmt.Sprintf("typeof window.%s !== 'undefined' && window.%s !== null", name, name)
	err := chromedp.Run(s.ctx,
		chromedp.Poll(expr, nil, chromedp.WithPollingTimeout(timeout)),
	)
	if err != nil {
		if errors.Is(err, chromedp.ErrPollingTimeout) {
			return fmt.Errorf("%w: global %s not exposed within %s", ErrTimelineMissing, name, timeout)
		}
		return fmt.Errorf("wait for global %s: %w", name, err)
	}

	// Pin the timeline at zero in a paused state before any seeking.
	err = chromedp.Run(s.ctx,
		chromedp.Evaluate(fmt.Sprintf("window.%s.pause(); window.%s.seek(0);", name, name), nil),
	)
	if err != nil {
		return fmt.Errorf("pause timeline: %w", err)
	}
	return nil
}

func (s *chromeSandbox) Seek(ctx context.Context, name string, ms float64) error {
	expr := fmt.Sprintf("window.%s.seek(%.3f);", name, ms)
	if err := chromedp.Run(s.ctx, chromedp.Evaluate(expr, nil)); err != nil {
		return fmt.Errorf("seek timeline to %.3fms: %w", ms, err)
	}
	return nil
}

func (s *chromeSandbox) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := chromedp.Run(s.ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}
	return buf, nil
}

func (s *chromeSandbox) Close() error {
	s.cancel()
	if s.tempFile != "" {
		_ = os.Remove(s.tempFile)
	}
	return nil
}
