package pipeline

import (
	"context"

	"github.com/ezanim/backend/internal/capture"
	"github.com/ezanim/backend/internal/encode"
	"github.com/ezanim/backend/internal/generation"
)

// ScriptWriter turns a prompt into narration text.
type ScriptWriter interface {
	Write(ctx context.Context, prompt string) (string, error)
}

// AnimationAuthor drafts and refines the animation markup.
type AnimationAuthor interface {
	Compose(ctx context.Context, input generation.ComposeInput) (string, error)
	Refine(ctx context.Context, html, critique string) (string, error)
}

// Critic reviews a draft against the original prompt.
type Critic interface {
	Review(ctx context.Context, html, prompt string) (generation.Review, error)
}

// Judge decides whether a refinement resolved the critique.
type Judge interface {
	Evaluate(ctx context.Context, critique, html string) (generation.Decision, error)
}

// FrameCapturer samples the animation into an ordered frame sequence.
type FrameCapturer interface {
	Capture(ctx context.Context, req capture.Request) ([]string, error)
}

// Encoder muxes frames and audio into a video file.
type Encoder interface {
	Encode(ctx context.Context, req encode.Request) error
}

// Publisher uploads a finished video and returns its public URL and storage key.
type Publisher interface {
	PublishVideo(ctx context.Context, requestID, path string) (url, key string, err error)
}
