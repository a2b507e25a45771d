package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrUnsupportedAspectRatio rejects ratios outside the three presets.
var ErrUnsupportedAspectRatio = errors.New("unsupported aspect ratio")

// Status tracks a VideoRequest through the generation and render pipeline.
type Status string

const (
	StatusPending      Status = "PENDING"
	StatusPreviewReady Status = "PREVIEW_READY"
	StatusQACompleted  Status = "QA_COMPLETED"
	StatusRendering    Status = "RENDERING"
	StatusCompleted    Status = "COMPLETED"
	StatusFailed       Status = "FAILED"
)

// statusRank orders the forward progression of the pipeline. FAILED sits
// outside the ordering and is handled explicitly.
var statusRank = map[Status]int{
	StatusPending:      0,
	StatusPreviewReady: 1,
	StatusQACompleted:  2,
	StatusRendering:    3,
	StatusCompleted:    4,
}

// Valid reports whether s is a known lifecycle status.
func (s Status) Valid() bool {
	if s == StatusFailed {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// Terminal reports whether no further transitions are allowed from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransitionTo reports whether moving from s to next respects the
// one-directional lifecycle. FAILED is reachable from any non-terminal state.
func (s Status) CanTransitionTo(next Status) bool {
	if s.Terminal() {
		return false
	}
	if next == StatusFailed {
		return true
	}
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to > from
}

// RenderEligible reports whether a render may be triggered from s.
func (s Status) RenderEligible() bool {
	return s == StatusPreviewReady || s == StatusQACompleted
}

// AspectRatio selects one of the supported output shapes.
type AspectRatio string

const (
	AspectLandscape AspectRatio = "16:9"
	AspectPortrait  AspectRatio = "9:16"
	AspectSquare    AspectRatio = "1:1"
)

// ParseAspectRatio validates a caller-supplied ratio, defaulting to 16:9 when
// empty.
func ParseAspectRatio(s string) (AspectRatio, error) {
	switch AspectRatio(s) {
	case AspectLandscape, AspectPortrait, AspectSquare:
		return AspectRatio(s), nil
	case "":
		return AspectLandscape, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnsupportedAspectRatio, s)
	}
}

// Dimensions maps the ratio to its fixed pixel preset.
func (a AspectRatio) Dimensions() (width, height int) {
	switch a {
	case AspectPortrait:
		return 1080, 1920
	case AspectSquare:
		return 1080, 1080
	default:
		return 1920, 1080
	}
}

// VideoRequest is the aggregate root of the generation pipeline. Values are
// immutable: every With* method returns a new copy with UpdatedAt bumped, so
// readers never observe a half-applied mutation.
type VideoRequest struct {
	ID          string
	Prompt      string
	Script      string
	HTMLContent string
	AudioPath   string
	Duration    float64
	AspectRatio AspectRatio
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewVideoRequest creates a pending request for the given prompt.
func NewVideoRequest(prompt string, aspect AspectRatio) VideoRequest {
	now := time.Now().UTC()
	return VideoRequest{
		ID:          uuid.NewString(),
		Prompt:      prompt,
		AspectRatio: aspect,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// WithStatus returns a copy of the request in the given status.
func (r VideoRequest) WithStatus(status Status) VideoRequest {
	r.Status = status
	r.UpdatedAt = time.Now().UTC()
	return r
}

// WithScript returns a copy carrying the generated narration script.
func (r VideoRequest) WithScript(script string) VideoRequest {
	r.Script = script
	r.UpdatedAt = time.Now().UTC()
	return r
}

// WithHTMLContent returns a copy carrying the latest animation markup.
func (r VideoRequest) WithHTMLContent(html string) VideoRequest {
	r.HTMLContent = html
	r.UpdatedAt = time.Now().UTC()
	return r
}

// WithAudio returns a copy carrying the synthesized audio reference and the
// authoritative duration computed from its transcript.
func (r VideoRequest) WithAudio(audioPath string, duration float64) VideoRequest {
	r.AudioPath = audioPath
	r.Duration = duration
	r.UpdatedAt = time.Now().UTC()
	return r
}

// Video is the rendered artifact produced for a request.
type Video struct {
	ID             string
	VideoRequestID string
	URL            string
	StorageKey     string
	Duration       float64
	Width          int
	Height         int
	FPS            int
	CreatedAt      time.Time
}

// NewVideo creates a video record for the given request.
func NewVideo(videoRequestID, url, storageKey string, duration float64, width, height, fps int) Video {
	return Video{
		ID:             uuid.NewString(),
		VideoRequestID: videoRequestID,
		URL:            url,
		StorageKey:     storageKey,
		Duration:       duration,
		Width:          width,
		Height:         height,
		FPS:            fps,
		CreatedAt:      time.Now().UTC(),
	}
}
