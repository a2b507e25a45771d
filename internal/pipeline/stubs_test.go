package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/ezanim/backend/internal/capture"
	"github.com/ezanim/backend/internal/encode"
	"github.com/ezanim/backend/internal/generation"
	"github.com/ezanim/backend/internal/models"
	"github.com/ezanim/backend/internal/repositories"
	"github.com/ezanim/backend/internal/speech"
)

type stubScripts struct {
	script string
	err    error
}

func (s *stubScripts) Write(context.Context, string) (string, error) {
	return s.script, s.err
}

type stubSynthesizer struct {
	audio []byte
	err   error
}

func (s *stubSynthesizer) Synthesize(context.Context, string) ([]byte, error) {
	return s.audio, s.err
}

type stubTranscriber struct {
	transcript speech.Transcript
	err        error
}

func (s *stubTranscriber) Transcribe(context.Context, []byte) (speech.Transcript, error) {
	return s.transcript, s.err
}

type stubAuthor struct {
	mu          sync.Mutex
	composeHTML string
	composeErr  error
	refineErr   error
	composes    int
	refines     int
}

func (s *stubAuthor) Compose(context.Context, generation.ComposeInput) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.composes++
	return s.composeHTML, s.composeErr
}

func (s *stubAuthor) Refine(_ context.Context, html, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refines++
	if s.refineErr != nil {
		return "", s.refineErr
	}
	return fmt.Sprintf("%s<!-- revision %d -->", html, s.refines), nil
}

func (s *stubAuthor) counts() (composes, refines int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.composes, s.refines
}

type stubCritic struct {
	mu      sync.Mutex
	reviews []generation.Review
	err     error
	calls   int
}

func (s *stubCritic) Review(context.Context, string, string) (generation.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return generation.Review{}, s.err
	}
	review := s.reviews[len(s.reviews)-1]
	if s.calls < len(s.reviews) {
		review = s.reviews[s.calls]
	}
	s.calls++
	return review, nil
}

func (s *stubCritic) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubJudge struct {
	mu       sync.Mutex
	decision generation.Decision
	err      error
	calls    int
}

func (s *stubJudge) Evaluate(context.Context, string, string) (generation.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.decision, s.err
}

func (s *stubJudge) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubSearcher struct {
	assets []generation.Asset
}

func (s *stubSearcher) Search(context.Context, string, int) []generation.Asset {
	return s.assets
}

type stubCapturer struct {
	mu   sync.Mutex
	err  error
	last capture.Request
}

func (s *stubCapturer) Capture(_ context.Context, req capture.Request) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	frames := make([]string, capture.TotalFrames(req.Duration, req.FPS))
	return frames, nil
}

func (s *stubCapturer) lastRequest() capture.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

type stubEncoder struct {
	mu   sync.Mutex
	err  error
	last encode.Request
}

func (s *stubEncoder) Encode(_ context.Context, req encode.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = req
	return s.err
}

type stubPublisher struct {
	url string
	key string
	err error
}

func (s *stubPublisher) PublishVideo(_ context.Context, requestID, _ string) (string, string, error) {
	if s.err != nil {
		return "", "", s.err
	}
	if s.url != "" {
		return s.url, s.key, nil
	}
	return "https://cdn.example.com/videos/" + requestID + ".mp4", "videos/" + requestID + ".mp4", nil
}

// recordingStore wraps the in-memory store and captures every status the
// pipeline persists, in order.
type recordingStore struct {
	repositories.VideoRequestStore
	mu       sync.Mutex
	statuses []models.Status
}

func newRecordingStore() *recordingStore {
	return &recordingStore{VideoRequestStore: repositories.NewMemoryVideoRequestStore()}
}

func (s *recordingStore) Update(ctx context.Context, request models.VideoRequest) error {
	if err := s.VideoRequestStore.Update(ctx, request); err != nil {
		return err
	}
	s.mu.Lock()
	s.statuses = append(s.statuses, request.Status)
	s.mu.Unlock()
	return nil
}

func (s *recordingStore) statusHistory() []models.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Status, len(s.statuses))
	copy(out, s.statuses)
	return out
}

func wordTimings(end float64) []speech.WordTiming {
	return []speech.WordTiming{
		{Word: "hello", Start: 0, End: 0.4},
		{Word: "world", Start: 0.5, End: end},
	}
}
