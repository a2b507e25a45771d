package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ezanim/backend/internal/config"
	"github.com/ezanim/backend/internal/generation"
	"github.com/ezanim/backend/internal/models"
	"github.com/ezanim/backend/internal/repositories"
	"github.com/ezanim/backend/internal/speech"
)

func newServiceFixture(t *testing.T, store *recordingStore, videos *repositories.MemoryVideoStore) *Service {
	t.Helper()

	author := &stubAuthor{composeHTML: "<html>window.tl</html>"}
	critic := &stubCritic{reviews: []generation.Review{{HasIssues: false}}}
	qa := NewQALoop(store, critic, author, &stubJudge{decision: generation.DecisionApprove}, 2)

	creator := NewCreator(CreatorDeps{
		Requests:    store,
		Scripts:     &stubScripts{script: "Gravity pulls the apple straight down."},
		Synthesizer: &stubSynthesizer{audio: []byte("mp3")},
		Transcriber: &stubTranscriber{transcript: speech.Transcript{Words: wordTimings(8.0)}},
		Author:      author,
		QA:          qa,
		WorkDir:     t.TempDir(),
	})
	renderer := NewRenderer(RendererDeps{
		Requests:  store,
		Videos:    videos,
		Capturer:  &stubCapturer{},
		Encoder:   &stubEncoder{},
		Publisher: &stubPublisher{},
		WorkDir:   t.TempDir(),
		FPS:       60,
	})

	service := NewService(creator, renderer, store, videos, config.QueueConfig{
		CreationWorkers: 1,
		RenderWorkers:   1,
		QueueSize:       4,
	}, nil)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = service.Shutdown(ctx)
	})
	return service
}

func waitForStatus(t *testing.T, store *recordingStore, id string, want models.Status) models.VideoRequest {
	t.Helper()
	var request models.VideoRequest
	require.Eventually(t, func() bool {
		var err error
		request, err = store.Get(context.Background(), id)
		return err == nil && request.Status == want
	}, 5*time.Second, 5*time.Millisecond, "request never reached %s", want)
	return request
}

func TestSubmitRejectsShortPrompt(t *testing.T) {
	service := newServiceFixture(t, newRecordingStore(), repositories.NewMemoryVideoStore())

	_, err := service.Submit(context.Background(), "too short", "16:9")
	require.ErrorIs(t, err, ErrPromptTooShort)
}

func TestSubmitRejectsUnknownAspectRatio(t *testing.T) {
	service := newServiceFixture(t, newRecordingStore(), repositories.NewMemoryVideoStore())

	_, err := service.Submit(context.Background(), "explain the tides to sailors", "4:3")
	require.Error(t, err)
}

func TestTriggerRenderGuard(t *testing.T) {
	store := newRecordingStore()
	service := newServiceFixture(t, store, repositories.NewMemoryVideoStore())

	cases := []struct {
		status models.Status
		allow  bool
	}{
		{models.StatusPending, false},
		{models.StatusPreviewReady, true},
		{models.StatusQACompleted, true},
		{models.StatusRendering, false},
		{models.StatusCompleted, false},
		{models.StatusFailed, false},
	}

	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			request := models.NewVideoRequest("explain ocean currents simply", models.AspectLandscape)
			request = request.WithHTMLContent("<html>window.tl</html>").WithStatus(tc.status)
			require.NoError(t, store.Create(context.Background(), request))

			got, err := service.TriggerRender(context.Background(), request.ID)
			if !tc.allow {
				require.ErrorIs(t, err, ErrNotRenderable)
				// Rejection leaves the request untouched.
				stored, gerr := store.Get(context.Background(), request.ID)
				require.NoError(t, gerr)
				require.Equal(t, tc.status, stored.Status)
				return
			}
			require.NoError(t, err)
			require.Equal(t, models.StatusRendering, got.Status)
		})
	}
}

func TestTriggerRenderUnknownRequest(t *testing.T) {
	service := newServiceFixture(t, newRecordingStore(), repositories.NewMemoryVideoStore())

	_, err := service.TriggerRender(context.Background(), "no-such-id")
	require.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestEndToEndPipeline(t *testing.T) {
	store := newRecordingStore()
	videos := repositories.NewMemoryVideoStore()
	service := newServiceFixture(t, store, videos)

	request, err := service.Submit(context.Background(), "explain how rainbows form", "16:9")
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, request.Status)

	// The creation worker carries the request through both phases and QA.
	afterQA := waitForStatus(t, store, request.ID, models.StatusQACompleted)
	require.NotEmpty(t, afterQA.HTMLContent)
	require.Equal(t, 10.0, afterQA.Duration)

	triggered, err := service.TriggerRender(context.Background(), request.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusRendering, triggered.Status)

	waitForStatus(t, store, request.ID, models.StatusCompleted)

	video, err := service.VideoByRequest(context.Background(), request.ID)
	require.NoError(t, err)
	require.Equal(t, request.ID, video.VideoRequestID)
	require.Equal(t, 1920, video.Width)
	require.Equal(t, 1080, video.Height)
	require.Equal(t, 60, video.FPS)
}
