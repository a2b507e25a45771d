// Package pipeline orchestrates the generation and render lifecycle of a
// video request: the two-phase creation pipeline, the bounded refinement
// loop, and the frame-accurate render path.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ezanim/backend/internal/config"
	"github.com/ezanim/backend/internal/logging"
	"github.com/ezanim/backend/internal/models"
	"github.com/ezanim/backend/internal/queue"
	"github.com/ezanim/backend/internal/repositories"
)

const minPromptLength = 10

// Service is the request-accepting boundary of the pipeline. It validates
// submissions, enforces the lifecycle guards, and dispatches work onto the
// creation and render queues.
type Service struct {
	requests repositories.VideoRequestStore
	videos   repositories.VideoStore
	creator  *Creator
	renderer *Renderer

	creation *queue.Queue
	render   *queue.Queue
}

// NewService wires the service and starts the two worker pools. The creation
// queue owns Phase 1, Phase 2 and the refinement loop; the render queue owns
// capture, encode and publish.
func NewService(creator *Creator, renderer *Renderer, requests repositories.VideoRequestStore, videos repositories.VideoStore, qcfg config.QueueConfig, logger *slog.Logger) *Service {
	s := &Service{
		requests: requests,
		videos:   videos,
		creator:  creator,
		renderer: renderer,
	}

	s.creation = queue.New("creation", s.handleCreation, queue.Config{
		QueueSize: qcfg.QueueSize,
		Workers:   qcfg.CreationWorkers,
	}, logger)
	s.render = queue.New("render", s.handleRender, queue.Config{
		QueueSize: qcfg.QueueSize,
		Workers:   qcfg.RenderWorkers,
	}, logger)

	return s
}

// Submit validates the prompt, records a PENDING request and queues the
// creation job.
func (s *Service) Submit(ctx context.Context, prompt, aspect string) (models.VideoRequest, error) {
	if len(strings.TrimSpace(prompt)) < minPromptLength {
		return models.VideoRequest{}, ErrPromptTooShort
	}

	ratio, err := models.ParseAspectRatio(aspect)
	if err != nil {
		return models.VideoRequest{}, err
	}

	request := models.NewVideoRequest(strings.TrimSpace(prompt), ratio)
	if err := s.requests.Create(ctx, request); err != nil {
		return models.VideoRequest{}, fmt.Errorf("record request: %w", err)
	}

	if _, err := s.creation.Enqueue(ctx, request.ID); err != nil {
		s.failEnqueue(ctx, request)
		return models.VideoRequest{}, fmt.Errorf("queue creation job: %w", err)
	}

	return request, nil
}

// Get returns the request's latest durable state.
func (s *Service) Get(ctx context.Context, id string) (models.VideoRequest, error) {
	return s.requests.Get(ctx, id)
}

// TriggerRender moves a render-eligible request to RENDERING and queues the
// render job. Ineligible requests are rejected with ErrNotRenderable and no
// state change.
func (s *Service) TriggerRender(ctx context.Context, id string) (models.VideoRequest, error) {
	request, err := s.requests.Get(ctx, id)
	if err != nil {
		return models.VideoRequest{}, err
	}
	if !request.Status.RenderEligible() {
		return models.VideoRequest{}, fmt.Errorf("%w: status is %s", ErrNotRenderable, request.Status)
	}

	request = request.WithStatus(models.StatusRendering)
	if err := s.requests.Update(ctx, request); err != nil {
		return models.VideoRequest{}, fmt.Errorf("record render trigger: %w", err)
	}

	if _, err := s.render.Enqueue(ctx, request.ID); err != nil {
		s.failEnqueue(ctx, request)
		return models.VideoRequest{}, fmt.Errorf("queue render job: %w", err)
	}

	return request, nil
}

// Refine runs one caller-driven fixer pass over the current draft, outside
// the automatic loop. An empty critique defers to the critic. Only
// previewable requests qualify.
func (s *Service) Refine(ctx context.Context, id, critique string) (models.VideoRequest, error) {
	request, err := s.requests.Get(ctx, id)
	if err != nil {
		return models.VideoRequest{}, err
	}
	if !request.Status.RenderEligible() {
		return models.VideoRequest{}, fmt.Errorf("%w: status is %s", ErrNotRenderable, request.Status)
	}
	if request.HTMLContent == "" {
		return models.VideoRequest{}, ErrNoMarkup
	}

	return s.creator.qa.RefineOnce(ctx, request, critique)
}

// VideoByRequest returns the rendered artifact for the request, if one exists.
func (s *Service) VideoByRequest(ctx context.Context, requestID string) (models.Video, error) {
	return s.videos.FindByRequestID(ctx, requestID)
}

// Shutdown drains both queues.
func (s *Service) Shutdown(ctx context.Context) error {
	if err := s.creation.Shutdown(ctx); err != nil {
		return err
	}
	return s.render.Shutdown(ctx)
}

func (s *Service) handleCreation(ctx context.Context, payload any) error {
	id, ok := payload.(string)
	if !ok {
		return fmt.Errorf("creation job: unexpected payload %T", payload)
	}
	return s.creator.Run(ctx, id)
}

func (s *Service) handleRender(ctx context.Context, payload any) error {
	id, ok := payload.(string)
	if !ok {
		return fmt.Errorf("render job: unexpected payload %T", payload)
	}
	return s.renderer.Run(ctx, id)
}

// failEnqueue marks a request FAILED when its job never made it onto a queue.
func (s *Service) failEnqueue(ctx context.Context, request models.VideoRequest) {
	logger := logging.FromContext(ctx)
	if err := s.requests.Update(ctx, request.WithStatus(models.StatusFailed)); err != nil {
		logger.Error("failed to mark request failed", "videoRequestID", request.ID, "error", err)
	}
}
