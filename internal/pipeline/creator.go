package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ezanim/backend/internal/generation"
	"github.com/ezanim/backend/internal/logging"
	"github.com/ezanim/backend/internal/models"
	"github.com/ezanim/backend/internal/repositories"
	"github.com/ezanim/backend/internal/speech"
)

// Creator runs the content-generation half of the pipeline: Phase 1 produces
// the narration script, audio and word timings; Phase 2 drafts the animation
// and puts it through the refinement loop. One creation job owns the request
// from PENDING through QA_COMPLETED.
type Creator struct {
	requests    repositories.VideoRequestStore
	scripts     ScriptWriter
	synthesizer speech.Synthesizer
	transcriber speech.Transcriber
	assets      generation.AssetSearcher
	author      AnimationAuthor
	qa          *QALoop
	workDir     string
	assetCount  int
}

// CreatorDeps bundles the collaborators a Creator needs.
type CreatorDeps struct {
	Requests    repositories.VideoRequestStore
	Scripts     ScriptWriter
	Synthesizer speech.Synthesizer
	Transcriber speech.Transcriber
	Assets      generation.AssetSearcher
	Author      AnimationAuthor
	QA          *QALoop
	WorkDir     string
	AssetCount  int
}

func NewCreator(deps CreatorDeps) *Creator {
	if deps.AssetCount <= 0 {
		deps.AssetCount = 3
	}
	return &Creator{
		requests:    deps.Requests,
		scripts:     deps.Scripts,
		synthesizer: deps.Synthesizer,
		transcriber: deps.Transcriber,
		assets:      deps.Assets,
		author:      deps.Author,
		qa:          deps.QA,
		workDir:     deps.WorkDir,
		assetCount:  deps.AssetCount,
	}
}

// Run executes both generation phases for the request. Any stage error marks
// the request FAILED; whatever script, audio or markup was persisted before
// the failure stays in place for diagnosis.
func (c *Creator) Run(ctx context.Context, requestID string) error {
	ctx, span := logging.StartSpan(ctx, "pipeline.create")
	defer span.End()
	logger := logging.FromContext(ctx).With("videoRequestID", requestID)
	ctx = logging.WithLogger(ctx, logger)

	request, err := c.requests.Get(ctx, requestID)
	if err != nil {
		return fmt.Errorf("load request: %w", err)
	}

	request, words, err := c.runPhaseOne(ctx, request)
	if err != nil {
		c.markFailed(ctx, request)
		return err
	}

	request, err = c.runPhaseTwo(ctx, request, words)
	if err != nil {
		c.markFailed(ctx, request)
		return err
	}

	final, err := c.qa.Run(ctx, request)
	if err != nil {
		c.markFailed(ctx, final)
		return err
	}

	final = final.WithStatus(models.StatusQACompleted)
	if err := c.requests.Update(ctx, final); err != nil {
		return fmt.Errorf("persist qa result: %w", err)
	}

	logger.Info("creation pipeline finished", "status", final.Status)
	return nil
}

// runPhaseOne writes the script, synthesizes and stores the narration audio,
// and derives the authoritative duration from the transcript word timings.
func (c *Creator) runPhaseOne(ctx context.Context, request models.VideoRequest) (models.VideoRequest, []speech.WordTiming, error) {
	ctx, span := logging.StartSpan(ctx, "pipeline.phase1")
	defer span.End()
	logger := logging.FromContext(ctx)

	script, err := c.scripts.Write(ctx, request.Prompt)
	if err != nil {
		return request, nil, fmt.Errorf("write script: %w", err)
	}
	request = request.WithScript(script)
	if err := c.requests.Update(ctx, request); err != nil {
		return request, nil, fmt.Errorf("persist script: %w", err)
	}

	audio, err := c.synthesizer.Synthesize(ctx, script)
	if err != nil {
		return request, nil, fmt.Errorf("synthesize narration: %w", err)
	}

	audioPath := filepath.Join(c.workDir, "audio", request.ID+".mp3")
	if err := os.MkdirAll(filepath.Dir(audioPath), 0o755); err != nil {
		return request, nil, fmt.Errorf("create audio directory: %w", err)
	}
	if err := os.WriteFile(audioPath, audio, 0o644); err != nil {
		return request, nil, fmt.Errorf("store narration audio: %w", err)
	}

	transcript, err := c.transcriber.Transcribe(ctx, audio)
	if err != nil {
		return request, nil, fmt.Errorf("transcribe narration: %w", err)
	}

	duration := speech.ComputeDuration(transcript.Words)
	request = request.WithAudio(audioPath, duration)
	if err := c.requests.Update(ctx, request); err != nil {
		return request, nil, fmt.Errorf("persist audio reference: %w", err)
	}

	logger.Info("phase 1 complete", "duration", duration, "words", len(transcript.Words))
	return request, transcript.Words, nil
}

// runPhaseTwo composes the first animation draft and publishes it as the
// preview before any review happens, so clients see progress as early as
// possible.
func (c *Creator) runPhaseTwo(ctx context.Context, request models.VideoRequest, words []speech.WordTiming) (models.VideoRequest, error) {
	ctx, span := logging.StartSpan(ctx, "pipeline.phase2")
	defer span.End()
	logger := logging.FromContext(ctx)

	var assets []generation.Asset
	if c.assets != nil {
		assets = c.assets.Search(ctx, request.Prompt, c.assetCount)
	}

	html, err := c.author.Compose(ctx, generation.ComposeInput{
		Prompt:   request.Prompt,
		Duration: request.Duration,
		Cues:     speech.VTT(words),
		Aspect:   request.AspectRatio,
		Assets:   assets,
	})
	if err != nil {
		return request, fmt.Errorf("compose animation: %w", err)
	}

	request = request.WithHTMLContent(html).WithStatus(models.StatusPreviewReady)
	if err := c.requests.Update(ctx, request); err != nil {
		return request, fmt.Errorf("persist draft: %w", err)
	}

	logger.Info("phase 2 complete", "assets", len(assets))
	return request, nil
}

// markFailed records the failure status, keeping every field produced so far.
func (c *Creator) markFailed(ctx context.Context, request models.VideoRequest) {
	logger := logging.FromContext(ctx)
	if err := c.requests.Update(ctx, request.WithStatus(models.StatusFailed)); err != nil {
		logger.Error("failed to mark request failed", "videoRequestID", request.ID, "error", err)
	}
}
