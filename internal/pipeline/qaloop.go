package pipeline

import (
	"context"
	"fmt"

	"github.com/ezanim/backend/internal/generation"
	"github.com/ezanim/backend/internal/logging"
	"github.com/ezanim/backend/internal/models"
	"github.com/ezanim/backend/internal/repositories"
)

// QALoop drives the bounded critic/fixer/judge refinement cycle over a
// request's animation markup. Loop state lives only on the stack; each
// revision is persisted the moment it exists so previews always show the
// latest draft, even mid-loop.
type QALoop struct {
	requests repositories.VideoRequestStore
	critic   Critic
	author   AnimationAuthor
	judge    Judge
	maxLoops int
}

func NewQALoop(requests repositories.VideoRequestStore, critic Critic, author AnimationAuthor, judge Judge, maxLoops int) *QALoop {
	if maxLoops <= 0 {
		maxLoops = 2
	}
	return &QALoop{
		requests: requests,
		critic:   critic,
		author:   author,
		judge:    judge,
		maxLoops: maxLoops,
	}
}

// Run refines the request's markup until the critic is satisfied, the judge
// approves, or the iteration budget runs out. Budget exhaustion is not a
// failure: the last revision is kept as the final output.
func (l *QALoop) Run(ctx context.Context, request models.VideoRequest) (models.VideoRequest, error) {
	ctx, span := logging.StartSpan(ctx, "pipeline.qa_loop")
	defer span.End()
	logger := logging.FromContext(ctx)

	current := request
	for iteration := 1; iteration <= l.maxLoops; iteration++ {
		review, err := l.critic.Review(ctx, current.HTMLContent, current.Prompt)
		if err != nil {
			return current, fmt.Errorf("qa iteration %d: %w", iteration, err)
		}
		if !review.HasIssues {
			logger.Info("critic approved draft", "iteration", iteration)
			return current, nil
		}
		logger.Info("critic found issues", "iteration", iteration, "score", review.Score)

		revised, err := l.author.Refine(ctx, current.HTMLContent, review.Critique)
		if err != nil {
			return current, fmt.Errorf("qa iteration %d: refine: %w", iteration, err)
		}

		current = current.WithHTMLContent(revised)
		if err := l.requests.Update(ctx, current); err != nil {
			return current, fmt.Errorf("qa iteration %d: persist revision: %w", iteration, err)
		}

		decision, err := l.judge.Evaluate(ctx, review.Critique, revised)
		if err != nil {
			return current, fmt.Errorf("qa iteration %d: %w", iteration, err)
		}
		if decision == generation.DecisionApprove {
			logger.Info("judge approved revision", "iteration", iteration)
			return current, nil
		}
		logger.Info("judge requested another review", "iteration", iteration)
	}

	logger.Info("refinement budget exhausted, keeping last revision", "iterations", l.maxLoops)
	return current, nil
}

// RefineOnce runs a single fixer pass outside the bounded loop, for
// caller-driven refinement of an already previewable draft. With an empty
// critique the critic supplies one; if it finds nothing the request is
// returned unchanged.
func (l *QALoop) RefineOnce(ctx context.Context, request models.VideoRequest, critique string) (models.VideoRequest, error) {
	if critique == "" {
		review, err := l.critic.Review(ctx, request.HTMLContent, request.Prompt)
		if err != nil {
			return request, err
		}
		if !review.HasIssues {
			return request, nil
		}
		critique = review.Critique
	}

	revised, err := l.author.Refine(ctx, request.HTMLContent, critique)
	if err != nil {
		return request, err
	}

	request = request.WithHTMLContent(revised)
	if err := l.requests.Update(ctx, request); err != nil {
		return request, fmt.Errorf("persist refinement: %w", err)
	}
	return request, nil
}
