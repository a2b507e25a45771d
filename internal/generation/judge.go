package generation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ezanim/backend/internal/config"
)

// Decision is the judge's binary verdict on a fix.
type Decision string

const (
	DecisionApprove     Decision = "APPROVE"
	DecisionReviewAgain Decision = "REVIEW_AGAIN"
)

const judgePrompt = `You are "The Judge".
The Critic previously found these issues in an animation:
%q

The developer attempted a fix; the updated HTML is below.

Decide whether the code is now acceptable or needs another review round.
- Broken-looking code or insufficient fixes: "REVIEW_AGAIN".
- Solid code with the issues addressed: "APPROVE".

Response format (JSON only):
{"decision": "APPROVE" | "REVIEW_AGAIN", "reasoning": "short explanation"}

Updated HTML:
%s`

type judgeVerdict struct {
	Decision  string `json:"decision"`
	Reasoning string `json:"reasoning"`
}

// Judge decides whether a refinement adequately addressed a critique.
type Judge struct {
	generator TextGenerator
	policy    string
}

// NewJudge constructs a judge. Under the lenient policy malformed output
// defaults to APPROVE so the loop cannot stall on a model that never produces
// parseable verdicts.
func NewJudge(generator TextGenerator, policy string) *Judge {
	return &Judge{generator: generator, policy: policy}
}

// Evaluate returns the verdict for the refined markup.
func (j *Judge) Evaluate(ctx context.Context, critique, html string) (Decision, error) {
	reply, err := j.generator.Generate(ctx, fmt.Sprintf(judgePrompt, critique, truncate(html, 50000)))
	if err != nil {
		return "", fmt.Errorf("judge evaluation: %w", err)
	}

	raw, ok := extractJSON(reply)
	if !ok {
		return j.fallback(fmt.Errorf("judge evaluation: no JSON object in reply"))
	}

	var verdict judgeVerdict
	if err := json.Unmarshal([]byte(raw), &verdict); err != nil {
		return j.fallback(fmt.Errorf("judge evaluation: decode verdict: %w", err))
	}

	if verdict.Decision == string(DecisionReviewAgain) {
		return DecisionReviewAgain, nil
	}
	return DecisionApprove, nil
}

func (j *Judge) fallback(err error) (Decision, error) {
	if j.policy == config.PolicyStrict {
		return "", err
	}
	return DecisionApprove, nil
}
