package generation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ezanim/backend/internal/config"
)

const criticPrompt = `You are "The Critic", an expert UI/UX designer and animation QA specialist.
Strictly review the HTML/CSS/JS (Anime.js) code of a video animation about: %q.

Check for:
1. Visual layout: centering, spacing, consistent colors.
2. Unintentional overlap of text or key elements.
3. Elements animating or starting off-screen without entering.
4. Animation quality: smooth easing, logical timing, anime.stagger for groups.
5. Code integrity: valid HTML structure, 'window.tl' exposed, no auto-play.

Response format (JSON only):
{"hasIssues": boolean, "critique": "concise list of specific fixes, or 'Approved'", "score": 0-100}

HTML code to review:
%s`

// Review is the critic's verdict on a draft.
type Review struct {
	HasIssues bool   `json:"hasIssues"`
	Critique  string `json:"critique"`
	Score     int    `json:"score"`
}

// Critic reviews animation markup against the original prompt.
type Critic struct {
	generator TextGenerator
	policy    string
}

// NewCritic constructs a critic. The policy decides how malformed model
// output is handled: lenient treats it as issues found, strict fails.
func NewCritic(generator TextGenerator, policy string) *Critic {
	return &Critic{generator: generator, policy: policy}
}

// Review evaluates the markup and reports whether it needs fixing.
func (c *Critic) Review(ctx context.Context, html, prompt string) (Review, error) {
	reply, err := c.generator.Generate(ctx, fmt.Sprintf(criticPrompt, prompt, truncate(html, 50000)))
	if err != nil {
		return Review{}, fmt.Errorf("critic review: %w", err)
	}

	raw, ok := extractJSON(reply)
	if !ok {
		return c.fallback(fmt.Errorf("critic review: no JSON object in reply"))
	}

	var review Review
	if err := json.Unmarshal([]byte(raw), &review); err != nil {
		return c.fallback(fmt.Errorf("critic review: decode verdict: %w", err))
	}

	return review, nil
}

func (c *Critic) fallback(err error) (Review, error) {
	if c.policy == config.PolicyStrict {
		return Review{}, err
	}
	// Lenient: flag issues with a generic critique. The bounded loop keeps
	// this from looping forever.
	return Review{HasIssues: true, Critique: "Review response was malformed; re-check code structure and the window.tl contract.", Score: 50}, nil
}
