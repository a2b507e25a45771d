package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/ezanim/backend/internal/models"
)

const composePrompt = `Act as an expert frontend web developer and creative animator.

Create an educational animation about: %q.

Timing context (WebVTT cues from the voiceover transcript). Schedule your
animation events with anime.timeline() offsets so visuals land exactly on the
spoken words:
%s

Strict technical requirements:
- A single self-contained HTML file with all CSS and JS inline.
- Use Anime.js (v3.2.1 via CDN) for all animations and FontAwesome (v6.4.0 via CDN) for icons.
- The animation fills the whole viewport and is laid out for a %s aspect ratio.%s
- Total animation length: %.1f seconds.
- Cinematic subtitles at the bottom center, driven by the VTT cues above.
- No player chrome, no "click to start" overlays; the content is the whole frame.
%s
Code logic:
- Build one anime.timeline() for the whole piece and expose it globally as 'window.tl'.
- IMPORTANT: do NOT auto-play the timeline; it is driven externally.

Return ONLY the HTML, no markdown code fences.`

const portraitScaling = `
- CRITICAL for 9:16: scale text, icons and SVGs up 2x-3x so they stay legible on phones; fill the width of the screen.`

const refinePrompt = `You are the same frontend developer who generated the animation below.
A reviewer found these issues:
%q

Fix every issue while preserving the overall structure, the timing and the
'window.tl' timeline contract (exposed globally, no auto-play).

Current HTML:
%s

Return ONLY the corrected, complete HTML, no markdown code fences.`

// Asset is a similarity-search hit used to enrich animation prompts.
type Asset struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// ComposeInput carries everything the author needs for a first draft.
type ComposeInput struct {
	Prompt   string
	Duration float64
	Cues     string
	Aspect   models.AspectRatio
	Assets   []Asset
}

// AnimationAuthor generates and refines the renderable animation markup. The
// same agent serves as the fixer inside the QA loop.
type AnimationAuthor struct {
	generator TextGenerator
}

// NewAnimationAuthor constructs an animation author on top of the generator.
func NewAnimationAuthor(generator TextGenerator) *AnimationAuthor {
	return &AnimationAuthor{generator: generator}
}

// Compose produces the first animation draft.
func (a *AnimationAuthor) Compose(ctx context.Context, input ComposeInput) (string, error) {
	scaling := ""
	if input.Aspect == models.AspectPortrait {
		scaling = portraitScaling
	}

	prompt := fmt.Sprintf(composePrompt,
		input.Prompt, input.Cues, input.Aspect, scaling, input.Duration, assetContext(input.Assets))

	reply, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate animation: %w", err)
	}

	html := stripCodeFences(reply)
	if html == "" {
		return "", fmt.Errorf("generate animation: model returned empty markup")
	}
	return html, nil
}

// Refine rewrites the markup to address a critique.
func (a *AnimationAuthor) Refine(ctx context.Context, html, critique string) (string, error) {
	reply, err := a.generator.Generate(ctx, fmt.Sprintf(refinePrompt, critique, html))
	if err != nil {
		return "", fmt.Errorf("refine animation: %w", err)
	}

	refined := stripCodeFences(reply)
	if refined == "" {
		return "", fmt.Errorf("refine animation: model returned empty markup")
	}
	return refined, nil
}

func assetContext(assets []Asset) string {
	if len(assets) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\nIllustrations you may embed as inline SVG:\n")
	for _, asset := range assets {
		fmt.Fprintf(&b, "- %s:\n%s\n", asset.Name, asset.Content)
	}
	return b.String()
}
