package generation

import (
	"context"
	"fmt"
	"strings"
)

const scriptPrompt = `Act as a professional narrator and educational scriptwriter.

Write the voiceover script for a short explainer video about: %q.

Requirements:
- 40 to 90 seconds when read aloud at a natural pace.
- Plain spoken prose only: no scene directions, no markdown, no headings.
- Open with a hook, explain the core idea simply, close with a memorable takeaway.

Return ONLY the narration text.`

// ScriptWriter turns a user prompt into narration text.
type ScriptWriter struct {
	generator TextGenerator
}

// NewScriptWriter constructs a script writer on top of the given generator.
func NewScriptWriter(generator TextGenerator) *ScriptWriter {
	return &ScriptWriter{generator: generator}
}

// Write produces the narration script for the prompt.
func (w *ScriptWriter) Write(ctx context.Context, prompt string) (string, error) {
	reply, err := w.generator.Generate(ctx, fmt.Sprintf(scriptPrompt, prompt))
	if err != nil {
		return "", fmt.Errorf("generate script: %w", err)
	}

	script := strings.TrimSpace(stripCodeFences(reply))
	if script == "" {
		return "", fmt.Errorf("generate script: model returned empty text")
	}
	return script, nil
}
