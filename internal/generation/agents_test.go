package generation

import (
	"context"
	"errors"
	"testing"

	"github.com/ezanim/backend/internal/config"
	"github.com/ezanim/backend/internal/models"
)

type generatorStub struct {
	reply   string
	err     error
	prompts []string
}

func (g *generatorStub) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func TestScriptWriterStripsFences(t *testing.T) {
	stub := &generatorStub{reply: "```\nPhotosynthesis turns light into food.\n```"}
	writer := NewScriptWriter(stub)

	script, err := writer.Write(context.Background(), "photosynthesis for kids")
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if script != "Photosynthesis turns light into food." {
		t.Errorf("script = %q", script)
	}
}

func TestScriptWriterPropagatesError(t *testing.T) {
	stub := &generatorStub{err: errors.New("model unavailable")}
	writer := NewScriptWriter(stub)

	if _, err := writer.Write(context.Background(), "anything"); err == nil {
		t.Fatal("expected error from failing generator")
	}
}

func TestAnimationAuthorCompose(t *testing.T) {
	stub := &generatorStub{reply: "```html\n<html><script>window.tl = tl;</script></html>\n```"}
	author := NewAnimationAuthor(stub)

	html, err := author.Compose(context.Background(), ComposeInput{
		Prompt:   "the water cycle",
		Duration: 21.5,
		Cues:     "WEBVTT\n\n1\n00:00:00.000 --> 00:00:01.000\nwater",
		Aspect:   models.AspectPortrait,
	})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if html != "<html><script>window.tl = tl;</script></html>" {
		t.Errorf("html = %q", html)
	}
	if len(stub.prompts) != 1 {
		t.Fatalf("generator called %d times, want 1", len(stub.prompts))
	}
}

func TestCriticParsesVerdict(t *testing.T) {
	stub := &generatorStub{reply: `Here is my review: {"hasIssues": true, "critique": "Title overlaps the diagram.", "score": 62}`}
	critic := NewCritic(stub, config.PolicyLenient)

	review, err := critic.Review(context.Background(), "<html></html>", "gravity")
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if !review.HasIssues || review.Critique != "Title overlaps the diagram." || review.Score != 62 {
		t.Errorf("review = %+v", review)
	}
}

func TestCriticMalformedOutputLenient(t *testing.T) {
	stub := &generatorStub{reply: "I simply cannot decide."}
	critic := NewCritic(stub, config.PolicyLenient)

	review, err := critic.Review(context.Background(), "<html></html>", "gravity")
	if err != nil {
		t.Fatalf("lenient critic returned error: %v", err)
	}
	if !review.HasIssues {
		t.Error("lenient fallback should report issues")
	}
}

func TestCriticMalformedOutputStrict(t *testing.T) {
	stub := &generatorStub{reply: "no json here"}
	critic := NewCritic(stub, config.PolicyStrict)

	if _, err := critic.Review(context.Background(), "<html></html>", "gravity"); err == nil {
		t.Fatal("strict critic should fail on malformed output")
	}
}

func TestJudgeDecisions(t *testing.T) {
	approve := &generatorStub{reply: `{"decision": "APPROVE", "reasoning": "looks fixed"}`}
	judge := NewJudge(approve, config.PolicyLenient)
	decision, err := judge.Evaluate(context.Background(), "overlap", "<html></html>")
	if err != nil || decision != DecisionApprove {
		t.Fatalf("decision = %v, err = %v; want APPROVE", decision, err)
	}

	again := &generatorStub{reply: `{"decision": "REVIEW_AGAIN", "reasoning": "still broken"}`}
	judge = NewJudge(again, config.PolicyLenient)
	decision, err = judge.Evaluate(context.Background(), "overlap", "<html></html>")
	if err != nil || decision != DecisionReviewAgain {
		t.Fatalf("decision = %v, err = %v; want REVIEW_AGAIN", decision, err)
	}
}

func TestJudgeMalformedOutput(t *testing.T) {
	garbled := &generatorStub{reply: "perhaps"}

	judge := NewJudge(garbled, config.PolicyLenient)
	decision, err := judge.Evaluate(context.Background(), "overlap", "<html></html>")
	if err != nil || decision != DecisionApprove {
		t.Fatalf("lenient judge = %v, err = %v; want APPROVE default", decision, err)
	}

	judge = NewJudge(garbled, config.PolicyStrict)
	if _, err := judge.Evaluate(context.Background(), "overlap", "<html></html>"); err == nil {
		t.Fatal("strict judge should fail on malformed output")
	}
}

func TestExtractJSON(t *testing.T) {
	raw, ok := extractJSON("prefix {\"a\": {\"b\": 1}} suffix")
	if !ok || raw != `{"a": {"b": 1}}` {
		t.Errorf("extractJSON = %q, %v", raw, ok)
	}
	if _, ok := extractJSON("no braces at all"); ok {
		t.Error("expected extraction failure")
	}
}
