package models

import (
	"testing"
	"time"
)

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusPreviewReady, true},
		{StatusPending, StatusFailed, true},
		{StatusPreviewReady, StatusQACompleted, true},
		{StatusPreviewReady, StatusRendering, true},
		{StatusQACompleted, StatusRendering, true},
		{StatusRendering, StatusCompleted, true},
		{StatusRendering, StatusFailed, true},
		{StatusPreviewReady, StatusPending, false},
		{StatusQACompleted, StatusPreviewReady, false},
		{StatusCompleted, StatusRendering, false},
		{StatusCompleted, StatusFailed, false},
		{StatusFailed, StatusPending, false},
		{StatusFailed, StatusFailed, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestRenderEligible(t *testing.T) {
	eligible := map[Status]bool{
		StatusPending:      false,
		StatusPreviewReady: true,
		StatusQACompleted:  true,
		StatusRendering:    false,
		StatusCompleted:    false,
		StatusFailed:       false,
	}
	for status, want := range eligible {
		if got := status.RenderEligible(); got != want {
			t.Errorf("RenderEligible(%s) = %v, want %v", status, got, want)
		}
	}
}

func TestParseAspectRatio(t *testing.T) {
	if got, err := ParseAspectRatio(""); err != nil || got != AspectLandscape {
		t.Fatalf("ParseAspectRatio(\"\") = %v, %v; want 16:9 default", got, err)
	}
	if _, err := ParseAspectRatio("4:3"); err == nil {
		t.Fatal("expected error for unsupported ratio")
	}

	w, h := AspectPortrait.Dimensions()
	if w != 1080 || h != 1920 {
		t.Errorf("portrait dimensions = %dx%d, want 1080x1920", w, h)
	}
	w, h = AspectLandscape.Dimensions()
	if w != 1920 || h != 1080 {
		t.Errorf("landscape dimensions = %dx%d, want 1920x1080", w, h)
	}
}

func TestVideoRequestCopyOnWrite(t *testing.T) {
	original := NewVideoRequest("explain photosynthesis to kids", AspectLandscape)
	if original.Status != StatusPending {
		t.Fatalf("new request status = %s, want PENDING", original.Status)
	}

	time.Sleep(time.Millisecond)
	updated := original.WithHTMLContent("<html></html>").WithStatus(StatusPreviewReady)

	if original.HTMLContent != "" || original.Status != StatusPending {
		t.Error("original request mutated by With* methods")
	}
	if updated.HTMLContent != "<html></html>" || updated.Status != StatusPreviewReady {
		t.Error("updated request missing changes")
	}
	if !updated.UpdatedAt.After(original.UpdatedAt) {
		t.Error("UpdatedAt not advanced on update")
	}
	if updated.ID != original.ID || updated.Prompt != original.Prompt {
		t.Error("identity or prompt changed on update")
	}
}
