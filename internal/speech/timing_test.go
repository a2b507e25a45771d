package speech

import (
	"strings"
	"testing"
)

func TestComputeDuration(t *testing.T) {
	words := []WordTiming{
		{Word: "light", Start: 0.0, End: 0.4},
		{Word: "becomes", Start: 0.5, End: 0.9},
		{Word: "food", Start: 1.0, End: 13.25},
	}
	if got := ComputeDuration(words); got != 15.25 {
		t.Errorf("ComputeDuration = %v, want 15.25", got)
	}
}

func TestComputeDurationEmptyTranscript(t *testing.T) {
	if got := ComputeDuration(nil); got != 20.0 {
		t.Errorf("ComputeDuration(nil) = %v, want 20.0", got)
	}
	if got := ComputeDuration([]WordTiming{}); got != 20.0 {
		t.Errorf("ComputeDuration(empty) = %v, want 20.0", got)
	}
}

func TestVTT(t *testing.T) {
	words := []WordTiming{
		{Word: "hello", Start: 0.0, End: 0.52},
		{Word: "world", Start: 0.6, End: 1.1},
	}

	vtt := VTT(words)

	if !strings.HasPrefix(vtt, "WEBVTT\n\n") {
		t.Fatalf("missing WEBVTT header: %q", vtt)
	}
	for _, want := range []string{
		"1\n00:00:00.000 --> 00:00:00.520\nhello",
		"2\n00:00:00.600 --> 00:00:01.100\nworld",
	} {
		if !strings.Contains(vtt, want) {
			t.Errorf("vtt missing cue %q in:\n%s", want, vtt)
		}
	}
}

func TestVTTFormatsLongTimestamps(t *testing.T) {
	vtt := VTT([]WordTiming{{Word: "end", Start: 3671.5, End: 3672.25}})
	if !strings.Contains(vtt, "01:01:11.500 --> 01:01:12.250") {
		t.Errorf("unexpected timestamp formatting:\n%s", vtt)
	}
}
