package speech

import (
	"fmt"
	"strings"
	"time"
)

const (
	// durationPadding is appended after the last spoken word so the
	// animation does not cut off on the final syllable.
	durationPadding = 2.0
	// defaultDuration is used when transcription yields no words at all.
	defaultDuration = 20.0
)

// ComputeDuration derives the authoritative video duration from word timings:
// the end of the last word plus a fixed tail, or a default when the
// transcript is empty.
func ComputeDuration(words []WordTiming) float64 {
	if len(words) == 0 {
		return defaultDuration
	}
	return words[len(words)-1].End + durationPadding
}

// VTT renders the word timings as WebVTT cues, one cue per word. The cues are
// handed to the animation author so visuals can be scheduled against the
// voiceover.
func VTT(words []WordTiming) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")

	for i, word := range words {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", i+1, vttTime(word.Start), vttTime(word.End), word.Word)
	}

	return b.String()
}

func vttTime(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second))
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	ms := int(d.Milliseconds()) % 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}
