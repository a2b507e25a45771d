// Package speech wraps the speech synthesis and transcription collaborators
// and owns the transcript-derived timing rules.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ezanim/backend/internal/config"
)

// Synthesizer converts narration text into an audio byte stream.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// ElevenLabsSynthesizer calls the ElevenLabs text-to-speech REST API.
type ElevenLabsSynthesizer struct {
	baseURL    string
	apiKey     string
	voiceID    string
	httpClient *http.Client
}

// NewElevenLabsSynthesizer constructs a synthesizer from configuration.
func NewElevenLabsSynthesizer(cfg config.SpeechConfig) *ElevenLabsSynthesizer {
	return &ElevenLabsSynthesizer{
		baseURL:    cfg.SynthesisBaseURL,
		apiKey:     cfg.SynthesisAPIKey,
		voiceID:    cfg.VoiceID,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type synthesizeRequest struct {
	Text         string `json:"text"`
	ModelID      string `json:"model_id"`
	OutputFormat string `json:"output_format,omitempty"`
}

// Synthesize returns the spoken narration as MP3 bytes.
func (s *ElevenLabsSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	payload := synthesizeRequest{
		Text:    text,
		ModelID: "eleven_multilingual_v2",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal synthesis request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=mp3_44100_128", s.baseURL, s.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build synthesis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesis call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("synthesis returned %d: %s", resp.StatusCode, detail)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read synthesis response: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("synthesis returned empty audio")
	}

	return audio, nil
}
