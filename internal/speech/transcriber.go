package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/ezanim/backend/internal/config"
)

// WordTiming locates one spoken word inside the audio track, in seconds.
type WordTiming struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Transcript is the word-level transcription of a synthesized audio track.
type Transcript struct {
	Text  string
	Words []WordTiming
}

// Transcriber converts audio bytes back into text with word-level timings.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (Transcript, error)
}

// WhisperTranscriber calls an OpenAI-compatible audio transcription endpoint.
type WhisperTranscriber struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewWhisperTranscriber constructs a transcriber from configuration.
func NewWhisperTranscriber(cfg config.SpeechConfig) *WhisperTranscriber {
	return &WhisperTranscriber{
		baseURL:    cfg.TranscriptionBaseURL,
		apiKey:     cfg.TranscriptionAPIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type whisperResponse struct {
	Text  string       `json:"text"`
	Words []WordTiming `json:"words"`
}

// Transcribe uploads the audio and returns the verbose word-level transcript.
func (t *WhisperTranscriber) Transcribe(ctx context.Context, audio []byte) (Transcript, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "narration.mp3")
	if err != nil {
		return Transcript{}, fmt.Errorf("build transcription form: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return Transcript{}, fmt.Errorf("write transcription payload: %w", err)
	}
	_ = writer.WriteField("model", "whisper-1")
	_ = writer.WriteField("response_format", "verbose_json")
	_ = writer.WriteField("timestamp_granularities[]", "word")
	if err := writer.Close(); err != nil {
		return Transcript{}, fmt.Errorf("finalize transcription form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return Transcript{}, fmt.Errorf("build transcription request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return Transcript{}, fmt.Errorf("transcription call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Transcript{}, fmt.Errorf("transcription returned %d: %s", resp.StatusCode, detail)
	}

	var parsed whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Transcript{}, fmt.Errorf("decode transcription response: %w", err)
	}

	return Transcript{Text: parsed.Text, Words: parsed.Words}, nil
}
