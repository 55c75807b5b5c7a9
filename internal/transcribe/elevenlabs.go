package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/ppiankov/plenaria/internal/model"
)

// ElevenLabsConfig configures the ElevenLabs speech-to-text client.
type ElevenLabsConfig struct {
	BaseURL  string
	APIKey   string
	Model    string
	Language string

	// Timeout covers the whole upload+transcription round trip; large
	// session recordings can take a long time server-side.
	Timeout time.Duration

	Proxy func(*http.Request) (*url.URL, error)
}

// ElevenLabsClient implements Provider against the ElevenLabs
// speech-to-text API with diarization enabled.
type ElevenLabsClient struct {
	httpClient *http.Client
	config     ElevenLabsConfig
}

// NewElevenLabsClient creates a client. The API key is required.
func NewElevenLabsClient(config ElevenLabsConfig) (*ElevenLabsClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("ElevenLabs API key is required")
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.elevenlabs.io"
	}
	if config.Model == "" {
		config.Model = "scribe_v1"
	}
	if config.Timeout == 0 {
		config.Timeout = time.Hour
	}

	return &ElevenLabsClient{
		httpClient: &http.Client{
			Timeout: config.Timeout,
			Transport: &http.Transport{
				Proxy: config.Proxy,
			},
		},
		config: config,
	}, nil
}

// Name returns the provider name.
func (c *ElevenLabsClient) Name() string {
	return "elevenlabs"
}

// sttWord mirrors the API's word schema. Type distinguishes real words
// from spacing/punctuation filler tokens.
type sttWord struct {
	Text      string  `json:"text"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	Type      string  `json:"type,omitempty"`
	SpeakerID string  `json:"speaker_id,omitempty"`
}

type sttResponse struct {
	Text         string    `json:"text"`
	LanguageCode string    `json:"language_code,omitempty"`
	Words        []sttWord `json:"words"`
}

// Transcribe uploads the audio file and returns validated word tokens.
func (c *ElevenLabsClient) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	audio, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}
	defer audio.Close()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	fw, err := w.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(fw, audio); err != nil {
		return nil, fmt.Errorf("copy audio: %w", err)
	}

	fields := map[string]string{
		"model_id": c.config.Model,
		"diarize":  "true",
	}
	if c.config.Language != "" {
		fields["language_code"] = c.config.Language
	}
	for key, value := range fields {
		if err := w.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("write field %s: %w", key, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/v1/speech-to-text", &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("xi-api-key", c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech-to-text request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("speech-to-text status %d: %s", resp.StatusCode, string(detail))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var parsed sttResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return buildResult(&parsed, c.config.Language)
}

// buildResult converts the raw response to validated word tokens.
// Spacing filler tokens are dropped; the schema is checked at this
// boundary so downstream stages never see malformed tuples.
func buildResult(parsed *sttResponse, fallbackLanguage string) (*Result, error) {
	words := make([]model.WordToken, 0, len(parsed.Words))
	speakers := make(map[string]bool)

	for _, w := range parsed.Words {
		if w.Type == "spacing" {
			continue
		}
		words = append(words, model.WordToken{
			Start:   w.Start,
			End:     w.End,
			Text:    w.Text,
			Speaker: w.SpeakerID,
		})
		if w.SpeakerID != "" {
			speakers[w.SpeakerID] = true
		}
	}

	if err := model.ValidateTokens(words); err != nil {
		return nil, fmt.Errorf("provider output invalid: %w", err)
	}

	language := parsed.LanguageCode
	if language == "" {
		language = fallbackLanguage
	}

	result := &Result{
		Text:             parsed.Text,
		Language:         language,
		SpeakersDetected: len(speakers),
		Words:            words,
	}
	if len(words) > 0 {
		result.Duration = words[len(words)-1].End
	}
	return result, nil
}
