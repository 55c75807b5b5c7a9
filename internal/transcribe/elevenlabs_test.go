package transcribe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.m4a")
	if err := os.WriteFile(path, []byte("fake audio bytes"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestElevenLabs_Transcribe(t *testing.T) {
	var gotPath, gotKey, gotModel, gotDiarize string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("xi-api-key")

		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		gotModel = r.FormValue("model_id")
		gotDiarize = r.FormValue("diarize")
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("missing file part: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"text": "Hola Bienvenidos Gracias",
			"language_code": "es",
			"words": [
				{"text": "Hola", "start": 0, "end": 2, "type": "word", "speaker_id": "speaker_0"},
				{"text": " ", "start": 2, "end": 2, "type": "spacing"},
				{"text": "Bienvenidos", "start": 2, "end": 5, "type": "word", "speaker_id": "speaker_0"},
				{"text": "Gracias", "start": 5, "end": 9, "type": "word", "speaker_id": "speaker_1"}
			]
		}`))
	}))
	defer server.Close()

	client, err := NewElevenLabsClient(ElevenLabsConfig{
		BaseURL:  server.URL,
		APIKey:   "xi-test",
		Language: "es",
		Timeout:  5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewElevenLabsClient failed: %v", err)
	}

	result, err := client.Transcribe(context.Background(), writeTempAudio(t))
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}

	if gotPath != "/v1/speech-to-text" {
		t.Errorf("Unexpected path %s", gotPath)
	}
	if gotKey != "xi-test" {
		t.Errorf("Expected API key header, got %q", gotKey)
	}
	if gotModel != "scribe_v1" || gotDiarize != "true" {
		t.Errorf("Expected scribe_v1 with diarize=true, got model=%q diarize=%q", gotModel, gotDiarize)
	}

	if len(result.Words) != 3 {
		t.Fatalf("Expected 3 word tokens (spacing dropped), got %d", len(result.Words))
	}
	if result.Duration != 9 {
		t.Errorf("Expected duration 9 from last word, got %.1f", result.Duration)
	}
	if result.SpeakersDetected != 2 {
		t.Errorf("Expected 2 speakers, got %d", result.SpeakersDetected)
	}
	if result.Language != "es" {
		t.Errorf("Expected language es, got %s", result.Language)
	}
}

func TestElevenLabs_RejectsMalformedTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// end before start: provider output fails boundary validation.
		w.Write([]byte(`{"text": "x", "words": [{"text": "x", "start": 5, "end": 2, "type": "word"}]}`))
	}))
	defer server.Close()

	client, err := NewElevenLabsClient(ElevenLabsConfig{BaseURL: server.URL, APIKey: "k", Timeout: 5 * time.Second})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := client.Transcribe(context.Background(), writeTempAudio(t)); err == nil {
		t.Error("Expected validation error for malformed tokens")
	}
}

func TestElevenLabs_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "over quota", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := NewElevenLabsClient(ElevenLabsConfig{BaseURL: server.URL, APIKey: "k", Timeout: 5 * time.Second})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := client.Transcribe(context.Background(), writeTempAudio(t)); err == nil {
		t.Error("Expected error for non-2xx status")
	}
}

func TestElevenLabs_RequiresKey(t *testing.T) {
	if _, err := NewElevenLabsClient(ElevenLabsConfig{}); err == nil {
		t.Error("Expected error for missing API key")
	}
}
