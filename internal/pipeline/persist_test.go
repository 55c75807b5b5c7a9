package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/plenaria/internal/model"
)

func TestSaveAndLoadSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions", "2025-05-14.json")

	session := &model.Session{
		ID:       "2025-05-14",
		Duration: 120,
		Segments: []model.Segment{
			{
				ID: 0, Start: 0, End: 60, Text: "Buenos días", SpeakerID: "speaker_0",
				Speaker: &model.SpeakerRef{ID: "AN-JUAN-PÉREZ", Name: "Juan Pérez", Confidence: 1.0},
			},
		},
	}

	if err := SaveSession(path, session); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	loaded, err := LoadSession(path)
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	if loaded.ID != "2025-05-14" || len(loaded.Segments) != 1 {
		t.Errorf("Round trip lost data: %+v", loaded)
	}
	if loaded.Segments[0].Speaker == nil || loaded.Segments[0].Speaker.Name != "Juan Pérez" {
		t.Errorf("Speaker annotation not preserved: %+v", loaded.Segments[0].Speaker)
	}
}

func TestLoadSession_MissingFile(t *testing.T) {
	if _, err := LoadSession(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Expected error for missing session file")
	}
}

func TestLoadSession_MalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSession(path); err == nil {
		t.Error("Expected error for malformed session file")
	}
}

func TestSessionIDFromPath(t *testing.T) {
	cases := map[string]string{
		"data/sessions/2025-05-14.json": "2025-05-14",
		"session.mp4":                   "session",
		"plain":                         "plain",
	}
	for path, want := range cases {
		if got := SessionIDFromPath(path); got != want {
			t.Errorf("SessionIDFromPath(%q) = %q, want %q", path, got, want)
		}
	}
}
