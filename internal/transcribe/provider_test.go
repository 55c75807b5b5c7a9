package transcribe

import (
	"testing"

	"github.com/ppiankov/plenaria/internal/model"
)

func TestResultSession_CarriesTranscriptMetadata(t *testing.T) {
	result := &Result{
		Text:             "Buenos días señores asambleístas",
		Language:         "es",
		Duration:         2.4,
		SpeakersDetected: 2,
		Words: []model.WordToken{
			{Start: 0, End: 0.5, Text: "Buenos", Speaker: "speaker_0"},
			{Start: 0.5, End: 1.0, Text: "días", Speaker: "speaker_0"},
			{Start: 1.2, End: 2.4, Text: "señores", Speaker: "speaker_1"},
		},
	}

	session := result.Session("2025-05-14")

	if session.ID != "2025-05-14" {
		t.Errorf("Unexpected session id %q", session.ID)
	}
	if session.Language != "es" {
		t.Errorf("Language not carried into session: %q", session.Language)
	}
	if session.SpeakersDetected != 2 {
		t.Errorf("SpeakersDetected not carried into session: %d", session.SpeakersDetected)
	}
	if session.Duration != 2.4 {
		t.Errorf("Duration not carried into session: %f", session.Duration)
	}
	if len(session.Segments) != 2 {
		t.Errorf("Expected words merged into 2 segments, got %d", len(session.Segments))
	}
	if len(session.Words) != 3 || session.Text == "" {
		t.Errorf("Words/text not preserved: %+v", session)
	}
}
