// Package transcribe talks to the speech-to-text collaborator that
// produces word-level tokens with diarization labels.
package transcribe

import (
	"context"

	"github.com/ppiankov/plenaria/internal/model"
	"github.com/ppiankov/plenaria/internal/transcript"
)

// Result is the validated provider output for one session.
type Result struct {
	// Text is the full transcript.
	Text string

	// Language is the transcript language code.
	Language string

	// Duration is derived from the last word's end time.
	Duration float64

	// SpeakersDetected counts distinct diarization labels.
	SpeakersDetected int

	// Words are the ordered word-level tokens.
	Words []model.WordToken
}

// Session builds the persisted session document from the provider
// output: merged segments plus the transcript metadata (language,
// duration, detected speaker count) the downstream stages report on.
func (r *Result) Session(id string) *model.Session {
	return &model.Session{
		ID:               id,
		Language:         r.Language,
		Duration:         r.Duration,
		SpeakersDetected: r.SpeakersDetected,
		Text:             r.Text,
		Words:            r.Words,
		Segments:         transcript.Merge(r.Words),
	}
}

// Provider is the transcription collaborator interface. The provider
// is a black box: audio in, word tokens with anonymous speaker labels
// out.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Transcribe uploads one audio file and returns the diarized
	// transcript.
	Transcribe(ctx context.Context, audioPath string) (*Result, error)
}
