package model

import "fmt"

// Speaker annotation constants. Confidence is binary: a segment is
// either bound to a roster name by the vision path or explicitly
// unidentified.
const (
	ConfidenceResolved     = 1.0
	ConfidenceUnidentified = 0.0

	UnknownSpeakerID = "UNKNOWN"
	UnidentifiedName = "No identificado"
)

// WordToken is one word-level unit from the transcription provider.
// Speaker carries the anonymous diarization label (e.g. "speaker_0");
// empty means the provider could not attribute the word to any voice.
type WordToken struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Speaker string  `json:"speaker_id,omitempty"`
}

// Segment is a contiguous run of words sharing one diarization label.
// Speaker is attached by the annotator once the label is resolved.
type Segment struct {
	ID        int         `json:"id"`
	Start     float64     `json:"start"`
	End       float64     `json:"end"`
	Text      string      `json:"text"`
	SpeakerID string      `json:"speaker_id,omitempty"`
	Speaker   *SpeakerRef `json:"speaker,omitempty"`
}

// SpeakerRef binds a segment to a real person (or to the explicit
// unidentified fallback).
type SpeakerRef struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// Appearance marks the earliest point a diarization label is heard,
// shifted by the overlay delay. One entry per distinct label.
type Appearance struct {
	Timestamp float64 `json:"timestamp"`
	SpeakerID string  `json:"speaker_id"`
}

// Session is the persisted per-session document: transcript, merged
// segments, and metadata. Topics, keywords and summary are filled by
// the downstream classification stage, not by this tool.
type Session struct {
	ID               string   `json:"id,omitempty"`
	VideoID          string   `json:"video_id,omitempty"`
	Title            string   `json:"title,omitempty"`
	Date             string   `json:"date,omitempty"`
	SourceURL        string   `json:"source_url,omitempty"`
	Language         string   `json:"language,omitempty"`
	Duration         float64  `json:"duration"`
	SpeakersDetected int      `json:"speakers_detected,omitempty"`
	Text             string   `json:"text,omitempty"`

	Words    []WordToken `json:"words,omitempty"`
	Segments []Segment   `json:"segments"`

	Topics   []string `json:"topics,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
	Summary  string   `json:"summary,omitempty"`
}

// ValidateTokens checks the provider output at the ingestion boundary.
// Tokens must be ordered by start time; a token whose end precedes its
// start is rejected rather than silently clamped.
func ValidateTokens(words []WordToken) error {
	prev := 0.0
	for i, w := range words {
		if w.End < w.Start {
			return fmt.Errorf("token %d: end %.3f before start %.3f", i, w.End, w.Start)
		}
		if w.Start < prev {
			return fmt.Errorf("token %d: start %.3f out of order (previous %.3f)", i, w.Start, prev)
		}
		prev = w.Start
	}
	return nil
}

// DistinctSpeakers returns the diarization labels present in the
// segments, excluding the empty pseudo-label, in first-seen order.
func (s *Session) DistinctSpeakers() []string {
	seen := make(map[string]bool)
	var labels []string
	for _, seg := range s.Segments {
		if seg.SpeakerID == "" || seen[seg.SpeakerID] {
			continue
		}
		seen[seg.SpeakerID] = true
		labels = append(labels, seg.SpeakerID)
	}
	return labels
}
