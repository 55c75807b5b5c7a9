package transcript

import (
	"strings"

	"github.com/ppiankov/plenaria/internal/model"
)

// Merge collapses word-level tokens into contiguous per-speaker
// segments. A new segment opens whenever the diarization label changes;
// words without a label form their own pseudo-label runs so the
// segments still partition the token sequence exactly. An empty token
// slice yields zero segments.
func Merge(words []model.WordToken) []model.Segment {
	if len(words) == 0 {
		return nil
	}

	var segments []model.Segment
	var text strings.Builder

	open := model.Segment{
		ID:        0,
		Start:     words[0].Start,
		End:       words[0].End,
		SpeakerID: words[0].Speaker,
	}
	text.WriteString(words[0].Text)

	for _, w := range words[1:] {
		if w.Speaker == open.SpeakerID {
			text.WriteString(" ")
			text.WriteString(w.Text)
			open.End = w.End
			continue
		}

		open.Text = text.String()
		segments = append(segments, open)
		text.Reset()

		open = model.Segment{
			ID:        open.ID + 1,
			Start:     w.Start,
			End:       w.End,
			SpeakerID: w.Speaker,
		}
		text.WriteString(w.Text)
	}

	open.Text = text.String()
	return append(segments, open)
}
