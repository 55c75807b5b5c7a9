package transcript

import (
	"sort"

	"github.com/ppiankov/plenaria/internal/model"
)

// FirstAppearances computes the earliest occurrence of each distinct
// diarization label, shifted forward by delay seconds so the broadcast
// overlay has time to appear after the camera cut. Diarization binds
// one label to one voice for the whole session, so exactly one entry
// per label is enough for identification.
//
// The empty pseudo-label is skipped: it is not a voice identity and a
// frame probe for it could never be bound back to a speaker.
func FirstAppearances(segments []model.Segment, delay float64) []model.Appearance {
	firstSeen := make(map[string]float64)
	for _, seg := range segments {
		if seg.SpeakerID == "" {
			continue
		}
		if _, ok := firstSeen[seg.SpeakerID]; !ok {
			firstSeen[seg.SpeakerID] = seg.Start + delay
		}
	}

	appearances := make([]model.Appearance, 0, len(firstSeen))
	for label, ts := range firstSeen {
		appearances = append(appearances, model.Appearance{Timestamp: ts, SpeakerID: label})
	}

	sort.Slice(appearances, func(i, j int) bool {
		if appearances[i].Timestamp != appearances[j].Timestamp {
			return appearances[i].Timestamp < appearances[j].Timestamp
		}
		return appearances[i].SpeakerID < appearances[j].SpeakerID
	})

	return appearances
}
