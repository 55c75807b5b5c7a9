package resolve

import "github.com/ppiankov/plenaria/internal/model"

// Annotate applies the label-to-name mapping onto every segment of the
// session. Total: every segment leaves with a speaker annotation, either
// the resolved name at full confidence or the explicit unidentified
// fallback at zero. Returns the number of segments that resolved.
func Annotate(session *model.Session, mapping map[string]string) int {
	resolved := 0

	for i := range session.Segments {
		seg := &session.Segments[i]

		if name, ok := mapping[seg.SpeakerID]; ok && seg.SpeakerID != "" {
			seg.Speaker = &model.SpeakerRef{
				ID:         seg.SpeakerID,
				Name:       name,
				Confidence: model.ConfidenceResolved,
			}
			resolved++
			continue
		}

		id := seg.SpeakerID
		if id == "" {
			id = model.UnknownSpeakerID
		}
		seg.Speaker = &model.SpeakerRef{
			ID:         id,
			Name:       model.UnidentifiedName,
			Confidence: model.ConfidenceUnidentified,
		}
	}

	return resolved
}
