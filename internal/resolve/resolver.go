// Package resolve binds anonymous diarization labels to real names by
// sampling video frames and reading on-screen overlays.
package resolve

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/ppiankov/plenaria/internal/cache"
	"github.com/ppiankov/plenaria/internal/media"
	"github.com/ppiankov/plenaria/internal/model"
	"github.com/ppiankov/plenaria/internal/vision"
)

// DefaultOffsets is the retry ladder, in seconds from each label's
// anchor timestamp. The overlay is often missing right at the anchor
// and reappears later in the same speech turn.
var DefaultOffsets = []float64{0, 20, 50, 110, 170}

// Resolver runs the offset-ladder search for every first appearance.
// For each label the first offset with a readable overlay wins and the
// rest of the ladder is abandoned, so vision calls are bounded by
// distinct_labels x ladder_length.
type Resolver struct {
	sampler media.Sampler
	vision  vision.Provider
	cache   cache.Cache
	limiter *rate.Limiter
	offsets []float64
	log     *logrus.Logger
}

// Options configures a Resolver. Cache and Limiter may be nil.
type Options struct {
	Offsets []float64
	Cache   cache.Cache
	Limiter *rate.Limiter
	Logger  *logrus.Logger
}

// NewResolver creates a resolver over the given collaborators.
func NewResolver(sampler media.Sampler, provider vision.Provider, opts Options) *Resolver {
	offsets := opts.Offsets
	if len(offsets) == 0 {
		offsets = DefaultOffsets
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Resolver{
		sampler: sampler,
		vision:  provider,
		cache:   opts.Cache,
		limiter: opts.Limiter,
		offsets: offsets,
		log:     log,
	}
}

// Result is the outcome of one resolution pass.
type Result struct {
	// Mapping binds resolved labels to names. Partial: labels that
	// exhausted the ladder are absent here and listed in Unresolved.
	Mapping map[string]string

	// Unresolved lists labels whose ladder yielded no positive
	// verdict. Not an error: they degrade to the annotator fallback.
	Unresolved []string

	// VisionCalls and FrameExtractions count actual collaborator
	// invocations (cache hits excluded).
	VisionCalls      int
	FrameExtractions int
}

// Resolve maps each appearance to a name via the offset ladder.
// Per-offset failures (decode errors, API errors, unreadable answers)
// are absorbed; the only fatal condition is context cancellation.
func (r *Resolver) Resolve(ctx context.Context, videoID, videoPath string, appearances []model.Appearance, maxDuration float64) (*Result, error) {
	result := &Result{Mapping: make(map[string]string)}

	for _, app := range appearances {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// One label = one person for the whole session; a label that
		// is already mapped is never probed again.
		if _, done := result.Mapping[app.SpeakerID]; done {
			continue
		}

		name := r.resolveLabel(ctx, videoID, videoPath, app, maxDuration, result)
		if name == "" {
			result.Unresolved = append(result.Unresolved, app.SpeakerID)
			r.log.WithFields(logrus.Fields{
				"speaker":   app.SpeakerID,
				"timestamp": app.Timestamp,
				"attempts":  len(r.offsets),
			}).Warn("speaker not detected on screen")
			continue
		}

		result.Mapping[app.SpeakerID] = name
	}

	sort.Strings(result.Unresolved)
	return result, nil
}

// resolveLabel walks the ladder for one label and returns the first
// identified name, or "" once the ladder is exhausted.
func (r *Resolver) resolveLabel(ctx context.Context, videoID, videoPath string, app model.Appearance, maxDuration float64, result *Result) string {
	for _, offset := range r.offsets {
		if ctx.Err() != nil {
			return ""
		}

		ts := app.Timestamp + offset
		if maxDuration > 0 && ts > maxDuration {
			continue
		}

		verdict, probed := r.verdictAt(ctx, videoID, videoPath, app.SpeakerID, ts, result)
		if !probed {
			continue
		}

		if verdict.Positive() {
			r.log.WithFields(logrus.Fields{
				"speaker":   app.SpeakerID,
				"timestamp": ts,
				"offset":    offset,
				"name":      verdict.Name,
			}).Info("speaker identified")
			return verdict.Name
		}
	}
	return ""
}

// verdictAt returns the overlay verdict for one probe point, consulting
// the verdict cache before touching either collaborator. probed=false
// means the probe could not be evaluated at all (frame extraction or
// API failure) and the ladder should simply move on.
func (r *Resolver) verdictAt(ctx context.Context, videoID, videoPath, speakerID string, ts float64, result *Result) (vision.Verdict, bool) {
	verdictKey := cache.VerdictKey(videoID, speakerID, ts)
	if r.cache != nil {
		if raw, found := r.cache.Get(verdictKey); found {
			var v vision.Verdict
			if err := json.Unmarshal(raw, &v); err == nil {
				return v, true
			}
		}
	}

	frame, ok := r.frameAt(ctx, videoID, videoPath, speakerID, ts, result)
	if !ok {
		return vision.Verdict{}, false
	}

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return vision.Verdict{}, false
		}
	}

	result.VisionCalls++
	verdict, err := r.vision.ReadOverlay(ctx, frame)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"speaker":   speakerID,
			"timestamp": ts,
		}).WithError(err).Warn("vision call failed")
		return vision.Verdict{}, false
	}

	// Negative verdicts are cached too; otherwise every re-run would
	// re-probe the labels that never resolve.
	if r.cache != nil {
		if raw, err := json.Marshal(verdict); err == nil {
			_ = r.cache.Set(verdictKey, raw, 0)
		}
	}

	return verdict, true
}

// frameAt fetches the frame for one probe point, through the cache.
func (r *Resolver) frameAt(ctx context.Context, videoID, videoPath, speakerID string, ts float64, result *Result) ([]byte, bool) {
	frameKey := cache.FrameKey(videoID, speakerID, ts)
	if r.cache != nil {
		if frame, found := r.cache.Get(frameKey); found {
			return frame, true
		}
	}

	result.FrameExtractions++
	frame, err := r.sampler.Frame(ctx, videoPath, ts)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"speaker":   speakerID,
			"timestamp": ts,
		}).WithError(err).Warn("frame extraction failed")
		return nil, false
	}

	if r.cache != nil {
		_ = r.cache.Set(frameKey, frame, 0)
	}
	return frame, true
}
