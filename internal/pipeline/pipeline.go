// Package pipeline orchestrates speaker-identity resolution for whole
// sessions: load, merge, locate, resolve, annotate, persist.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/ppiankov/plenaria/internal/cache"
	"github.com/ppiankov/plenaria/internal/media"
	"github.com/ppiankov/plenaria/internal/model"
	"github.com/ppiankov/plenaria/internal/names"
	"github.com/ppiankov/plenaria/internal/resolve"
	"github.com/ppiankov/plenaria/internal/roster"
	"github.com/ppiankov/plenaria/internal/transcript"
	"github.com/ppiankov/plenaria/internal/vision"
)

// ErrNoWork signals a stage that completed with nothing to do, so
// callers can distinguish an empty input set from an actual failure.
var ErrNoWork = errors.New("no work to do")

// Pipeline wires the collaborators for session resolution.
type Pipeline struct {
	cfg     *model.Config
	sampler media.Sampler
	vision  vision.Provider
	cache   cache.Cache
	repo    roster.Repository
	log     *logrus.Logger

	// rosterMu serializes roster read-modify-write cycles; batch mode
	// resolves sessions concurrently against one shared roster file.
	rosterMu sync.Mutex
}

// NewPipeline builds a pipeline from configuration. The vision API key
// is a required credential: without it no identification can happen.
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	if cfg.Vision.APIKey == "" {
		return nil, fmt.Errorf("vision API key missing (set PLENARIA_VISION_API_KEY or vision.api_key)")
	}

	provider, err := vision.NewOpenAIProvider(vision.Config{
		APIKey:    cfg.Vision.APIKey,
		BaseURL:   cfg.Vision.BaseURL,
		Model:     cfg.Vision.Model,
		MaxTokens: cfg.Vision.MaxTokens,
		Timeout:   cfg.Vision.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("init vision provider: %w", err)
	}

	var frameCache cache.Cache
	if cfg.Cache.Enabled {
		frameCache = cache.NewLayeredCache(cfg.Cache.TTL, cfg.Cache.Dir, cfg.Cache.TTL)
	}

	return &Pipeline{
		cfg:     cfg,
		sampler: media.NewFFmpegSampler(cfg.Media.FFmpegPath, cfg.Media.FrameTimeout, cfg.Media.FramesDir),
		vision:  provider,
		cache:   frameCache,
		repo:    roster.NewFileRepository(cfg.Roster.Path),
		log:     logrus.StandardLogger(),
	}, nil
}

// NewOfflinePipeline builds a pipeline for stages that never touch the
// video or a vision provider (lexical extraction, roster commands), so
// no credentials are required.
func NewOfflinePipeline(cfg *model.Config) *Pipeline {
	return &Pipeline{
		cfg:  cfg,
		repo: roster.NewFileRepository(cfg.Roster.Path),
		log:  logrus.StandardLogger(),
	}
}

// RunSummary is the operator-facing outcome of one session run.
type RunSummary struct {
	SessionID        string   `json:"session_id"`
	Labels           int      `json:"labels"`
	ResolvedLabels   int      `json:"resolved_labels"`
	Unresolved       []string `json:"unresolved,omitempty"`
	Segments         int      `json:"segments"`
	ResolvedSegments int      `json:"resolved_segments"`
	VisionCalls      int      `json:"vision_calls"`
	FrameExtractions int      `json:"frame_extractions"`
	OutputPath       string   `json:"output_path"`
}

// ResolveSession runs the full primary path for one session: merge
// word tokens if needed, locate first appearances, resolve labels
// against the video, annotate every segment, merge discoveries into
// the roster and persist the updated document.
//
// Missing inputs (session file, video) abort the session; per-label
// failures inside resolution degrade to the unidentified fallback.
func (p *Pipeline) ResolveSession(ctx context.Context, sessionPath, videoPath string) (*RunSummary, error) {
	session, err := LoadSession(sessionPath)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(videoPath); err != nil {
		return nil, fmt.Errorf("video file not found: %s", videoPath)
	}

	if len(session.Segments) == 0 && len(session.Words) > 0 {
		if err := model.ValidateTokens(session.Words); err != nil {
			return nil, fmt.Errorf("transcript tokens invalid: %w", err)
		}
		session.Segments = transcript.Merge(session.Words)
	}

	videoID := session.VideoID
	if videoID == "" {
		videoID = SessionIDFromPath(videoPath)
	}
	sessionID := session.ID
	if sessionID == "" {
		sessionID = SessionIDFromPath(sessionPath)
		session.ID = sessionID
	}

	appearances := transcript.FirstAppearances(session.Segments, p.cfg.Identify.OverlayDelay)
	p.log.WithFields(logrus.Fields{
		"session":  sessionID,
		"speakers": len(appearances),
		"segments": len(session.Segments),
	}).Info("located first appearances")

	maxDuration := session.Duration
	if maxDuration == 0 {
		maxDuration = p.cfg.Identify.MaxDuration
	}

	var limiter *rate.Limiter
	if p.cfg.Vision.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(p.cfg.Vision.RequestsPerSecond), p.cfg.Vision.Burst)
	}

	resolver := resolve.NewResolver(p.sampler, p.vision, resolve.Options{
		Offsets: p.cfg.Identify.Offsets,
		Cache:   p.cache,
		Limiter: limiter,
		Logger:  p.log,
	})

	result, err := resolver.Resolve(ctx, videoID, videoPath, appearances, maxDuration)
	if err != nil {
		return nil, fmt.Errorf("resolve speakers: %w", err)
	}

	resolvedSegments := resolve.Annotate(session, result.Mapping)

	// Discovery feeds the roster so future sessions can match against
	// known names. A roster failure does not invalidate the session
	// result.
	if len(result.Mapping) > 0 {
		discovered := make([]string, 0, len(result.Mapping))
		for _, name := range result.Mapping {
			discovered = append(discovered, name)
		}
		if _, err := p.mergeDiscovered(discovered); err != nil {
			p.log.WithError(err).Warn("roster update failed")
		}
	}

	if err := SaveSession(sessionPath, session); err != nil {
		return nil, err
	}

	return &RunSummary{
		SessionID:        sessionID,
		Labels:           len(appearances),
		ResolvedLabels:   len(result.Mapping),
		Unresolved:       result.Unresolved,
		Segments:         len(session.Segments),
		ResolvedSegments: resolvedSegments,
		VisionCalls:      result.VisionCalls,
		FrameExtractions: result.FrameExtractions,
		OutputPath:       sessionPath,
	}, nil
}

// ExtractSummary is the outcome of a lexical extraction run.
type ExtractSummary struct {
	Sessions    int
	Names       map[string]int
	RosterAdded int
}

// ExtractSpeakers runs the secondary path over every session document
// in a directory: lexical extraction, normalization/dedupe, threshold
// filtering, and an insert-only roster merge. Returns ErrNoWork when
// the directory holds no session documents.
func (p *Pipeline) ExtractSpeakers(sessionsDir string) (*ExtractSummary, error) {
	paths, err := filepath.Glob(filepath.Join(sessionsDir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no session documents in %s", ErrNoWork, sessionsDir)
	}

	extractor := names.NewExtractor()
	significant := make(map[string]int)
	processed := 0

	for _, path := range paths {
		session, err := LoadSession(path)
		if err != nil {
			p.log.WithField("path", path).WithError(err).Warn("skipping unreadable session")
			continue
		}

		text := session.Text
		if text == "" {
			p.log.WithField("path", path).Warn("session has no transcript text")
			continue
		}
		processed++

		counts := extractor.Extract(text)
		canonical := names.Dedupe(counts)
		for name, count := range names.Significant(canonical, p.cfg.Extract.MinMentions) {
			significant[name] += count
		}
	}

	added := 0
	if len(significant) > 0 {
		added, err = p.mergeDiscovered(names.SortedNames(significant))
		if err != nil {
			return nil, err
		}
	}

	return &ExtractSummary{
		Sessions:    processed,
		Names:       significant,
		RosterAdded: added,
	}, nil
}

// mergeDiscovered runs an insert-only roster merge under the roster
// lock, so concurrent sessions in a batch cannot interleave their
// load-modify-save cycles and drop each other's discoveries.
func (p *Pipeline) mergeDiscovered(discovered []string) (int, error) {
	p.rosterMu.Lock()
	defer p.rosterMu.Unlock()
	return roster.MergeDiscovered(p.repo, discovered)
}

// Repo exposes the roster repository for the CLI roster commands.
func (p *Pipeline) Repo() roster.Repository {
	return p.repo
}
