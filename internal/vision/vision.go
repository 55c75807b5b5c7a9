// Package vision wraps the image collaborator that reads speaker name
// overlays from sampled video frames.
package vision

import (
	"context"
	"time"
)

// Outcome classifies a single overlay read.
type Outcome string

const (
	// OutcomeIdentified means the collaborator read a clear name.
	OutcomeIdentified Outcome = "identified"
	// OutcomeNotVisible means no overlay (or no legible text) was present.
	OutcomeNotVisible Outcome = "not_visible"
	// OutcomeMalformed means the collaborator answered outside the
	// expected schema. Treated exactly like OutcomeNotVisible by
	// callers, but kept distinct for logging.
	OutcomeMalformed Outcome = "malformed"
)

// Verdict is the tagged result of one overlay read.
type Verdict struct {
	Outcome Outcome `json:"outcome"`
	Name    string  `json:"name,omitempty"`
}

// Positive reports whether the verdict carries a usable name.
func (v Verdict) Positive() bool {
	return v.Outcome == OutcomeIdentified && v.Name != ""
}

// Provider is the vision collaborator interface.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// ReadOverlay inspects one JPEG frame and reports whether a
	// speaker overlay names the current speaker.
	ReadOverlay(ctx context.Context, frameJPEG []byte) (Verdict, error)

	// IsAvailable checks if the provider is properly configured and accessible.
	IsAvailable(ctx context.Context) bool
}

// Config holds vision provider configuration.
type Config struct {
	// APIKey authenticates against the vision API.
	APIKey string

	// BaseURL overrides the API endpoint (for proxies/self-hosting).
	BaseURL string

	// Model is the vision-capable model name.
	Model string

	// MaxTokens limits the response length.
	MaxTokens int

	// Timeout bounds each overlay read.
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Model:     "gpt-4o-mini",
		MaxTokens: 100,
		Timeout:   30 * time.Second,
	}
}
