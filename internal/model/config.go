package model

import "time"

// Config holds the complete runtime configuration. Values come from
// CLI flags, PLENARIA_* environment variables, the config file, and
// the defaults below, in that priority order.
type Config struct {
	STT         STTConfig         `yaml:"stt" mapstructure:"stt"`
	Vision      VisionConfig      `yaml:"vision" mapstructure:"vision"`
	Identify    IdentifyConfig    `yaml:"identify" mapstructure:"identify"`
	Extract     ExtractConfig     `yaml:"extract" mapstructure:"extract"`
	Roster      RosterConfig      `yaml:"roster" mapstructure:"roster"`
	Media       MediaConfig       `yaml:"media" mapstructure:"media"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// STTConfig configures the speech-to-text/diarization collaborator.
type STTConfig struct {
	BaseURL  string        `yaml:"base_url" mapstructure:"base_url"`
	APIKey   string        `yaml:"api_key" mapstructure:"api_key"`
	Model    string        `yaml:"model" mapstructure:"model"`
	Language string        `yaml:"language" mapstructure:"language"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// VisionConfig configures the vision collaborator that reads on-screen
// name overlays from sampled frames.
type VisionConfig struct {
	APIKey    string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL   string        `yaml:"base_url" mapstructure:"base_url"`
	Model     string        `yaml:"model" mapstructure:"model"`
	MaxTokens int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// RequestsPerSecond caps the vision call rate (0 = unlimited).
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// IdentifyConfig controls the visual identification search.
type IdentifyConfig struct {
	// OverlayDelay shifts each first appearance forward to give the
	// broadcast overlay time to show up after a camera cut.
	OverlayDelay float64 `yaml:"overlay_delay" mapstructure:"overlay_delay"`

	// Offsets is the retry ladder, in seconds from the anchor. The
	// first offset that yields a readable overlay wins.
	Offsets []float64 `yaml:"offsets" mapstructure:"offsets"`

	// MaxDuration bounds probe timestamps when the session document
	// carries no duration.
	MaxDuration float64 `yaml:"max_duration" mapstructure:"max_duration"`
}

// ExtractConfig controls lexical name extraction.
type ExtractConfig struct {
	// MinMentions is the significance threshold: canonical names
	// mentioned fewer times are treated as pattern-match noise.
	MinMentions int `yaml:"min_mentions" mapstructure:"min_mentions"`
}

// RosterConfig locates the persistent speaker roster.
type RosterConfig struct {
	Path   string `yaml:"path" mapstructure:"path"`
	APIURL string `yaml:"api_url" mapstructure:"api_url"`
}

// MediaConfig configures video frame extraction.
type MediaConfig struct {
	FFmpegPath   string        `yaml:"ffmpeg_path" mapstructure:"ffmpeg_path"`
	FrameTimeout time.Duration `yaml:"frame_timeout" mapstructure:"frame_timeout"`
	FramesDir    string        `yaml:"frames_dir" mapstructure:"frames_dir"`
}

// CacheConfig configures the frame/verdict cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir     string        `yaml:"dir" mapstructure:"dir"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// HTTPConfig applies to the outbound HTTP clients (STT, roster API).
type HTTPConfig struct {
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent  string        `yaml:"user_agent" mapstructure:"user_agent"`
	HTTPProxy  string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy string        `yaml:"https_proxy" mapstructure:"https_proxy"`
}

// ConcurrencyConfig controls batch processing.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// OutputConfig controls where results land and how chatty the run is.
type OutputConfig struct {
	SessionsDir string `yaml:"sessions_dir" mapstructure:"sessions_dir"`
	Verbose     bool   `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		STT: STTConfig{
			BaseURL:  "https://api.elevenlabs.io",
			Model:    "scribe_v1",
			Language: "es",
			Timeout:  time.Hour,
		},
		Vision: VisionConfig{
			Model:             "gpt-4o-mini",
			MaxTokens:         100,
			Timeout:           30 * time.Second,
			RequestsPerSecond: 2,
			Burst:             5,
		},
		Identify: IdentifyConfig{
			OverlayDelay: 10,
			Offsets:      []float64{0, 20, 50, 110, 170},
			MaxDuration:  72000,
		},
		Extract: ExtractConfig{
			MinMentions: 2,
		},
		Roster: RosterConfig{
			Path:   "data/speakers/asambleistas.json",
			APIURL: "https://datos.asambleanacional.gob.ec/assemblyMan",
		},
		Media: MediaConfig{
			FFmpegPath:   "ffmpeg",
			FrameTimeout: 30 * time.Second,
			FramesDir:    "data/frames",
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     "data/cache",
			TTL:     30 * 24 * time.Hour,
		},
		HTTP: HTTPConfig{
			Timeout:   30 * time.Second,
			UserAgent: "Plenaria/0.1 (+https://github.com/ppiankov/plenaria)",
		},
		Concurrency: ConcurrencyConfig{
			Workers: 2,
		},
		Output: OutputConfig{
			SessionsDir: "data/sessions",
		},
	}
}
