package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/plenaria/internal/pipeline"
	"github.com/ppiankov/plenaria/internal/transcribe"
	"github.com/ppiankov/plenaria/internal/util"
)

var (
	outSession  string
	sttLanguage string
	sttModel    string
	sttTimeout  time.Duration
	httpProxy   string
	httpsProxy  string
)

// transcribeCmd represents the transcribe command
var transcribeCmd = &cobra.Command{
	Use:   "transcribe <audio>",
	Short: "Transcribe and diarize a session recording",
	Long: `Transcribe uploads the audio to the speech-to-text service with
diarization enabled and writes a session document:
- Word tokens tagged with anonymous speaker labels
- Segments merged from consecutive same-speaker words
- Full transcript text for lexical name extraction

The resulting document is the input for 'plenaria resolve'.

Example:
  plenaria transcribe data/audio/2025-05-14.mp3
  plenaria transcribe session.mp3 --out data/sessions/session.json --language es`,
	Args: cobra.ExactArgs(1),
	RunE: runTranscribe,
}

func init() {
	rootCmd.AddCommand(transcribeCmd)

	transcribeCmd.Flags().StringVar(&outSession, "out", "", "output session document path (default: <audio>.json)")
	transcribeCmd.Flags().StringVar(&sttLanguage, "language", "", "transcript language code (default from config)")
	transcribeCmd.Flags().StringVar(&sttModel, "stt-model", "", "speech-to-text model (default from config)")
	transcribeCmd.Flags().DurationVar(&sttTimeout, "timeout", time.Hour, "upload+transcription timeout")
	transcribeCmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	transcribeCmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	audioPath := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if sttLanguage != "" {
		cfg.STT.Language = sttLanguage
	}
	if sttModel != "" {
		cfg.STT.Model = sttModel
	}
	if cmd.Flags().Changed("timeout") {
		cfg.STT.Timeout = sttTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.STT.Timeout)
	defer cancel()
	if cfg.STT.APIKey == "" {
		return fmt.Errorf("ELEVENLABS_API_KEY environment variable not set")
	}

	outPath := outSession
	if outPath == "" {
		outPath = strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + ".json"
	}

	client, err := transcribe.NewElevenLabsClient(transcribe.ElevenLabsConfig{
		BaseURL:  cfg.STT.BaseURL,
		APIKey:   cfg.STT.APIKey,
		Model:    cfg.STT.Model,
		Language: cfg.STT.Language,
		Timeout:  cfg.STT.Timeout,
		Proxy:    util.NewProxyFunc(httpProxy, httpsProxy),
	})
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Transcribing: %s\n", audioPath)
		fmt.Fprintf(os.Stderr, "Model: %s, language: %s\n", cfg.STT.Model, cfg.STT.Language)
		fmt.Fprintln(os.Stderr)
	}

	result, err := client.Transcribe(ctx, audioPath)
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}

	session := result.Session(pipeline.SessionIDFromPath(outPath))

	if err := pipeline.SaveSession(outPath, session); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "✓ Transcribed %.0fs of audio, %d speakers detected\n", result.Duration, result.SpeakersDetected)
	fmt.Fprintf(os.Stderr, "✓ %d words, %d segments\n", len(result.Words), len(session.Segments))
	fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", outPath)

	return nil
}
