package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/plenaria/internal/model"
	"github.com/ppiankov/plenaria/internal/pipeline"
)

var (
	videoPath      string
	resolveTimeout time.Duration
	overlayDelay   float64
	offsets        []float64
	noCache        bool
	visionModel    string
	visionRPS      float64
)

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve <session.json>",
	Short: "Resolve diarization labels to legislator names using the session video",
	Long: `Resolve maps each anonymous diarization label in a session document
to a real name:
- Merge word tokens into speaker-labeled segments (when needed)
- Locate the first appearance of every label
- Sample video frames near each appearance and read the name overlay
- Retry along a fixed offset ladder when no overlay is visible
- Annotate every segment; unresolved labels fall back to "No identificado"
- Merge identified names into the speaker roster

Example:
  plenaria resolve data/sessions/2025-05-14.json --video data/video/2025-05-14.mp4
  plenaria resolve session.json --video session.mp4 --delay 15 --offsets 0,30,90
  plenaria resolve session.json --video session.mp4 --no-cache -v`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringVar(&videoPath, "video", "", "session video file (required)")
	_ = resolveCmd.MarkFlagRequired("video")

	resolveCmd.Flags().DurationVar(&resolveTimeout, "timeout", 30*time.Minute, "overall resolution timeout")
	resolveCmd.Flags().Float64Var(&overlayDelay, "delay", 10, "seconds to wait after a first appearance before probing the overlay")
	resolveCmd.Flags().Float64SliceVar(&offsets, "offsets", nil, "retry ladder offsets in seconds (default: 0,20,50,110,170)")
	resolveCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable frame/verdict cache (force fresh vision calls)")
	resolveCmd.Flags().StringVar(&visionModel, "vision-model", "", "vision model name (default from config)")
	resolveCmd.Flags().Float64Var(&visionRPS, "rps", 0, "vision requests per second (0 = config default)")
}

// applyResolveFlags overlays explicitly set flags onto the effective
// configuration. Flag defaults must not clobber config-file values, so
// value flags apply only when the user passed them.
func applyResolveFlags(cmd *cobra.Command, cfg *model.Config) {
	if cmd.Flags().Changed("delay") {
		cfg.Identify.OverlayDelay = overlayDelay
	}
	if len(offsets) > 0 {
		cfg.Identify.Offsets = offsets
	}
	if visionModel != "" {
		cfg.Vision.Model = visionModel
	}
	if visionRPS > 0 {
		cfg.Vision.RequestsPerSecond = visionRPS
	}
	cfg.Cache.Enabled = cfg.Cache.Enabled && !noCache
}

func runResolve(cmd *cobra.Command, args []string) error {
	sessionPath := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyResolveFlags(cmd, cfg)

	if verbose {
		fmt.Fprintf(os.Stderr, "Session:  %s\n", sessionPath)
		fmt.Fprintf(os.Stderr, "Video:    %s\n", videoPath)
		fmt.Fprintf(os.Stderr, "Model:    %s\n", cfg.Vision.Model)
		fmt.Fprintf(os.Stderr, "Cache:    %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	summary, err := p.ResolveSession(ctx, sessionPath, videoPath)
	if err != nil {
		return fmt.Errorf("resolve failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ Resolved %d/%d speakers\n", summary.ResolvedLabels, summary.Labels)
	fmt.Fprintf(os.Stderr, "✓ Annotated %d/%d segments\n", summary.ResolvedSegments, summary.Segments)
	fmt.Fprintf(os.Stderr, "✓ Vision calls: %d, frames extracted: %d\n", summary.VisionCalls, summary.FrameExtractions)
	if len(summary.Unresolved) > 0 {
		fmt.Fprintf(os.Stderr, "  Unresolved: %s\n", strings.Join(summary.Unresolved, ", "))
	}
	fmt.Fprintf(os.Stderr, "✓ Updated %s\n", summary.OutputPath)

	return nil
}
