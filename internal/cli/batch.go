package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/plenaria/internal/pipeline"
	"github.com/ppiankov/plenaria/internal/worker"
)

var (
	concurrency  int
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Resolve multiple sessions from a list file in parallel",
	Long: `Batch resolves several sessions concurrently:
- Read session/video pairs from the input file (one pair per line,
  whitespace-separated; # starts a comment)
- Resolve each session with a worker pool
- A failed session never aborts the batch

Example:
  plenaria batch sessions.txt
  plenaria batch sessions.txt --workers 4 --timeout 4h`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "workers", 0, "number of concurrent sessions (0 = config default)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 6*time.Hour, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable frame/verdict cache (force fresh vision calls)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if concurrency > 0 {
		cfg.Concurrency.Workers = concurrency
	}
	cfg.Cache.Enabled = cfg.Cache.Enabled && !noCache

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Plenaria Batch Resolution\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers)

	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	succeeded := 0
	for _, result := range results {
		if result.GetError() != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.SessionPath, result.Error)
			continue
		}
		succeeded++
		s := result.Summary
		fmt.Fprintf(os.Stderr, "✓ %s: %d/%d speakers, %d/%d segments\n",
			s.SessionID, s.ResolvedLabels, s.Labels, s.ResolvedSegments, s.Segments)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Sessions:     %d\n", len(results))
	fmt.Fprintf(os.Stderr, "  Succeeded:    %d\n", succeeded)
	fmt.Fprintf(os.Stderr, "  Failed:       %d\n", len(results)-succeeded)
	fmt.Fprintf(os.Stderr, "\n")

	if succeeded == 0 && len(results) > 0 {
		return fmt.Errorf("all %d sessions failed", len(results))
	}
	return nil
}
