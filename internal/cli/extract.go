package cli

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ppiankov/plenaria/internal/pipeline"
)

var (
	minMentions int
	rosterPath  string
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract [sessions-dir]",
	Short: "Extract legislator names from session transcripts",
	Long: `Extract mines honorific mentions ("asambleísta Juan Pérez",
"doctora María González") from the transcript text of every session
document in a directory:
- Pattern-match candidate names after parliamentary honorifics
- Normalize, deduplicate and merge accent variants
- Drop candidates below the mention threshold
- Insert newly discovered names into the speaker roster

Example:
  plenaria extract
  plenaria extract data/sessions --min-mentions 3`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().IntVar(&minMentions, "min-mentions", 0, "mention threshold for significance (0 = config default)")
	extractCmd.Flags().StringVar(&rosterPath, "roster", "", "roster file path (default from config)")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if minMentions > 0 {
		cfg.Extract.MinMentions = minMentions
	}
	if rosterPath != "" {
		cfg.Roster.Path = rosterPath
	}

	sessionsDir := cfg.Output.SessionsDir
	if len(args) == 1 {
		sessionsDir = args[0]
	}

	p := pipeline.NewOfflinePipeline(cfg)

	summary, err := p.ExtractSpeakers(sessionsDir)
	if err != nil {
		if errors.Is(err, pipeline.ErrNoWork) {
			fmt.Fprintf(os.Stderr, "No session documents found in %s\n", sessionsDir)
			return nil
		}
		return fmt.Errorf("extract failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ Processed %d sessions\n", summary.Sessions)
	fmt.Fprintf(os.Stderr, "✓ Found %d significant names\n", len(summary.Names))
	fmt.Fprintf(os.Stderr, "✓ Added %d new speakers to roster\n", summary.RosterAdded)

	if verbose && len(summary.Names) > 0 {
		type mention struct {
			name  string
			count int
		}
		mentions := make([]mention, 0, len(summary.Names))
		for name, count := range summary.Names {
			mentions = append(mentions, mention{name, count})
		}
		sort.Slice(mentions, func(i, j int) bool {
			if mentions[i].count != mentions[j].count {
				return mentions[i].count > mentions[j].count
			}
			return mentions[i].name < mentions[j].name
		})

		fmt.Fprintln(os.Stderr)
		for _, m := range mentions {
			fmt.Fprintf(os.Stderr, "  %4d  %s\n", m.count, m.name)
		}
	}

	return nil
}
