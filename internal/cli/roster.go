package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/plenaria/internal/roster"
	"github.com/ppiankov/plenaria/internal/util"
)

var (
	rosterAPIURL  string
	rosterTimeout time.Duration
)

// rosterCmd represents the roster command group
var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Manage the persistent speaker roster",
	Long: `The roster is the persistent directory of known legislators. Both
resolution and extraction insert newly discovered names into it;
'roster sync' bootstraps it from the National Assembly open-data API.`,
}

var rosterSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Bootstrap the roster from the National Assembly API",
	Long: `Sync fetches the official member list and merges it into the local
roster. Existing entries keep their identifiers; authoritative data
only fills placeholder fields, never overwrites discovered values.

Example:
  plenaria roster sync
  plenaria roster sync --api-url https://datos.asambleanacional.gob.ec/assemblyMan`,
	RunE: runRosterSync,
}

var rosterShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current roster",
	RunE:  runRosterShow,
}

func init() {
	rootCmd.AddCommand(rosterCmd)
	rosterCmd.AddCommand(rosterSyncCmd)
	rosterCmd.AddCommand(rosterShowCmd)

	rosterCmd.PersistentFlags().StringVar(&rosterPath, "roster", "", "roster file path (default from config)")
	rosterSyncCmd.Flags().StringVar(&rosterAPIURL, "api-url", "", "assembly members API endpoint (default from config)")
	rosterSyncCmd.Flags().DurationVar(&rosterTimeout, "timeout", 30*time.Second, "API request timeout")
	rosterSyncCmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	rosterSyncCmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
}

func runRosterSync(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), rosterTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if rosterPath != "" {
		cfg.Roster.Path = rosterPath
	}
	if rosterAPIURL != "" {
		cfg.Roster.APIURL = rosterAPIURL
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Roster: %s\n", cfg.Roster.Path)
		fmt.Fprintf(os.Stderr, "API:    %s\n", cfg.Roster.APIURL)
		fmt.Fprintln(os.Stderr)
	}

	client := roster.NewAPIClient(cfg.Roster.APIURL, cfg.HTTP.UserAgent, rosterTimeout, util.NewProxyFunc(httpProxy, httpsProxy))
	repo := roster.NewFileRepository(cfg.Roster.Path)

	added, err := client.Bootstrap(ctx, repo)
	if err != nil {
		return fmt.Errorf("roster sync failed: %w", err)
	}

	doc, err := repo.Load()
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "✓ Added %d new members\n", added)
	fmt.Fprintf(os.Stderr, "✓ Roster holds %d speakers\n", doc.TotalCount)

	return nil
}

func runRosterShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if rosterPath != "" {
		cfg.Roster.Path = rosterPath
	}

	repo := roster.NewFileRepository(cfg.Roster.Path)
	doc, err := repo.Load()
	if err != nil {
		return err
	}

	if len(doc.Speakers) == 0 {
		fmt.Println("Roster is empty. Run 'plenaria roster sync' or resolve a session first.")
		return nil
	}

	fmt.Printf("Roster: %d speakers (updated %s, source: %s)\n\n",
		doc.TotalCount, doc.LastUpdated.Format("2006-01-02"), doc.Source)
	for _, s := range doc.Speakers {
		fmt.Printf("  %-8s %-40s %s\n", s.ID, s.Name, s.Party)
	}

	return nil
}
