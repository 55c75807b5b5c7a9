package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/plenaria/internal/model"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "plenaria",
	Short: "Plenaria - Speaker identity resolution for plenary session recordings",
	Long: `Plenaria turns anonymous diarization labels in legislative session
transcripts into real legislator names.

It samples video frames at the moments each speaker first appears,
reads the broadcast name overlay with a vision model, and annotates
every transcript segment with the identified speaker. A lexical
extractor mines honorific mentions from transcript text as a second
discovery channel, and both feed a persistent speaker roster.

Plenaria reads what the broadcast shows; it does not guess.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for Plenaria.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("plenaria v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.plenaria/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.plenaria")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match PLENARIA_*
	viper.SetEnvPrefix("PLENARIA")
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig materializes the effective configuration: defaults,
// overlaid by the config file and PLENARIA_* variables, with API
// credentials pulled from the environment last.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}

	if cfg.Vision.APIKey == "" {
		if key := os.Getenv("PLENARIA_VISION_API_KEY"); key != "" {
			cfg.Vision.APIKey = key
		} else if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			cfg.Vision.APIKey = key
		}
	}
	if cfg.STT.APIKey == "" {
		cfg.STT.APIKey = os.Getenv("ELEVENLABS_API_KEY")
	}

	cfg.Output.Verbose = verbose
	return cfg, nil
}
