package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	dqsiConfigFile string
	verbose        bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vigil",
	Short: "Vigil - data quality sufficiency scoring for trade surveillance",
	Long: `Vigil DQSI Engine

Scores the data quality of trade surveillance evidence: per-KDE dimension
scoring, role-aware assessment, and degraded-mode fallback, with every score
classified into a High/Moderate/Low trust bucket.

Usage:
  go run ./cmd/vigil [command]

Examples:
  go run ./cmd/vigil api
  go run ./cmd/vigil assess --evidence evidence.json --role compliance
  go run ./cmd/vigil config-check
  go run ./cmd/vigil scheduler`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&dqsiConfigFile, "dqsi-config", "", "DQSI scoring config file (default from DQSI_CONFIG_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
