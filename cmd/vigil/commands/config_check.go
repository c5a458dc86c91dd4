package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hseo/vigil/internal/dqsi"
)

// configCheckCmd represents the config-check command
var configCheckCmd = &cobra.Command{
	Use:   "config-check",
	Short: "Validate the DQSI scoring configuration",
	Long: `Loads the scoring configuration (defaults merged with overrides),
runs all validation constraints, and prints advisory warnings.

Exits non-zero when the configuration is invalid.

Example:
  go run ./cmd/vigil config-check
  go run ./cmd/vigil config-check --dqsi-config configs/dqsi.yaml`,
	RunE: runConfigCheck,
}

func init() {
	rootCmd.AddCommand(configCheckCmd)
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	path := dqsiConfigPath()

	cfg, err := dqsi.Load(path)
	if err != nil {
		return fmt.Errorf("config invalid: %w", err)
	}

	hash, err := dqsi.Hash(cfg)
	if err != nil {
		return fmt.Errorf("hash config: %w", err)
	}

	source := path
	if source == "" {
		source = "(built-in defaults)"
	}

	fmt.Printf("Config:      %s\n", source)
	fmt.Printf("Framework:   %s\n", cfg.Framework)
	fmt.Printf("Hash:        %s\n", hash)
	fmt.Printf("KDEs:        %d\n", len(cfg.KDEs))
	fmt.Printf("Roles:       %d\n", len(cfg.Roles))
	fmt.Printf("Buckets:     High >= %.2f, Moderate >= %.2f\n", cfg.TrustBuckets.High, cfg.TrustBuckets.Moderate)

	warnings := dqsi.Warn(cfg)
	if len(warnings) == 0 {
		fmt.Println("Warnings:    none")
	} else {
		fmt.Printf("Warnings:    %d\n", len(warnings))
		for _, w := range warnings {
			fmt.Printf("  [%s] %s\n", w.Code, w.Message)
		}
	}

	fmt.Println("\nConfiguration is valid")
	return nil
}
