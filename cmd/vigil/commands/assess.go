package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hseo/vigil/internal/contracts"
	"github.com/hseo/vigil/internal/dqsi"
)

// assessCmd represents the assess command
var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Score an evidence file from the command line",
	Long: `Scores a JSON evidence file without a running server or database.

The evidence file maps KDE names to raw values:
  {"trader_id": "TRD-001", "notional": 1500000, "side": "buy"}

An optional baseline file supplies expected KDEs, volumes, and reference
values in the same shape the API accepts.

Example:
  go run ./cmd/vigil assess --evidence evidence.json --role compliance
  go run ./cmd/vigil assess --evidence evidence.json --baseline baseline.json --alert-time 2026-03-15T12:00:00Z
  go run ./cmd/vigil assess --fallback-reason insufficient_data`,
	RunE: runAssess,
}

var (
	assessEvidenceFile string
	assessBaselineFile string
	assessRole         string
	assessDeskID       string
	assessAlertTime    string
	assessFallback     string
)

func init() {
	rootCmd.AddCommand(assessCmd)

	assessCmd.Flags().StringVar(&assessEvidenceFile, "evidence", "", "evidence JSON file")
	assessCmd.Flags().StringVar(&assessBaselineFile, "baseline", "", "baseline JSON file")
	assessCmd.Flags().StringVar(&assessRole, "role", "analyst", "consumer role")
	assessCmd.Flags().StringVar(&assessDeskID, "desk", "", "desk identifier for baseline resolution")
	assessCmd.Flags().StringVar(&assessAlertTime, "alert-time", "", "alert timestamp (RFC3339)")
	assessCmd.Flags().StringVar(&assessFallback, "fallback-reason", "", "score with the fallback strategy for this reason")
}

func runAssess(cmd *cobra.Command, args []string) error {
	dqsiCfg, err := dqsi.Load(dqsiConfigPath())
	if err != nil {
		return fmt.Errorf("load dqsi config: %w", err)
	}

	var evidence contracts.Evidence
	if assessEvidenceFile != "" {
		data, err := os.ReadFile(assessEvidenceFile)
		if err != nil {
			return fmt.Errorf("read evidence: %w", err)
		}
		if err := json.Unmarshal(data, &evidence); err != nil {
			return fmt.Errorf("parse evidence: %w", err)
		}
	}

	var result *dqsi.Result

	if assessFallback != "" {
		strategy := dqsi.NewFallbackStrategy(dqsiCfg)
		result = strategy.CalculateDQScore(dqsi.FallbackInput{
			Evidence: evidence,
			Reason:   dqsi.FallbackReason(assessFallback),
		})
	} else {
		if len(evidence) == 0 {
			return fmt.Errorf("--evidence is required (or use --fallback-reason)")
		}

		var baseline *contracts.Baseline
		if assessBaselineFile != "" {
			data, err := os.ReadFile(assessBaselineFile)
			if err != nil {
				return fmt.Errorf("read baseline: %w", err)
			}
			baseline = &contracts.Baseline{}
			if err := json.Unmarshal(data, baseline); err != nil {
				return fmt.Errorf("parse baseline: %w", err)
			}
		}

		var alertTime time.Time
		if assessAlertTime != "" {
			alertTime, err = time.Parse(time.RFC3339, assessAlertTime)
			if err != nil {
				return fmt.Errorf("parse alert-time: %w", err)
			}
		}

		strategy := dqsi.NewRoleAwareStrategy(dqsi.NewCalculator(dqsiCfg))
		result = strategy.CalculateDQScore(evidence, baseline, dqsi.Role(assessRole), alertTime, assessDeskID)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	fmt.Println(string(out))
	return nil
}

// dqsiConfigPath resolves the scoring config path: flag first, then env.
func dqsiConfigPath() string {
	if dqsiConfigFile != "" {
		return dqsiConfigFile
	}
	return os.Getenv("DQSI_CONFIG_PATH")
}
