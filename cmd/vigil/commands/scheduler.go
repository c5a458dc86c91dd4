package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hseo/vigil/internal/assessment"
	"github.com/hseo/vigil/internal/dqsi"
	"github.com/hseo/vigil/internal/scheduler"
	"github.com/hseo/vigil/internal/scheduler/jobs"
	"github.com/hseo/vigil/pkg/config"
	"github.com/hseo/vigil/pkg/database"
	"github.com/hseo/vigil/pkg/logger"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the background job scheduler",
	Long: `Runs the scheduled maintenance jobs:

  dqsi_resweep       - re-scores recent assessments against the current
                       configuration and logs score/bucket drift (daily, 2 AM)
  dqsi_drift_report  - logs the trust-bucket distribution of the last
                       7 days of assessments (hourly)

Example:
  go run ./cmd/vigil scheduler`,
	RunE: runScheduler,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if dqsiConfigFile != "" {
		cfg.DQSIConfigPath = dqsiConfigFile
	}

	log := logger.New(cfg)

	dqsiCfg, err := dqsi.Load(cfg.DQSIConfigPath)
	if err != nil {
		return fmt.Errorf("load dqsi config: %w", err)
	}
	calc := dqsi.NewCalculator(dqsiCfg)

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	repo := assessment.NewRepository(db.Pool)

	sched := scheduler.New(log)
	if err := sched.AddJob(jobs.NewResweepJob(repo, calc, log)); err != nil {
		return fmt.Errorf("add resweep job: %w", err)
	}
	if err := sched.AddJob(jobs.NewDriftReportJob(repo, log)); err != nil {
		return fmt.Errorf("add drift report job: %w", err)
	}

	sched.Start()
	log.WithField("jobs", sched.GetAllJobs()).Info("Scheduler running")
	fmt.Println("Scheduler running. Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}
