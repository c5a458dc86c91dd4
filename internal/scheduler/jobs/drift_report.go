package jobs

import (
	"context"
	"fmt"

	"github.com/hseo/vigil/internal/assessment"
	"github.com/hseo/vigil/pkg/logger"
)

// DriftReportJob logs the trust-bucket distribution of recent assessments.
// A surveillance desk watching the log stream sees quality regressions as a
// shift of mass from High toward Low.
type DriftReportJob struct {
	repo      *assessment.Repository
	sinceDays int
	logger    *logger.Logger
}

// NewDriftReportJob creates a new drift report job
func NewDriftReportJob(repo *assessment.Repository, log *logger.Logger) *DriftReportJob {
	return &DriftReportJob{
		repo:      repo,
		sinceDays: 7,
		logger:    log,
	}
}

// Name returns the job name
func (j *DriftReportJob) Name() string {
	return "dqsi_drift_report"
}

// Schedule returns the cron schedule (every hour)
func (j *DriftReportJob) Schedule() string {
	return "0 0 * * * *"
}

// Run executes the report
func (j *DriftReportJob) Run(ctx context.Context) error {
	counts, err := j.repo.CountByBucket(ctx, j.sinceDays)
	if err != nil {
		return fmt.Errorf("count by bucket: %w", err)
	}

	total := int64(0)
	for _, n := range counts {
		total += n
	}

	if total == 0 {
		j.logger.Info("No assessments in the report window")
		return nil
	}

	lowShare := float64(counts["Low"]) / float64(total)

	j.logger.WithFields(map[string]interface{}{
		"window_days": j.sinceDays,
		"total":       total,
		"high":        counts["High"],
		"moderate":    counts["Moderate"],
		"low":         counts["Low"],
		"low_share":   lowShare,
	}).Info("DQSI trust bucket distribution")

	if lowShare > 0.5 {
		j.logger.WithField("low_share", lowShare).Warn("Majority of recent assessments are Low trust")
	}

	return nil
}
