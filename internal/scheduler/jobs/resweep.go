package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/hseo/vigil/internal/contracts"
	"github.com/hseo/vigil/internal/dqsi"
	"github.com/hseo/vigil/pkg/logger"
)

// AssessmentLister supplies the stored assessments a re-sweep examines.
// Satisfied by assessment.Repository.
type AssessmentLister interface {
	ListRecent(ctx context.Context, limit int) ([]contracts.AssessmentRecord, error)
}

// ResweepJob re-scores recent assessments against the currently loaded
// configuration. When the scoring tables change, historical scores drift;
// this job quantifies that drift without mutating the stored records. Each
// record is replayed with its persisted evidence and baseline, so the only
// variable is the configuration.
type ResweepJob struct {
	repo      AssessmentLister
	roleAware *dqsi.RoleAwareStrategy
	calc      *dqsi.Calculator
	batchSize int
	logger    *logger.Logger
}

// NewResweepJob creates a new re-sweep job
func NewResweepJob(repo AssessmentLister, calc *dqsi.Calculator, log *logger.Logger) *ResweepJob {
	return &ResweepJob{
		repo:      repo,
		roleAware: dqsi.NewRoleAwareStrategy(calc),
		calc:      calc,
		batchSize: 200,
		logger:    log,
	}
}

// Name returns the job name
func (j *ResweepJob) Name() string {
	return "dqsi_resweep"
}

// Schedule returns the cron schedule (every day at 2 AM)
func (j *ResweepJob) Schedule() string {
	return "0 0 2 * * *"
}

// sweepSummary counts what one re-sweep pass saw.
type sweepSummary struct {
	examined    int
	rescored    int
	drifted     int
	bucketMoves int
	maxDrift    float64
}

// Run executes the re-sweep
func (j *ResweepJob) Run(ctx context.Context) error {
	sum, err := j.sweep(ctx)
	if err != nil {
		return err
	}

	j.logger.WithFields(map[string]interface{}{
		"examined":     sum.examined,
		"rescored":     sum.rescored,
		"drifted":      sum.drifted,
		"bucket_moves": sum.bucketMoves,
		"max_drift":    sum.maxDrift,
		"config_hash":  j.calc.ConfigHash(),
	}).Info("DQSI re-sweep completed")

	return nil
}

func (j *ResweepJob) sweep(ctx context.Context) (sweepSummary, error) {
	var sum sweepSummary

	records, err := j.repo.ListRecent(ctx, j.batchSize)
	if err != nil {
		return sum, fmt.Errorf("list recent assessments: %w", err)
	}
	sum.examined = len(records)

	currentHash := j.calc.ConfigHash()

	for i := range records {
		rec := &records[i]

		// Fallback assessments have no evidence-based score to reproduce.
		if rec.Strategy == dqsi.StrategyFallback {
			continue
		}
		if rec.ConfigHash == currentHash {
			continue
		}

		var stored dqsi.Result
		if err := json.Unmarshal(rec.Result, &stored); err != nil {
			j.logger.WithError(err).WithField("assessment_id", rec.ID).Warn("Skipping unreadable stored result")
			continue
		}

		res := j.roleAware.CalculateDQScore(rec.Evidence, rec.Baseline, dqsi.Role(rec.UserRole), rec.AssessedAt, rec.DeskID)
		sum.rescored++

		drift := math.Abs(res.DQSIScore - rec.Score)
		if drift > sum.maxDrift {
			sum.maxDrift = drift
		}
		if drift > 0.0005 {
			sum.drifted++
		}
		if string(res.TrustBucket) != rec.TrustBucket {
			sum.bucketMoves++
			j.logger.WithFields(map[string]interface{}{
				"assessment_id": rec.ID,
				"old_bucket":    rec.TrustBucket,
				"new_bucket":    res.TrustBucket,
				"old_score":     rec.Score,
				"new_score":     res.DQSIScore,
			}).Warn("Trust bucket moved under current configuration")
		}
	}

	return sum, nil
}
