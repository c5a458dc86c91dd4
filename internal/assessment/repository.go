package assessment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hseo/vigil/internal/contracts"
)

// Repository handles assessment persistence. Every scored assessment is
// stored with its full result document and the config hash that produced it,
// so any historical score can be traced back to its exact tables.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new assessment repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the assessments table if it does not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS dqsi_assessments (
			id            BIGSERIAL PRIMARY KEY,
			assessed_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
			user_role     TEXT NOT NULL,
			desk_id       TEXT NOT NULL DEFAULT '',
			dq_strategy   TEXT NOT NULL,
			dqsi_score    DOUBLE PRECISION NOT NULL,
			trust_bucket  TEXT NOT NULL,
			config_hash   TEXT NOT NULL,
			evidence      JSONB NOT NULL,
			baseline      JSONB,
			result        JSONB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_dqsi_assessments_assessed_at
			ON dqsi_assessments (assessed_at DESC);
	`

	if _, err := r.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure assessment schema: %w", err)
	}
	return nil
}

// Save persists one assessment and fills in its generated ID.
func (r *Repository) Save(ctx context.Context, rec *contracts.AssessmentRecord) error {
	evidenceJSON, err := json.Marshal(rec.Evidence)
	if err != nil {
		return fmt.Errorf("failed to marshal evidence: %w", err)
	}

	var baselineJSON []byte
	if rec.Baseline != nil {
		baselineJSON, err = json.Marshal(rec.Baseline)
		if err != nil {
			return fmt.Errorf("failed to marshal baseline: %w", err)
		}
	}

	query := `
		INSERT INTO dqsi_assessments (
			assessed_at, user_role, desk_id, dq_strategy,
			dqsi_score, trust_bucket, config_hash, evidence, baseline, result
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	err = r.pool.QueryRow(ctx, query,
		rec.AssessedAt, rec.UserRole, rec.DeskID, rec.Strategy,
		rec.Score, rec.TrustBucket, rec.ConfigHash, evidenceJSON, baselineJSON, rec.Result,
	).Scan(&rec.ID)

	if err != nil {
		return fmt.Errorf("failed to save assessment: %w", err)
	}

	return nil
}

// GetLatest retrieves the most recent assessment. Returns nil when none has
// been stored yet.
func (r *Repository) GetLatest(ctx context.Context) (*contracts.AssessmentRecord, error) {
	query := `
		SELECT id, assessed_at, user_role, desk_id, dq_strategy,
		       dqsi_score, trust_bucket, config_hash, evidence, baseline, result
		FROM dqsi_assessments
		ORDER BY assessed_at DESC, id DESC
		LIMIT 1
	`

	rec, err := scanRecord(r.pool.QueryRow(ctx, query))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest assessment: %w", err)
	}

	return rec, nil
}

// Get retrieves one assessment by ID.
func (r *Repository) Get(ctx context.Context, id int64) (*contracts.AssessmentRecord, error) {
	query := `
		SELECT id, assessed_at, user_role, desk_id, dq_strategy,
		       dqsi_score, trust_bucket, config_hash, evidence, baseline, result
		FROM dqsi_assessments
		WHERE id = $1
	`

	rec, err := scanRecord(r.pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("assessment %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}

	return rec, nil
}

// ListRecent retrieves the newest assessments, most recent first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]contracts.AssessmentRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, assessed_at, user_role, desk_id, dq_strategy,
		       dqsi_score, trust_bucket, config_hash, evidence, baseline, result
		FROM dqsi_assessments
		ORDER BY assessed_at DESC, id DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	defer rows.Close()

	var records []contracts.AssessmentRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assessment: %w", err)
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read assessments: %w", err)
	}

	return records, nil
}

// CountByBucket aggregates stored assessments per trust bucket since a
// cutoff. Used by the drift re-sweep job.
func (r *Repository) CountByBucket(ctx context.Context, sinceDays int) (map[string]int64, error) {
	query := `
		SELECT trust_bucket, COUNT(*)
		FROM dqsi_assessments
		WHERE assessed_at >= now() - make_interval(days => $1)
		GROUP BY trust_bucket
	`

	rows, err := r.pool.Query(ctx, query, sinceDays)
	if err != nil {
		return nil, fmt.Errorf("failed to count by bucket: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var bucket string
		var count int64
		if err := rows.Scan(&bucket, &count); err != nil {
			return nil, fmt.Errorf("failed to scan bucket count: %w", err)
		}
		counts[bucket] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bucket counts: %w", err)
	}

	return counts, nil
}

func scanRecord(row pgx.Row) (*contracts.AssessmentRecord, error) {
	var rec contracts.AssessmentRecord
	var evidenceJSON, baselineJSON []byte

	err := row.Scan(
		&rec.ID, &rec.AssessedAt, &rec.UserRole, &rec.DeskID, &rec.Strategy,
		&rec.Score, &rec.TrustBucket, &rec.ConfigHash, &evidenceJSON, &baselineJSON, &rec.Result,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(evidenceJSON, &rec.Evidence); err != nil {
		return nil, fmt.Errorf("failed to unmarshal evidence: %w", err)
	}

	if len(baselineJSON) > 0 {
		if err := json.Unmarshal(baselineJSON, &rec.Baseline); err != nil {
			return nil, fmt.Errorf("failed to unmarshal baseline: %w", err)
		}
	}

	return &rec, nil
}
