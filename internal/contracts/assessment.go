package contracts

import "time"

// AssessmentRecord is the persisted form of one DQSI assessment. The full
// result document and the baseline the score was computed against are stored
// as JSON so the audit trail can reproduce exactly what downstream consumers
// saw.
type AssessmentRecord struct {
	ID          int64     `json:"id"`
	AssessedAt  time.Time `json:"assessed_at"`
	UserRole    string    `json:"user_role"`
	DeskID      string    `json:"desk_id,omitempty"`
	Strategy    string    `json:"dq_strategy"`
	Score       float64   `json:"dqsi_score"`
	TrustBucket string    `json:"dqsi_trust_bucket"`
	ConfigHash  string    `json:"config_hash"`
	Evidence    Evidence  `json:"evidence"`
	Baseline    *Baseline `json:"baseline,omitempty"`
	Result      []byte    `json:"result"` // full result document, JSON
}
