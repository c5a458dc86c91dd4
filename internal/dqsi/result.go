package dqsi

// Result is the output contract of every scoring strategy. Whatever path
// produced it — base calculation, role-aware wrapper, fallback, or the
// emergency terminal case — DQSIScore is in [0,1] rounded to 3 decimals and
// TrustBucket is one of the three valid labels. Downstream alert generation
// depends on never having to special-case a missing trust bucket.
type Result struct {
	DQSIScore   float64     `json:"dqsi_score"`
	TrustBucket TrustBucket `json:"dqsi_trust_bucket"`
	Framework   string      `json:"dq_framework"`
	Strategy    string      `json:"dq_strategy"`

	KDEScores       map[string]map[Dimension]float64 `json:"kde_scores"`
	SyntheticScores map[string]float64               `json:"synthetic_scores"`
	Breakdown       ScoreBreakdown                   `json:"score_breakdown"`
	ApplicableKDEs  []string                         `json:"applicable_kdes"`
	Summary         map[Dimension]DimensionStats     `json:"dimension_summary"`
	Metadata        QualityMetadata                  `json:"quality_metadata"`

	// Role-aware strategy only.
	RoleMetadata   *RoleMetadata   `json:"role_metadata,omitempty"`
	RoleValidation *RoleValidation `json:"role_validation,omitempty"`

	// Fallback strategy only.
	ConfidenceIndex    *float64              `json:"dqsi_confidence_index,omitempty"`
	Components         *ConfidenceComponents `json:"data_quality_components,omitempty"`
	FallbackReason     FallbackReason        `json:"fallback_reason,omitempty"`
	AdjustmentFactor   float64               `json:"fallback_adjustment_factor,omitempty"`
	OriginalConfidence float64               `json:"original_confidence_index,omitempty"`
	DegradationLevel   string                `json:"degradation_level,omitempty"`
	IsDegradedMode     bool                  `json:"is_degraded_mode,omitempty"`
	IsEmergencyMode    bool                  `json:"is_emergency_mode,omitempty"`

	Error string `json:"error,omitempty"`
}

// ScoreBreakdown is the aggregation ledger behind the headline score:
// dqsi_score == round(TotalWeightedScore / TotalWeights, 3) whenever
// TotalWeights > 0, and the two contribution percentages sum to 100 within
// floating rounding.
type ScoreBreakdown struct {
	TotalWeightedScore          float64 `json:"total_weighted_score"`
	TotalWeights                float64 `json:"total_weights"`
	FoundationalWeightedScore   float64 `json:"foundational_weighted_score"`
	EnhancedWeightedScore       float64 `json:"enhanced_weighted_score"`
	FoundationalContributionPct float64 `json:"foundational_contribution_pct"`
	EnhancedContributionPct     float64 `json:"enhanced_contribution_pct"`
}

// DimensionStats summarizes one dimension across all scored KDEs.
type DimensionStats struct {
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Count   int     `json:"count"`
}

// QualityMetadata reports assessment diagnostics. FoundationalScore and
// EnhancedScore are independently normalized sub-aggregates for display;
// the headline score comes only from the combined accumulator and is not
// recoverable as a linear combination of these two.
type QualityMetadata struct {
	KDEsAssessed      int      `json:"kdes_assessed"`
	DimensionsScored  int      `json:"dimensions_scored"`
	FoundationalScore float64  `json:"foundational_score"`
	EnhancedScore     float64  `json:"enhanced_score"`
	SyntheticKDEs     []string `json:"synthetic_kdes"`
	MissingValueKDEs  []string `json:"missing_value_kdes"`
	InternalErrorKDEs []string `json:"internal_error_kdes,omitempty"`
	ConfigHash        string   `json:"config_hash,omitempty"`
}

// RoleMetadata reports how the assessed evidence relates to the consumer
// role's KDE scope. Scope restriction is reporting, not filtering: all
// supplied evidence is scored, and in/out of scope KDEs are listed here.
type RoleMetadata struct {
	UserRole               string                 `json:"user_role"`
	DeskID                 string                 `json:"desk_id,omitempty"`
	RoleKDEScope           []string               `json:"role_kde_scope"`
	ScopeCoverage          float64                `json:"scope_coverage"`
	MissingKDEs            []string               `json:"missing_kdes"`
	OutOfScopeKDEs         []string               `json:"out_of_scope_kdes"`
	PreferredDimensions    []Dimension            `json:"preferred_dimensions"`
	AssessmentCompleteness AssessmentCompleteness `json:"assessment_completeness"`
}

// AssessmentCompleteness is the deterministic completeness grading over
// critical and scope coverage.
type AssessmentCompleteness struct {
	CriticalKDECoverage float64 `json:"critical_kde_coverage"`
	ScopeCoverage       float64 `json:"scope_coverage"`
	CompletenessLevel   string  `json:"completeness_level"` // complete, adequate, partial, insufficient
}

// RoleValidation reports the role's compliance checks over the result.
type RoleValidation struct {
	Compliant         bool            `json:"compliant"`
	ComplianceScore   float64         `json:"compliance_score"`
	Checks            map[string]bool `json:"checks"`
	RiskTolerance     string          `json:"risk_tolerance"`
	OverallAssessment string          `json:"overall_assessment"`
}

// ConfidenceComponents are the sub-scores of the base confidence
// calculation used by the fallback strategy.
type ConfidenceComponents struct {
	DataAvailability float64 `json:"data_availability"`
	ImputationFactor float64 `json:"imputation_factor"`
	KDECoverage      float64 `json:"kde_coverage"`
}
