package dqsi

// Dimension is one of the 7 fixed quality dimensions a KDE is scored on.
type Dimension string

const (
	DimCompleteness Dimension = "completeness"
	DimConformity   Dimension = "conformity"
	DimTimeliness   Dimension = "timeliness"
	DimCoverage     Dimension = "coverage"
	DimAccuracy     Dimension = "accuracy"
	DimUniqueness   Dimension = "uniqueness"
	DimConsistency  Dimension = "consistency"
)

// DimensionTier partitions the 7 dimensions into foundational checks
// (computable without reference data) and enhanced checks (benefit from
// external/cross-system data).
type DimensionTier string

const (
	TierFoundational DimensionTier = "foundational"
	TierEnhanced     DimensionTier = "enhanced"
)

// FoundationalDimensions returns the 4 foundational dimensions in scoring order.
func FoundationalDimensions() []Dimension {
	return []Dimension{DimCompleteness, DimConformity, DimTimeliness, DimCoverage}
}

// EnhancedDimensions returns the 3 enhanced dimensions in scoring order.
func EnhancedDimensions() []Dimension {
	return []Dimension{DimAccuracy, DimUniqueness, DimConsistency}
}

// AllDimensions returns all 7 dimensions, foundational first.
func AllDimensions() []Dimension {
	return append(FoundationalDimensions(), EnhancedDimensions()...)
}

// Tier returns the dimension's tier. Unknown names classify as enhanced so
// they never inflate the dominant foundational blend.
func (d Dimension) Tier() DimensionTier {
	switch d {
	case DimCompleteness, DimConformity, DimTimeliness, DimCoverage:
		return TierFoundational
	default:
		return TierEnhanced
	}
}

// RiskTier is the static risk classification of a KDE.
type RiskTier string

const (
	RiskHigh   RiskTier = "high"
	RiskMedium RiskTier = "medium"
	RiskLow    RiskTier = "low"
)

// Valid reports whether the tier is one of the three known values.
func (t RiskTier) Valid() bool {
	return t == RiskHigh || t == RiskMedium || t == RiskLow
}

// Role identifies a consumer of DQSI output. Unknown roles resolve to
// RoleAnalyst.
type Role string

const (
	RoleAnalyst     Role = "analyst"
	RoleCompliance  Role = "compliance"
	RoleAuditor     Role = "auditor"
	RoleTrader      Role = "trader"
	RoleRiskManager Role = "risk_manager"
)

// FallbackReason enumerates why the fallback strategy was engaged. Each
// reason maps to a conservative confidence-adjustment factor; unrecognized
// reasons resolve to ReasonUnknown.
type FallbackReason string

const (
	ReasonInsufficientData FallbackReason = "insufficient_data"
	ReasonCalculationError FallbackReason = "calculation_error"
	ReasonMissingSources   FallbackReason = "missing_sources"
	ReasonTimeout          FallbackReason = "timeout"
	ReasonSystemDegraded   FallbackReason = "system_degraded"
	ReasonDataCorruption   FallbackReason = "data_corruption"
	ReasonNetworkError     FallbackReason = "network_error"
	ReasonUnknown          FallbackReason = "unknown"
)

// AllFallbackReasons returns every recognized reason.
func AllFallbackReasons() []FallbackReason {
	return []FallbackReason{
		ReasonInsufficientData,
		ReasonCalculationError,
		ReasonMissingSources,
		ReasonTimeout,
		ReasonSystemDegraded,
		ReasonDataCorruption,
		ReasonNetworkError,
		ReasonUnknown,
	}
}

// TrustBucket is the 3-level discrete classification derived from a
// DQSI/confidence score. It is the externally visible contract: every
// strategy must emit one of exactly these labels.
type TrustBucket string

const (
	BucketHigh     TrustBucket = "High"
	BucketModerate TrustBucket = "Moderate"
	BucketLow      TrustBucket = "Low"
)
