package dqsi

// Config holds every scoring table the DQSI engine reads: trust-bucket
// thresholds, risk/tier weights, per-KDE profiles, role profiles, and the
// fallback adjustment factors. It is built once at startup (defaults merged
// with YAML overrides), validated, and never mutated afterwards — the
// scoring core assumes its invariants hold and does not re-validate per
// call.
type Config struct {
	Framework string `yaml:"framework" json:"framework"`

	TrustBuckets       BucketThresholds      `yaml:"trust_buckets" json:"trust_buckets"`
	RiskWeights        RiskWeights           `yaml:"risk_weights" json:"risk_weights"`
	TierWeights        TierWeights           `yaml:"tier_weights" json:"tier_weights"`
	SyntheticKDEWeight float64               `yaml:"synthetic_kde_weight" json:"synthetic_kde_weight"`
	NeutralScore       float64               `yaml:"neutral_score" json:"neutral_score"`
	EnhancedDefault    float64               `yaml:"enhanced_default" json:"enhanced_default"`

	KDEs            map[string]KDEProfile      `yaml:"kdes" json:"kdes"`
	Roles           map[Role]RoleProfile       `yaml:"roles" json:"roles"`
	FallbackFactors map[FallbackReason]float64 `yaml:"fallback_factors" json:"fallback_factors"`
}

// BucketThresholds are the closed-open trust bucket boundaries:
// score >= High -> "High", score >= Moderate -> "Moderate", else "Low".
type BucketThresholds struct {
	High     float64 `yaml:"high" json:"high"`
	Moderate float64 `yaml:"moderate" json:"moderate"`
}

// RiskWeights are the per-risk-tier multipliers. They are multipliers, not
// shares, so they need not sum to 1.
type RiskWeights struct {
	High   float64 `yaml:"high" json:"high"`
	Medium float64 `yaml:"medium" json:"medium"`
	Low    float64 `yaml:"low" json:"low"`
}

// For returns the weight for a risk tier. Unknown tiers weigh as medium.
func (w RiskWeights) For(t RiskTier) float64 {
	switch t {
	case RiskHigh:
		return w.High
	case RiskLow:
		return w.Low
	default:
		return w.Medium
	}
}

// TierWeights blend foundational and enhanced dimension contributions.
// They must sum to 1.
type TierWeights struct {
	Foundational float64 `yaml:"foundational" json:"foundational"`
	Enhanced     float64 `yaml:"enhanced" json:"enhanced"`
}

// For returns the weight for a dimension tier.
func (w TierWeights) For(t DimensionTier) float64 {
	if t == TierEnhanced {
		return w.Enhanced
	}
	return w.Foundational
}

// KDEProfile is the static per-KDE scoring configuration.
type KDEProfile struct {
	Risk RiskTier `yaml:"risk" json:"risk"`

	// Enhanced marks the KDE eligible for accuracy/uniqueness/consistency
	// scoring on top of the 4 foundational dimensions.
	Enhanced bool `yaml:"enhanced" json:"enhanced"`

	// Timestamp marks the KDE value as a timestamp, enabling per-KDE
	// freshness scoring on the timeliness dimension.
	Timestamp bool `yaml:"timestamp" json:"timestamp"`

	Conformity *ConformityRule `yaml:"conformity,omitempty" json:"conformity,omitempty"`
}

// ConformityRule describes the expected format of a KDE value. Each
// configured sub-check contributes to the satisfied-rule fraction that the
// conformity bands grade.
type ConformityRule struct {
	Type      string   `yaml:"type" json:"type"` // string, numeric, timestamp, enum
	Pattern   string   `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	Min       *float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max       *float64 `yaml:"max,omitempty" json:"max,omitempty"`
	Enum      []string `yaml:"enum,omitempty" json:"enum,omitempty"`
	MaxLength int      `yaml:"max_length,omitempty" json:"max_length,omitempty"`
}

// RoleProfile is the static per-role scope configuration.
type RoleProfile struct {
	KDEScope            []string    `yaml:"kde_scope" json:"kde_scope"`
	MinKDECoverage      float64     `yaml:"min_kde_coverage" json:"min_kde_coverage"`
	CriticalKDEs        []string    `yaml:"critical_kdes" json:"critical_kdes"`
	RiskTolerance       string      `yaml:"risk_tolerance" json:"risk_tolerance"` // very_low, low, moderate, high
	PreferredDimensions []Dimension `yaml:"preferred_dimensions" json:"preferred_dimensions"`
}

// KDEProfile returns the profile for a KDE name. KDEs absent from
// configuration default to medium risk with foundational scoring only.
func (c *Config) KDEProfile(name string) KDEProfile {
	if p, ok := c.KDEs[name]; ok {
		if !p.Risk.Valid() {
			p.Risk = RiskMedium
		}
		return p
	}
	return KDEProfile{Risk: RiskMedium}
}

// RoleProfile resolves a role, falling back to the analyst profile for
// unknown roles.
func (c *Config) RoleProfile(role Role) (Role, RoleProfile) {
	if p, ok := c.Roles[role]; ok {
		return role, p
	}
	return RoleAnalyst, c.Roles[RoleAnalyst]
}

// FallbackFactor returns the confidence-adjustment factor for a reason.
// Unrecognized reasons resolve to the unknown factor.
func (c *Config) FallbackFactor(reason FallbackReason) (FallbackReason, float64) {
	if f, ok := c.FallbackFactors[reason]; ok {
		return reason, f
	}
	return ReasonUnknown, c.FallbackFactors[ReasonUnknown]
}

// ClassifyTrustBucket maps a confidence/DQSI score onto the three trust
// buckets. This is the single source of truth used by every strategy; no
// strategy implements its own bucket logic.
func (c *Config) ClassifyTrustBucket(score float64) TrustBucket {
	switch {
	case score >= c.TrustBuckets.High:
		return BucketHigh
	case score >= c.TrustBuckets.Moderate:
		return BucketModerate
	default:
		return BucketLow
	}
}

// Default returns the built-in scoring tables. YAML overrides are merged on
// top of this value by Load; the result is treated as immutable.
func Default() *Config {
	f := func(v float64) *float64 { return &v }

	return &Config{
		Framework: "dqsi_kde_first_v1",

		TrustBuckets:       BucketThresholds{High: 0.85, Moderate: 0.65},
		RiskWeights:        RiskWeights{High: 3.0, Medium: 2.0, Low: 1.0},
		TierWeights:        TierWeights{Foundational: 0.8, Enhanced: 0.2},
		SyntheticKDEWeight: 2.0,
		NeutralScore:       0.5,
		EnhancedDefault:    0.5,

		KDEs: map[string]KDEProfile{
			"trader_id": {
				Risk:     RiskHigh,
				Enhanced: true,
				Conformity: &ConformityRule{
					Type:      "string",
					Pattern:   `^[A-Za-z0-9_-]{3,32}$`,
					MaxLength: 32,
				},
			},
			"notional": {
				Risk:     RiskHigh,
				Enhanced: true,
				Conformity: &ConformityRule{
					Type: "numeric",
					Min:  f(0),
				},
			},
			"price": {
				Risk: RiskHigh,
				Conformity: &ConformityRule{
					Type: "numeric",
					Min:  f(0),
				},
			},
			"quantity": {
				Risk: RiskMedium,
				Conformity: &ConformityRule{
					Type: "numeric",
					Min:  f(0),
				},
			},
			"instrument": {
				Risk:     RiskMedium,
				Enhanced: true,
				Conformity: &ConformityRule{
					Type:      "string",
					Pattern:   `^[A-Z0-9.]{1,12}$`,
					MaxLength: 12,
				},
			},
			"trade_date": {
				Risk:      RiskMedium,
				Timestamp: true,
				Conformity: &ConformityRule{
					Type: "timestamp",
				},
			},
			"side": {
				Risk: RiskLow,
				Conformity: &ConformityRule{
					Type: "enum",
					Enum: []string{"buy", "sell"},
				},
			},
			"venue": {
				Risk: RiskLow,
				Conformity: &ConformityRule{
					Type:      "string",
					MaxLength: 16,
				},
			},
			"counterparty": {
				Risk:     RiskMedium,
				Enhanced: true,
				Conformity: &ConformityRule{
					Type:      "string",
					MaxLength: 64,
				},
			},
			"desk_id": {
				Risk: RiskLow,
				Conformity: &ConformityRule{
					Type:      "string",
					MaxLength: 16,
				},
			},
		},

		Roles: map[Role]RoleProfile{
			RoleAnalyst: {
				KDEScope:            []string{"trader_id", "notional", "price", "quantity", "instrument", "trade_date"},
				MinKDECoverage:      0.7,
				CriticalKDEs:        []string{"trader_id", "notional"},
				RiskTolerance:       "moderate",
				PreferredDimensions: []Dimension{DimCompleteness, DimConformity, DimTimeliness},
			},
			RoleCompliance: {
				KDEScope:            []string{"trader_id", "notional", "price", "quantity", "instrument", "trade_date", "side", "counterparty"},
				MinKDECoverage:      0.8,
				CriticalKDEs:        []string{"trader_id", "notional", "trade_date"},
				RiskTolerance:       "low",
				PreferredDimensions: []Dimension{DimCompleteness, DimConformity, DimAccuracy, DimConsistency},
			},
			RoleAuditor: {
				KDEScope:            []string{"trader_id", "notional", "price", "quantity", "instrument", "trade_date", "side", "venue", "counterparty", "desk_id"},
				MinKDECoverage:      0.9,
				CriticalKDEs:        []string{"trader_id", "notional", "trade_date", "counterparty"},
				RiskTolerance:       "very_low",
				PreferredDimensions: AllDimensions(),
			},
			RoleTrader: {
				KDEScope:            []string{"instrument", "price", "quantity", "side"},
				MinKDECoverage:      0.5,
				CriticalKDEs:        []string{"instrument"},
				RiskTolerance:       "high",
				PreferredDimensions: []Dimension{DimCompleteness, DimTimeliness},
			},
			RoleRiskManager: {
				KDEScope:            []string{"trader_id", "notional", "price", "instrument", "trade_date", "desk_id"},
				MinKDECoverage:      0.75,
				CriticalKDEs:        []string{"notional", "instrument"},
				RiskTolerance:       "low",
				PreferredDimensions: []Dimension{DimCompleteness, DimCoverage, DimConsistency},
			},
		},

		FallbackFactors: map[FallbackReason]float64{
			ReasonTimeout:          0.85,
			ReasonMissingSources:   0.80,
			ReasonNetworkError:     0.75,
			ReasonInsufficientData: 0.70,
			ReasonUnknown:          0.70,
			ReasonSystemDegraded:   0.65,
			ReasonCalculationError: 0.65,
			ReasonDataCorruption:   0.60,
		},
	}
}
