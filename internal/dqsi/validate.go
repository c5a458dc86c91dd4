package dqsi

import (
	"fmt"
	"math"
	"regexp"
)

// ValidationError is a configuration constraint violation. Scoring never
// starts with an invalid configuration.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning is a non-fatal configuration finding.
type Warning struct {
	Code    string
	Message string
}

// Validate checks every constraint the scoring core assumes. It runs once
// at load time; the calculator does not re-validate per call.
func Validate(cfg *Config) error {
	if cfg.Framework == "" {
		return ValidationError{"framework", "required"}
	}

	// Dimension partition: exactly 7 dimensions, 4 foundational + 3 enhanced.
	if len(AllDimensions()) != 7 {
		return ValidationError{"dimensions", "must be exactly 7"}
	}
	foundational, enhanced := 0, 0
	for _, d := range AllDimensions() {
		switch d.Tier() {
		case TierFoundational:
			foundational++
		case TierEnhanced:
			enhanced++
		}
	}
	if foundational != 4 || enhanced != 3 {
		return ValidationError{"dimensions", fmt.Sprintf("partition must be 4+3, got %d+%d", foundational, enhanced)}
	}

	// Trust bucket boundaries: 0 < moderate < high <= 1.
	b := cfg.TrustBuckets
	if b.Moderate <= 0 || b.High <= b.Moderate || b.High > 1 {
		return ValidationError{"trust_buckets", fmt.Sprintf("need 0 < moderate < high <= 1, got moderate=%.3f high=%.3f", b.Moderate, b.High)}
	}

	// Risk weights are multipliers, strictly positive.
	if cfg.RiskWeights.High <= 0 || cfg.RiskWeights.Medium <= 0 || cfg.RiskWeights.Low <= 0 {
		return ValidationError{"risk_weights", "all tiers must be > 0"}
	}

	// Tier weights blend to 1.
	sum := cfg.TierWeights.Foundational + cfg.TierWeights.Enhanced
	if cfg.TierWeights.Foundational <= 0 || cfg.TierWeights.Enhanced < 0 {
		return ValidationError{"tier_weights", "foundational must be > 0 and enhanced >= 0"}
	}
	if math.Abs(sum-1.0) > 1e-6 {
		return ValidationError{"tier_weights", fmt.Sprintf("must sum to 1.0, got %.6f", sum)}
	}

	if cfg.SyntheticKDEWeight <= 0 {
		return ValidationError{"synthetic_kde_weight", "must be > 0"}
	}
	if cfg.NeutralScore < 0 || cfg.NeutralScore > 1 {
		return ValidationError{"neutral_score", "must be in [0, 1]"}
	}
	if cfg.EnhancedDefault < 0 || cfg.EnhancedDefault > 1 {
		return ValidationError{"enhanced_default", "must be in [0, 1]"}
	}

	// KDE profiles.
	for name, p := range cfg.KDEs {
		if !p.Risk.Valid() {
			return ValidationError{fmt.Sprintf("kdes.%s.risk", name), fmt.Sprintf("unknown risk tier %q", p.Risk)}
		}
		if p.Conformity != nil {
			if err := validateConformityRule(p.Conformity); err != nil {
				return ValidationError{fmt.Sprintf("kdes.%s.conformity", name), err.Error()}
			}
		}
	}

	// Role profiles. The analyst profile is the default-role anchor and is
	// required.
	if _, ok := cfg.Roles[RoleAnalyst]; !ok {
		return ValidationError{"roles", "analyst profile is required (default role)"}
	}
	for role, p := range cfg.Roles {
		field := fmt.Sprintf("roles.%s", role)
		if len(p.KDEScope) == 0 {
			return ValidationError{field + ".kde_scope", "must not be empty"}
		}
		if p.MinKDECoverage < 0 || p.MinKDECoverage > 1 {
			return ValidationError{field + ".min_kde_coverage", "must be in [0, 1]"}
		}
		switch p.RiskTolerance {
		case "very_low", "low", "moderate", "high":
		default:
			return ValidationError{field + ".risk_tolerance", fmt.Sprintf("unknown tolerance %q", p.RiskTolerance)}
		}
		scope := make(map[string]bool, len(p.KDEScope))
		for _, kde := range p.KDEScope {
			scope[kde] = true
		}
		for _, kde := range p.CriticalKDEs {
			if !scope[kde] {
				return ValidationError{field + ".critical_kdes", fmt.Sprintf("%q not in kde_scope", kde)}
			}
		}
	}

	// Fallback factors: every recognized reason needs an explicit factor in
	// (0, 1] so a degraded score can never exceed its base confidence.
	for _, reason := range AllFallbackReasons() {
		factor, ok := cfg.FallbackFactors[reason]
		if !ok {
			return ValidationError{"fallback_factors", fmt.Sprintf("missing factor for %q", reason)}
		}
		if factor <= 0 || factor > 1 {
			return ValidationError{fmt.Sprintf("fallback_factors.%s", reason), "must be in (0, 1]"}
		}
	}

	return nil
}

func validateConformityRule(r *ConformityRule) error {
	switch r.Type {
	case "string", "numeric", "timestamp", "enum":
	default:
		return fmt.Errorf("unknown type %q", r.Type)
	}
	if r.Pattern != "" {
		if _, err := regexp.Compile(r.Pattern); err != nil {
			return fmt.Errorf("invalid pattern: %v", err)
		}
	}
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		return fmt.Errorf("min %.4f > max %.4f", *r.Min, *r.Max)
	}
	if r.Type == "enum" && len(r.Enum) == 0 {
		return fmt.Errorf("enum type requires enum values")
	}
	if r.MaxLength < 0 {
		return fmt.Errorf("max_length must be >= 0")
	}
	return nil
}

// Warn checks recommended constraints. Violations are reported but do not
// stop the process.
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	if cfg.TierWeights.Enhanced > cfg.TierWeights.Foundational {
		warnings = append(warnings, Warning{
			Code:    "ENHANCED_DOMINANT",
			Message: "enhanced tier weight exceeds foundational; enhanced dimensions often run on neutral defaults",
		})
	}

	if cfg.TrustBuckets.High-cfg.TrustBuckets.Moderate < 0.05 {
		warnings = append(warnings, Warning{
			Code:    "NARROW_MODERATE_BAND",
			Message: "moderate bucket narrower than 0.05; most scores will land in High or Low",
		})
	}

	for role, p := range cfg.Roles {
		if len(p.CriticalKDEs) == 0 {
			warnings = append(warnings, Warning{
				Code:    "NO_CRITICAL_KDES",
				Message: fmt.Sprintf("role %s has no critical KDEs; critical coverage always passes", role),
			})
		}
	}

	flat := true
	var first float64
	for i, reason := range AllFallbackReasons() {
		f := cfg.FallbackFactors[reason]
		if i == 0 {
			first = f
		} else if math.Abs(f-first) > 1e-9 {
			flat = false
			break
		}
	}
	if flat {
		warnings = append(warnings, Warning{
			Code:    "FLAT_FALLBACK_FACTORS",
			Message: "all fallback factors are identical; degradation severity is indistinguishable",
		})
	}

	return warnings
}
