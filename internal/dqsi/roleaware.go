package dqsi

import (
	"fmt"
	"sort"
	"time"

	"github.com/hseo/vigil/internal/contracts"
)

// StrategyRoleAware is the strategy label of the role-aware wrapper.
const StrategyRoleAware = "kde_first_role_aware"

// RoleAwareStrategy wraps the KDE-first calculator with consumer-role
// awareness: layered baseline resolution, scope-coverage reporting, and
// role compliance validation. All supplied evidence is still scored — scope
// restriction is metadata, not evidence filtering.
type RoleAwareStrategy struct {
	cfg  *Config
	calc *Calculator
}

// NewRoleAwareStrategy creates the wrapper around an existing calculator.
func NewRoleAwareStrategy(calc *Calculator) *RoleAwareStrategy {
	return &RoleAwareStrategy{cfg: calc.Config(), calc: calc}
}

// CalculateDQScore runs a role-aware assessment. It never propagates a
// failure: any panic resolves to a safe default result carrying the error.
func (s *RoleAwareStrategy) CalculateDQScore(evidence contracts.Evidence, baseline *contracts.Baseline, role Role, alertTime time.Time, deskID string) (result *Result) {
	resolvedRole, profile := s.cfg.RoleProfile(role)

	defer func() {
		if r := recover(); r != nil {
			result = s.safeDefault(resolvedRole, profile, fmt.Sprintf("role-aware calculation failed: %v", r))
		}
	}()

	scoped := baseline.ForScope(string(resolvedRole), deskID)
	result = s.calc.Calculate(evidence, scoped, resolvedRole, alertTime)
	result.Strategy = StrategyRoleAware

	meta := s.roleMetadata(evidence, resolvedRole, profile, deskID)
	result.RoleMetadata = meta
	result.RoleValidation = s.validateRole(profile, meta, result.TrustBucket)
	return result
}

// roleMetadata computes scope coverage and the completeness grading.
func (s *RoleAwareStrategy) roleMetadata(evidence contracts.Evidence, role Role, profile RoleProfile, deskID string) *RoleMetadata {
	scope := make(map[string]bool, len(profile.KDEScope))
	for _, kde := range profile.KDEScope {
		scope[kde] = true
	}

	inScope := 0
	var missing []string
	for _, kde := range profile.KDEScope {
		if evidence.Present(kde) {
			inScope++
		} else {
			missing = append(missing, kde)
		}
	}

	var outOfScope []string
	for _, kde := range evidence.KDENames() {
		if !scope[kde] {
			outOfScope = append(outOfScope, kde)
		}
	}
	sort.Strings(missing)

	scopeCoverage := 0.0
	if len(profile.KDEScope) > 0 {
		scopeCoverage = float64(inScope) / float64(len(profile.KDEScope))
	}

	criticalCoverage := 1.0
	if len(profile.CriticalKDEs) > 0 {
		criticalPresent := 0
		for _, kde := range profile.CriticalKDEs {
			if evidence.Present(kde) {
				criticalPresent++
			}
		}
		criticalCoverage = float64(criticalPresent) / float64(len(profile.CriticalKDEs))
	}

	return &RoleMetadata{
		UserRole:            string(role),
		DeskID:              deskID,
		RoleKDEScope:        profile.KDEScope,
		ScopeCoverage:       round3(scopeCoverage),
		MissingKDEs:         missing,
		OutOfScopeKDEs:      outOfScope,
		PreferredDimensions: profile.PreferredDimensions,
		AssessmentCompleteness: AssessmentCompleteness{
			CriticalKDECoverage: round3(criticalCoverage),
			ScopeCoverage:       round3(scopeCoverage),
			CompletenessLevel:   completenessLevel(criticalCoverage, scopeCoverage, profile.MinKDECoverage),
		},
	}
}

// completenessLevel applies the deterministic grading thresholds.
func completenessLevel(criticalCoverage, scopeCoverage, minCoverage float64) string {
	switch {
	case criticalCoverage >= 1.0 && scopeCoverage >= minCoverage:
		return "complete"
	case criticalCoverage >= 0.8 && scopeCoverage >= 0.6:
		return "adequate"
	case criticalCoverage >= 0.6:
		return "partial"
	default:
		return "insufficient"
	}
}

// validateRole runs the three role compliance checks: minimum scope
// coverage, critical KDE presence, and trust-bucket alignment with the
// role's risk tolerance.
func (s *RoleAwareStrategy) validateRole(profile RoleProfile, meta *RoleMetadata, bucket TrustBucket) *RoleValidation {
	checks := map[string]bool{
		"min_kde_coverage_met":  meta.ScopeCoverage >= profile.MinKDECoverage,
		"critical_kdes_present": meta.AssessmentCompleteness.CriticalKDECoverage >= 1.0,
		"trust_bucket_aligned":  bucketAligned(profile.RiskTolerance, bucket),
	}

	passed := 0
	for _, ok := range checks {
		if ok {
			passed++
		}
	}
	compliant := passed == len(checks)

	return &RoleValidation{
		Compliant:         compliant,
		ComplianceScore:   round3(float64(passed) / float64(len(checks))),
		Checks:            checks,
		RiskTolerance:     profile.RiskTolerance,
		OverallAssessment: overallAssessment(compliant, bucket),
	}
}

// bucketAligned is the risk-tolerance alignment table.
func bucketAligned(tolerance string, bucket TrustBucket) bool {
	switch tolerance {
	case "very_low":
		return bucket == BucketHigh
	case "low":
		return bucket == BucketHigh || bucket == BucketModerate
	default: // moderate, high
		return true
	}
}

// overallAssessment derives the narrative category from compliance and
// trust bucket.
func overallAssessment(compliant bool, bucket TrustBucket) string {
	switch {
	case compliant && bucket == BucketHigh:
		return "Excellent"
	case compliant && bucket == BucketModerate:
		return "Good"
	case compliant:
		return "Acceptable"
	case bucket == BucketHigh || bucket == BucketModerate:
		return "Needs Improvement"
	default:
		return "Insufficient"
	}
}

// safeDefault is the strategy's guaranteed well-formed failure result.
func (s *RoleAwareStrategy) safeDefault(role Role, profile RoleProfile, errMsg string) *Result {
	return &Result{
		DQSIScore:       0.0,
		TrustBucket:     BucketLow,
		Framework:       s.cfg.Framework,
		Strategy:        StrategyRoleAware,
		KDEScores:       map[string]map[Dimension]float64{},
		SyntheticScores: map[string]float64{SyntheticTimeliness: 0, SyntheticCoverage: 0},
		ApplicableKDEs:  []string{},
		Summary:         map[Dimension]DimensionStats{},
		Metadata: QualityMetadata{
			SyntheticKDEs: []string{SyntheticTimeliness, SyntheticCoverage},
			ConfigHash:    s.calc.ConfigHash(),
		},
		RoleMetadata: &RoleMetadata{
			UserRole:     string(role),
			RoleKDEScope: profile.KDEScope,
			MissingKDEs:  profile.KDEScope,
			AssessmentCompleteness: AssessmentCompleteness{
				CompletenessLevel: "insufficient",
			},
		},
		RoleValidation: &RoleValidation{
			Compliant:         false,
			ComplianceScore:   0.0,
			Checks:            map[string]bool{},
			RiskTolerance:     profile.RiskTolerance,
			OverallAssessment: "Insufficient",
		},
		Error: errMsg,
	}
}
