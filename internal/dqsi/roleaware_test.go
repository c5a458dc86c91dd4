package dqsi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hseo/vigil/internal/contracts"
)

func newTestRoleAware(t *testing.T) *RoleAwareStrategy {
	t.Helper()
	return NewRoleAwareStrategy(newTestCalculator(t))
}

// complianceEvidence fills the compliance role's full scope with valid values.
func complianceEvidence() contracts.Evidence {
	return contracts.Evidence{
		"trader_id":    "TRD-001",
		"notional":     1500000.0,
		"price":        101.5,
		"quantity":     100.0,
		"instrument":   "ACME.L",
		"trade_date":   testClock.Add(-30 * time.Minute),
		"side":         "buy",
		"counterparty": "BANK-A",
	}
}

func TestRoleAware_FullScopeCompliance(t *testing.T) {
	strategy := newTestRoleAware(t)

	baseline := &contracts.Baseline{
		ExpectedKDEs: Default().Roles[RoleCompliance].KDEScope,
	}

	res := strategy.CalculateDQScore(complianceEvidence(), baseline, RoleCompliance, testClock, "")

	require.NotNil(t, res.RoleMetadata)
	require.NotNil(t, res.RoleValidation)

	assert.Equal(t, StrategyRoleAware, res.Strategy)
	assert.Equal(t, 1.0, res.RoleMetadata.ScopeCoverage)
	assert.Empty(t, res.RoleMetadata.MissingKDEs)
	assert.Empty(t, res.RoleMetadata.OutOfScopeKDEs)

	ac := res.RoleMetadata.AssessmentCompleteness
	assert.Equal(t, 1.0, ac.CriticalKDECoverage)
	assert.Equal(t, "complete", ac.CompletenessLevel)

	assert.True(t, res.RoleValidation.Compliant)
	assert.Equal(t, 1.0, res.RoleValidation.ComplianceScore)
	assert.Contains(t, []TrustBucket{BucketHigh, BucketModerate}, res.TrustBucket)
}

func TestRoleAware_ScopeReporting(t *testing.T) {
	strategy := newTestRoleAware(t)

	// Trader scope is instrument/price/quantity/side; venue is out of scope.
	evidence := contracts.Evidence{
		"instrument": "ACME.L",
		"price":      101.5,
		"venue":      "XLON",
	}

	res := strategy.CalculateDQScore(evidence, nil, RoleTrader, testClock, "")

	require.NotNil(t, res.RoleMetadata)
	assert.Equal(t, 0.5, res.RoleMetadata.ScopeCoverage)
	assert.ElementsMatch(t, []string{"quantity", "side"}, res.RoleMetadata.MissingKDEs)
	assert.Equal(t, []string{"venue"}, res.RoleMetadata.OutOfScopeKDEs)

	// Out-of-scope evidence is still scored, not dropped.
	assert.Contains(t, res.KDEScores, "venue")
}

func TestRoleAware_NilScopeValueCountsAsMissing(t *testing.T) {
	strategy := newTestRoleAware(t)

	// A scope KDE supplied without a usable value carries no information,
	// so scope coverage treats it like an absent key.
	evidence := contracts.Evidence{
		"instrument": "ACME.L",
		"price":      101.5,
		"quantity":   nil,
		"side":       "   ",
	}

	res := strategy.CalculateDQScore(evidence, nil, RoleTrader, testClock, "")

	require.NotNil(t, res.RoleMetadata)
	assert.Equal(t, 0.5, res.RoleMetadata.ScopeCoverage)
	assert.ElementsMatch(t, []string{"quantity", "side"}, res.RoleMetadata.MissingKDEs)
}

func TestRoleAware_UnknownRoleDefaultsToAnalyst(t *testing.T) {
	strategy := newTestRoleAware(t)

	res := strategy.CalculateDQScore(validEvidence(), nil, Role("intern"), testClock, "")

	require.NotNil(t, res.RoleMetadata)
	assert.Equal(t, "analyst", res.RoleMetadata.UserRole)
	assert.Equal(t, Default().Roles[RoleAnalyst].KDEScope, res.RoleMetadata.RoleKDEScope)
}

func TestRoleAware_CompletenessLevels(t *testing.T) {
	tests := []struct {
		name        string
		critical    float64
		scope       float64
		minCoverage float64
		want        string
	}{
		{"complete", 1.0, 0.8, 0.8, "complete"},
		{"adequate on critical gap", 0.8, 0.9, 0.8, "adequate"},
		{"adequate on scope gap", 1.0, 0.6, 0.8, "adequate"},
		{"partial", 0.6, 0.5, 0.8, "partial"},
		{"insufficient", 0.5, 0.9, 0.8, "insufficient"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, completenessLevel(tt.critical, tt.scope, tt.minCoverage))
		})
	}
}

func TestRoleAware_MissingCriticalFailsValidation(t *testing.T) {
	strategy := newTestRoleAware(t)

	// Compliance criticals are trader_id, notional, trade_date; drop notional.
	evidence := complianceEvidence()
	delete(evidence, "notional")

	res := strategy.CalculateDQScore(evidence, nil, RoleCompliance, testClock, "")

	require.NotNil(t, res.RoleValidation)
	assert.False(t, res.RoleValidation.Checks["critical_kdes_present"])
	assert.False(t, res.RoleValidation.Compliant)
	assert.Less(t, res.RoleValidation.ComplianceScore, 1.0)
}

func TestRoleAware_DeskBaselineWinsOverRole(t *testing.T) {
	strategy := newTestRoleAware(t)

	deskBaseline := &contracts.Baseline{ExpectedKDEs: []string{"price"}}
	roleBaseline := &contracts.Baseline{ExpectedKDEs: []string{"price", "quantity", "venue", "side"}}
	baseline := &contracts.Baseline{
		ByDesk: map[string]*contracts.Baseline{"EQ-1": deskBaseline},
		ByRole: map[string]*contracts.Baseline{"trader": roleBaseline},
	}

	evidence := contracts.Evidence{"price": 101.5}

	withDesk := strategy.CalculateDQScore(evidence, baseline, RoleTrader, testClock, "EQ-1")
	withoutDesk := strategy.CalculateDQScore(evidence, baseline, RoleTrader, testClock, "")

	// Desk baseline expects only price: full synthetic coverage. The role
	// baseline expects four KDEs: quarter coverage.
	assert.Equal(t, 1.0, withDesk.SyntheticScores[SyntheticCoverage])
	assert.Equal(t, 0.25, withoutDesk.SyntheticScores[SyntheticCoverage])
}

func TestBucketAligned(t *testing.T) {
	tests := []struct {
		tolerance string
		bucket    TrustBucket
		want      bool
	}{
		{"very_low", BucketHigh, true},
		{"very_low", BucketModerate, false},
		{"very_low", BucketLow, false},
		{"low", BucketHigh, true},
		{"low", BucketModerate, true},
		{"low", BucketLow, false},
		{"moderate", BucketLow, true},
		{"high", BucketLow, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, bucketAligned(tt.tolerance, tt.bucket), "%s/%s", tt.tolerance, tt.bucket)
	}
}

func TestOverallAssessment(t *testing.T) {
	assert.Equal(t, "Excellent", overallAssessment(true, BucketHigh))
	assert.Equal(t, "Good", overallAssessment(true, BucketModerate))
	assert.Equal(t, "Acceptable", overallAssessment(true, BucketLow))
	assert.Equal(t, "Needs Improvement", overallAssessment(false, BucketModerate))
	assert.Equal(t, "Needs Improvement", overallAssessment(false, BucketHigh))
	assert.Equal(t, "Insufficient", overallAssessment(false, BucketLow))
}
