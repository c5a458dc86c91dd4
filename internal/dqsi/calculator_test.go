package dqsi

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hseo/vigil/internal/contracts"
)

func newTestCalculator(t *testing.T) *Calculator {
	t.Helper()
	cfg := Default()
	require.NoError(t, Validate(cfg))
	return NewCalculator(cfg).WithClock(func() time.Time { return testClock })
}

func validEvidence() contracts.Evidence {
	return contracts.Evidence{
		"trader_id":  "TRD-001",
		"notional":   1500000.0,
		"price":      101.5,
		"quantity":   100.0,
		"instrument": "ACME.L",
		"trade_date": testClock.Add(-30 * time.Minute),
		"side":       "buy",
	}
}

func TestCalculator_EmptyEvidence(t *testing.T) {
	calc := newTestCalculator(t)

	res := calc.Calculate(contracts.Evidence{}, nil, RoleAnalyst, time.Time{})

	// Synthetic KDEs still contribute, so total weights are non-zero and
	// the neutral synthetic scores decide the outcome.
	assert.Greater(t, res.Breakdown.TotalWeights, 0.0)
	assert.Equal(t, StrategyKDEFirst, res.Strategy)
	assert.Equal(t, BucketLow, res.TrustBucket)
	assert.Empty(t, res.ApplicableKDEs)
	assert.Equal(t, 0, res.Metadata.KDEsAssessed)
	assert.Contains(t, res.SyntheticScores, SyntheticTimeliness)
	assert.Contains(t, res.SyntheticScores, SyntheticCoverage)
}

func TestCalculator_RangeInvariant(t *testing.T) {
	calc := newTestCalculator(t)

	evidences := []contracts.Evidence{
		{},
		validEvidence(),
		{"trader_id": nil, "side": "hold", "trade_date": "garbage"},
		{"mystery": map[string]int{"odd": 1}, "x": math.Inf(1)},
	}

	for _, ev := range evidences {
		res := calc.Calculate(ev, nil, RoleAnalyst, testClock)
		assert.GreaterOrEqual(t, res.DQSIScore, 0.0)
		assert.LessOrEqual(t, res.DQSIScore, 1.0)
		for kde, vector := range res.KDEScores {
			for dim, score := range vector {
				assert.GreaterOrEqual(t, score, 0.0, "kde=%s dim=%s", kde, dim)
				assert.LessOrEqual(t, score, 1.0, "kde=%s dim=%s", kde, dim)
			}
		}
	}
}

func TestCalculator_WeightComposition(t *testing.T) {
	calc := newTestCalculator(t)

	res := calc.Calculate(validEvidence(), nil, RoleAnalyst, testClock)

	b := res.Breakdown
	require.Greater(t, b.TotalWeights, 0.0)

	ratio := b.TotalWeightedScore / b.TotalWeights
	assert.InDelta(t, res.DQSIScore, ratio, 0.0005, "dqsi_score must equal the rounded weight ratio")
	assert.InDelta(t, 100.0, b.FoundationalContributionPct+b.EnhancedContributionPct, 0.01)

	// Subtotals recompose the total.
	assert.InDelta(t, b.TotalWeightedScore, b.FoundationalWeightedScore+b.EnhancedWeightedScore, 1e-9)
}

func TestCalculator_Idempotence(t *testing.T) {
	calc := newTestCalculator(t)
	baseline := &contracts.Baseline{
		ExpectedKDEs: []string{"trader_id", "notional", "price"},
	}

	first := calc.Calculate(validEvidence(), baseline, RoleAnalyst, testClock)
	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)

	// Byte-identical output on every repeat, including the unrounded
	// breakdown floats.
	for i := 0; i < 5; i++ {
		repeat := calc.Calculate(validEvidence(), baseline, RoleAnalyst, testClock)
		repeatJSON, err := json.Marshal(repeat)
		require.NoError(t, err)
		assert.Equal(t, string(firstJSON), string(repeatJSON), "run %d", i)
		assert.Equal(t, first.Breakdown, repeat.Breakdown, "run %d", i)
	}
}

func TestCalculator_HighRiskMissingHurtsMore(t *testing.T) {
	calc := newTestCalculator(t)

	// Identical shapes, one missing a high-risk KDE, the other a low-risk
	// one. The high-risk gap must pull the score down further.
	missingHigh := contracts.Evidence{
		"trader_id": nil, // high risk
		"side":      "buy",
		"price":     101.5,
	}
	missingLow := contracts.Evidence{
		"trader_id": "TRD-001",
		"side":      nil, // low risk
		"price":     101.5,
	}

	resHigh := calc.Calculate(missingHigh, nil, RoleAnalyst, testClock)
	resLow := calc.Calculate(missingLow, nil, RoleAnalyst, testClock)

	assert.Less(t, resHigh.DQSIScore, resLow.DQSIScore)

	// The missing high-risk KDE scores zero completeness.
	assert.Equal(t, 0.0, resHigh.KDEScores["trader_id"][DimCompleteness])
	assert.Contains(t, resHigh.Metadata.MissingValueKDEs, "trader_id")
}

func TestCalculator_EnhancedDimensionsOnlyWhenEligible(t *testing.T) {
	calc := newTestCalculator(t)

	res := calc.Calculate(validEvidence(), nil, RoleAnalyst, testClock)

	// trader_id is enhanced-eligible: all 7 dimensions.
	require.Contains(t, res.KDEScores, "trader_id")
	assert.Len(t, res.KDEScores["trader_id"], 7)

	// price is foundational-only: 4 dimensions.
	require.Contains(t, res.KDEScores, "price")
	assert.Len(t, res.KDEScores["price"], 4)
	assert.NotContains(t, res.KDEScores["price"], DimAccuracy)
}

func TestCalculator_BaselineLiftsScore(t *testing.T) {
	calc := newTestCalculator(t)
	ev := validEvidence()

	bare := calc.Calculate(ev, nil, RoleAnalyst, testClock)

	baseline := &contracts.Baseline{
		ExpectedKDEs:    ev.KDENames(),
		ExpectedVolumes: map[string]float64{"price": 10, "notional": 10},
		ActualVolumes:   map[string]float64{"price": 10, "notional": 10},
		Reference:       map[string]interface{}{"notional": 1500000.0},
		ConsistencyRates: map[string]float64{
			"trader_id": 1.0,
			"notional":  1.0,
		},
		DuplicateRates: map[string]float64{"trader_id": 0.0},
	}
	enriched := calc.Calculate(ev, baseline, RoleAnalyst, testClock)

	// Full-coverage baseline and perfect reference data can only help.
	assert.Greater(t, enriched.DQSIScore, bare.DQSIScore)
}

func TestCalculator_DimensionSummary(t *testing.T) {
	calc := newTestCalculator(t)

	res := calc.Calculate(validEvidence(), nil, RoleAnalyst, testClock)

	require.Contains(t, res.Summary, DimCompleteness)
	stats := res.Summary[DimCompleteness]
	assert.Equal(t, 7, stats.Count)
	assert.Equal(t, 1.0, stats.Average)
	assert.Equal(t, 1.0, stats.Min)
	assert.Equal(t, 1.0, stats.Max)

	require.Contains(t, res.Summary, DimAccuracy)
	assert.Equal(t, Default().EnhancedDefault, res.Summary[DimAccuracy].Average)
}

func TestCalculator_RoundingInvariant(t *testing.T) {
	calc := newTestCalculator(t)

	res := calc.Calculate(validEvidence(), nil, RoleAnalyst, testClock)

	assertRounded := func(v float64, label string) {
		assert.InDelta(t, v, math.Round(v*1000)/1000, 1e-12, "%s not rounded to 3dp", label)
	}

	assertRounded(res.DQSIScore, "dqsi_score")
	assertRounded(res.Metadata.FoundationalScore, "foundational_score")
	assertRounded(res.Metadata.EnhancedScore, "enhanced_score")
	for name, s := range res.SyntheticScores {
		assertRounded(s, "synthetic "+name)
	}
	for kde, vector := range res.KDEScores {
		for dim, s := range vector {
			assertRounded(s, string(dim)+" of "+kde)
		}
	}
}

func TestCalculator_ConfigHashStable(t *testing.T) {
	cfg := Default()
	h1, err := Hash(cfg)
	require.NoError(t, err)
	h2, err := Hash(cfg)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	cfg.RiskWeights.High = 4.0
	h3, err := Hash(cfg)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}
