package dqsi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hseo/vigil/internal/contracts"
)

var testClock = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func testContext() ScoringContext {
	return ScoringContext{Now: testClock}
}

func TestDimensionScorer_Completeness(t *testing.T) {
	scorer := NewDimensionScorer(Default())

	tests := []struct {
		name  string
		value interface{}
		want  float64
	}{
		{"present string", "TRD-001", 1.0},
		{"present number", 42.5, 1.0},
		{"present zero", 0.0, 1.0},
		{"nil", nil, 0.0},
		{"empty string", "", 0.0},
		{"whitespace string", "   ", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scorer.Score("trader_id", tt.value, DimCompleteness, testContext())
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDimensionScorer_Conformity(t *testing.T) {
	scorer := NewDimensionScorer(Default())

	tests := []struct {
		name  string
		kde   string
		value interface{}
		want  float64
	}{
		{"valid trader id", "trader_id", "TRD-001", 1.0},
		{"trader id fails pattern only", "trader_id", "trd 001!", 0.6},
		{"valid notional", "notional", 1500000.0, 1.0},
		{"negative notional fails range", "notional", -5.0, 0.3},
		{"non-numeric notional", "notional", "abc", 0.3},
		{"valid enum side", "side", "buy", 1.0},
		{"invalid enum side", "side", "hold", 0.3},
		{"valid timestamp", "trade_date", "2026-03-15T10:00:00Z", 1.0},
		{"garbage timestamp", "trade_date", "not-a-date", 0.3},
		{"absent value", "trader_id", nil, 0.0},
		{"unconfigured kde conforms when present", "mystery_field", "anything", 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scorer.Score(tt.kde, tt.value, DimConformity, testContext())
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConformityBand(t *testing.T) {
	tests := []struct {
		fraction float64
		want     float64
	}{
		{1.0, 1.0},
		{0.95, 1.0},
		{0.90, 0.9},
		{0.85, 0.9},
		{0.80, 0.8},
		{0.75, 0.8},
		{0.70, 0.6},
		{0.60, 0.6},
		{0.50, 0.3},
		{0.0, 0.3},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, conformityBand(tt.fraction), "fraction %.2f", tt.fraction)
	}
}

func TestDimensionScorer_Timeliness(t *testing.T) {
	scorer := NewDimensionScorer(Default())
	sc := testContext()

	tests := []struct {
		name  string
		value interface{}
		want  float64
	}{
		{"within the hour", testClock.Add(-30 * time.Minute), 1.0},
		{"same day", testClock.Add(-10 * time.Hour), 0.8},
		{"within a week", testClock.Add(-3 * 24 * time.Hour), 0.6},
		{"stale", testClock.Add(-30 * 24 * time.Hour), 0.3},
		{"future timestamp counts as fresh", testClock.Add(10 * time.Minute), 1.0},
		{"unparseable timestamp", "yesterday-ish", 0.0},
		{"nil timestamp", nil, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scorer.Score("trade_date", tt.value, DimTimeliness, sc)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDimensionScorer_TimelinessNonTimestampKDE(t *testing.T) {
	cfg := Default()
	scorer := NewDimensionScorer(cfg)

	// A non-timestamp KDE has no freshness semantics; neutral credit.
	got := scorer.Score("quantity", 100.0, DimTimeliness, testContext())
	assert.Equal(t, cfg.NeutralScore, got)

	// But a parseable timestamp value is graded even on an unmarked KDE.
	got = scorer.Score("quantity", testClock.Add(-30*time.Minute), DimTimeliness, testContext())
	assert.Equal(t, 1.0, got)
}

func TestDimensionScorer_TimelinessUsesAlertTime(t *testing.T) {
	scorer := NewDimensionScorer(Default())
	sc := testContext()
	sc.AlertTime = testClock.Add(-48 * time.Hour)

	// 30 minutes before the alert: fresh relative to the alert even though
	// it is two days old on the wall clock.
	got := scorer.Score("trade_date", sc.AlertTime.Add(-30*time.Minute), DimTimeliness, sc)
	assert.Equal(t, 1.0, got)
}

func TestDimensionScorer_Coverage(t *testing.T) {
	cfg := Default()
	scorer := NewDimensionScorer(cfg)

	t.Run("no baseline scores neutral", func(t *testing.T) {
		got := scorer.Score("price", 100.0, DimCoverage, testContext())
		assert.Equal(t, cfg.NeutralScore, got)
	})

	t.Run("volume ratio clipped to 1", func(t *testing.T) {
		sc := testContext()
		sc.Baseline = &contracts.Baseline{
			ExpectedVolumes: map[string]float64{"price": 100},
			ActualVolumes:   map[string]float64{"price": 250},
		}
		got := scorer.Score("price", 100.0, DimCoverage, sc)
		assert.Equal(t, 1.0, got)
	})

	t.Run("partial volume", func(t *testing.T) {
		sc := testContext()
		sc.Baseline = &contracts.Baseline{
			ExpectedVolumes: map[string]float64{"price": 100},
			ActualVolumes:   map[string]float64{"price": 40},
		}
		got := scorer.Score("price", 100.0, DimCoverage, sc)
		assert.InDelta(t, 0.4, got, 1e-9)
	})

	t.Run("present instance without reported volume", func(t *testing.T) {
		sc := testContext()
		sc.Baseline = &contracts.Baseline{
			ExpectedVolumes: map[string]float64{"price": 4},
		}
		got := scorer.Score("price", 100.0, DimCoverage, sc)
		assert.InDelta(t, 0.25, got, 1e-9)
	})
}

func TestDimensionScorer_EnhancedDefaults(t *testing.T) {
	cfg := Default()
	scorer := NewDimensionScorer(cfg)
	sc := testContext()

	// Without reference data every enhanced dimension returns the
	// conservative default rather than failing.
	for _, dim := range EnhancedDimensions() {
		got := scorer.Score("trader_id", "TRD-001", dim, sc)
		assert.Equal(t, cfg.EnhancedDefault, got, "dimension %s", dim)
	}
}

func TestDimensionScorer_Accuracy(t *testing.T) {
	scorer := NewDimensionScorer(Default())

	baseline := &contracts.Baseline{
		Reference: map[string]interface{}{
			"notional": 1000000.0,
			"venue":    "XLON",
		},
	}
	sc := testContext()
	sc.Baseline = baseline

	tests := []struct {
		name  string
		kde   string
		value interface{}
		want  float64
	}{
		{"exact numeric match", "notional", 1000000.0, 1.0},
		{"within 1 percent", "notional", 1005000.0, 0.9},
		{"within 5 percent", "notional", 1040000.0, 0.7},
		{"way off", "notional", 2000000.0, 0.2},
		{"exact string match", "venue", "XLON", 1.0},
		{"string mismatch", "venue", "XNYS", 0.2},
		{"missing value with reference", "venue", nil, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scorer.Score(tt.kde, tt.value, DimAccuracy, sc)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDimensionScorer_UniquenessAndConsistency(t *testing.T) {
	scorer := NewDimensionScorer(Default())

	sc := testContext()
	sc.Baseline = &contracts.Baseline{
		DuplicateRates:   map[string]float64{"trader_id": 0.2},
		ConsistencyRates: map[string]float64{"trader_id": 0.9},
	}

	assert.InDelta(t, 0.8, scorer.Score("trader_id", "TRD-001", DimUniqueness, sc), 1e-9)
	assert.Equal(t, 0.9, scorer.Score("trader_id", "TRD-001", DimConsistency, sc))
}

func TestDimensionScorer_AlwaysInRange(t *testing.T) {
	scorer := NewDimensionScorer(Default())
	sc := testContext()

	hostileValues := []interface{}{
		nil, "", "   ", "garbage", -1e18, 1e18, "NaN",
		testClock, []string{"weird"}, map[string]int{"odd": 1},
	}

	for _, dim := range AllDimensions() {
		for _, v := range hostileValues {
			got := scorer.Score("trader_id", v, dim, sc)
			assert.GreaterOrEqual(t, got, 0.0, "dim=%s value=%v", dim, v)
			assert.LessOrEqual(t, got, 1.0, "dim=%s value=%v", dim, v)
		}
	}
}
