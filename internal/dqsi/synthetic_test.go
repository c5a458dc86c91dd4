package dqsi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hseo/vigil/internal/contracts"
)

func TestSyntheticScorer_Timeliness(t *testing.T) {
	cfg := Default()
	scorer := NewSyntheticScorer(cfg)

	alert := testClock

	tests := []struct {
		name     string
		alert    time.Time
		evidence contracts.Evidence
		want     float64
	}{
		{
			name:     "evidence fresh relative to alert",
			alert:    alert,
			evidence: contracts.Evidence{"trade_date": alert.Add(-20 * time.Minute)},
			want:     1.0,
		},
		{
			name:     "evidence a day before the alert",
			alert:    alert,
			evidence: contracts.Evidence{"trade_date": alert.Add(-20 * time.Hour)},
			want:     0.8,
		},
		{
			name:     "evidence very stale",
			alert:    alert,
			evidence: contracts.Evidence{"trade_date": alert.Add(-60 * 24 * time.Hour)},
			want:     0.3,
		},
		{
			name:     "latest of several timestamps wins",
			alert:    alert,
			evidence: contracts.Evidence{"a": alert.Add(-90 * 24 * time.Hour), "b": alert.Add(-30 * time.Minute)},
			want:     1.0,
		},
		{
			name:     "no timestamps, alert set: arrival treated as now",
			alert:    testClock.Add(-3 * 24 * time.Hour),
			evidence: contracts.Evidence{"price": 100.0},
			want:     1.0, // arrival (now) is ahead of the alert, counts fresh
		},
		{
			name:     "no timestamps and no alert scores neutral",
			alert:    time.Time{},
			evidence: contracts.Evidence{"price": 100.0},
			want:     cfg.NeutralScore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scorer.ScoreTimeliness(tt.alert, tt.evidence, testClock)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSyntheticScorer_Coverage(t *testing.T) {
	cfg := Default()
	scorer := NewSyntheticScorer(cfg)

	baseline := &contracts.Baseline{
		ExpectedKDEs: []string{"trader_id", "notional", "price", "trade_date"},
	}

	tests := []struct {
		name     string
		evidence contracts.Evidence
		baseline *contracts.Baseline
		want     float64
	}{
		{
			name:     "full coverage",
			evidence: contracts.Evidence{"trader_id": "T1", "notional": 1.0, "price": 2.0, "trade_date": testClock},
			baseline: baseline,
			want:     1.0,
		},
		{
			name:     "half coverage",
			evidence: contracts.Evidence{"trader_id": "T1", "notional": 1.0},
			baseline: baseline,
			want:     0.5,
		},
		{
			name:     "blank values do not count",
			evidence: contracts.Evidence{"trader_id": "", "notional": nil, "price": 2.0, "trade_date": testClock},
			baseline: baseline,
			want:     0.5,
		},
		{
			name:     "no baseline scores neutral",
			evidence: contracts.Evidence{"trader_id": "T1"},
			baseline: nil,
			want:     cfg.NeutralScore,
		},
		{
			name:     "extra out-of-baseline evidence does not inflate",
			evidence: contracts.Evidence{"trader_id": "T1", "venue": "XLON", "side": "buy"},
			baseline: baseline,
			want:     0.25,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scorer.ScoreCoverage(tt.evidence, tt.baseline)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}
