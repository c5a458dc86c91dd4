package dqsi

import (
	"time"

	"github.com/hseo/vigil/internal/contracts"
)

// Synthetic pseudo-KDE names. These are system-level properties of the
// whole evidence set, scored once per assessment and aggregated alongside
// the real KDEs with the foundational tier weight.
const (
	SyntheticTimeliness = "timeliness"
	SyntheticCoverage   = "coverage"
)

// SyntheticScorer computes the two evidence-set-wide pseudo-KDE scores.
type SyntheticScorer struct {
	cfg *Config
}

// NewSyntheticScorer creates a scorer bound to an immutable configuration.
func NewSyntheticScorer(cfg *Config) *SyntheticScorer {
	return &SyntheticScorer{cfg: cfg}
}

// ScoreTimeliness measures elapsed time between the latest evidence
// timestamp and the alert timestamp using the shared banded decay. With no
// alert timestamp the reference clock is now; with no parseable evidence
// timestamps the evidence is treated as arriving now. Both absent scores
// the neutral default.
func (s *SyntheticScorer) ScoreTimeliness(alertTime time.Time, evidence contracts.Evidence, now time.Time) float64 {
	latest, found := latestTimestamp(evidence)

	if alertTime.IsZero() && !found {
		return s.cfg.NeutralScore
	}

	reference := now
	if !alertTime.IsZero() {
		reference = alertTime
	}
	if !found {
		latest = now
	}
	return timelinessBand(age(reference, latest))
}

// ScoreCoverage is the fraction of the expected baseline KDE set actually
// present in evidence. Without a baseline the neutral default applies.
func (s *SyntheticScorer) ScoreCoverage(evidence contracts.Evidence, baseline *contracts.Baseline) float64 {
	if !baseline.HasExpectedKDEs() {
		return s.cfg.NeutralScore
	}

	presentCount := 0
	for _, kde := range baseline.ExpectedKDEs {
		if evidence.Present(kde) {
			presentCount++
		}
	}
	return clamp01(float64(presentCount) / float64(len(baseline.ExpectedKDEs)))
}

// latestTimestamp scans evidence for the most recent parseable timestamp.
func latestTimestamp(evidence contracts.Evidence) (time.Time, bool) {
	var latest time.Time
	found := false
	for _, name := range evidence.KDENames() {
		if ts, ok := asTimestamp(evidence[name]); ok {
			if !found || ts.After(latest) {
				latest = ts
				found = true
			}
		}
	}
	return latest, found
}
