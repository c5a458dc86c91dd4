package dqsi

import (
	"regexp"
	"time"

	"github.com/hseo/vigil/internal/contracts"
)

// ScoringContext carries the per-call inputs a dimension score may consult
// beyond the KDE value itself: the resolved baseline, the alert timestamp,
// and the reference clock.
type ScoringContext struct {
	Baseline  *contracts.Baseline
	AlertTime time.Time
	Now       time.Time
}

// DimensionScorer computes a quality score in [0,1] for one KDE along one
// dimension. It is a pure, total function of its inputs: unscoreable or
// malformed values resolve to the dimension's penalty default, never to an
// error, so a single bad field can never block the surveillance output.
type DimensionScorer struct {
	cfg *Config
}

// NewDimensionScorer creates a scorer bound to an immutable configuration.
func NewDimensionScorer(cfg *Config) *DimensionScorer {
	return &DimensionScorer{cfg: cfg}
}

// Score evaluates one (KDE, dimension) pair. The returned score is always
// in [0, 1].
func (s *DimensionScorer) Score(kde string, value interface{}, dim Dimension, sc ScoringContext) float64 {
	profile := s.cfg.KDEProfile(kde)

	switch dim {
	case DimCompleteness:
		return s.scoreCompleteness(value)
	case DimConformity:
		return s.scoreConformity(value, profile.Conformity)
	case DimTimeliness:
		return s.scoreTimeliness(value, profile, sc)
	case DimCoverage:
		return s.scoreCoverage(kde, value, sc.Baseline)
	case DimAccuracy:
		return s.scoreAccuracy(kde, value, sc.Baseline)
	case DimUniqueness:
		return s.scoreUniqueness(kde, sc.Baseline)
	case DimConsistency:
		return s.scoreConsistency(kde, sc.Baseline)
	default:
		return s.cfg.NeutralScore
	}
}

// scoreCompleteness: present and non-empty scores 1.0, anything else 0.0.
// No partial credit.
func (s *DimensionScorer) scoreCompleteness(value interface{}) float64 {
	if present(value) {
		return 1.0
	}
	return 0.0
}

// scoreConformity grades the fraction of configured format sub-checks the
// value satisfies through the graduated bands. A KDE with no rule conforms
// fully whenever it is present.
func (s *DimensionScorer) scoreConformity(value interface{}, rule *ConformityRule) float64 {
	if !present(value) {
		return 0.0
	}
	if rule == nil {
		return 1.0
	}

	passed, total := 0, 0
	check := func(ok bool) {
		total++
		if ok {
			passed++
		}
	}

	switch rule.Type {
	case "numeric":
		n, isNum := asFloat(value)
		check(isNum)
		if rule.Min != nil {
			check(isNum && n >= *rule.Min)
		}
		if rule.Max != nil {
			check(isNum && n <= *rule.Max)
		}
	case "timestamp":
		_, isTS := asTimestamp(value)
		check(isTS)
	case "enum":
		str := asString(value)
		match := false
		for _, allowed := range rule.Enum {
			if str == allowed {
				match = true
				break
			}
		}
		check(match)
	default: // string
		str := asString(value)
		check(str != "")
		if rule.MaxLength > 0 {
			check(len(str) <= rule.MaxLength)
		}
	}

	if rule.Pattern != "" && rule.Type != "numeric" && rule.Type != "timestamp" {
		re, err := regexp.Compile(rule.Pattern)
		check(err == nil && re.MatchString(asString(value)))
	}

	if total == 0 {
		return 1.0
	}
	return conformityBand(float64(passed) / float64(total))
}

// conformityBand maps a satisfied-rule fraction onto the graduated scoring
// bands shared with consistency grading.
func conformityBand(fraction float64) float64 {
	switch {
	case fraction >= 0.95:
		return 1.0
	case fraction >= 0.85:
		return 0.9
	case fraction >= 0.75:
		return 0.8
	case fraction >= 0.60:
		return 0.6
	default:
		return 0.3
	}
}

// scoreTimeliness grades freshness of timestamp KDEs against the reference
// clock using banded decay. Non-timestamp KDEs score the neutral default;
// a timestamp KDE whose value does not parse scores 0.0.
func (s *DimensionScorer) scoreTimeliness(value interface{}, profile KDEProfile, sc ScoringContext) float64 {
	ts, parsed := asTimestamp(value)
	if !profile.Timestamp && !parsed {
		return s.cfg.NeutralScore
	}
	if !parsed {
		return 0.0
	}

	reference := sc.Now
	if !sc.AlertTime.IsZero() {
		reference = sc.AlertTime
	}
	return timelinessBand(age(reference, ts))
}

// timelinessBand is the banded freshness decay shared by per-KDE and
// synthetic timeliness.
func timelinessBand(elapsed time.Duration) float64 {
	switch {
	case elapsed <= time.Hour:
		return 1.0
	case elapsed <= 24*time.Hour:
		return 0.8
	case elapsed <= 7*24*time.Hour:
		return 0.6
	default:
		return 0.3
	}
}

// age returns how far ts lies from the reference instant. Timestamps ahead
// of the reference count as fresh rather than negative.
func age(reference, ts time.Time) time.Duration {
	d := reference.Sub(ts)
	if d < 0 {
		return 0
	}
	return d
}

// scoreCoverage compares observed record volume against the baseline
// expectation for the KDE, clipped to [0,1]. Without baseline volume data
// the score is the neutral default: absence of baseline infrastructure is
// not a data defect.
func (s *DimensionScorer) scoreCoverage(kde string, value interface{}, baseline *contracts.Baseline) float64 {
	if baseline == nil || len(baseline.ExpectedVolumes) == 0 {
		return s.cfg.NeutralScore
	}
	expected, ok := baseline.ExpectedVolumes[kde]
	if !ok || expected <= 0 {
		return s.cfg.NeutralScore
	}

	actual, ok := baseline.ActualVolumes[kde]
	if !ok {
		// No observed volume reported: the evidence instance itself is the
		// only observation.
		if present(value) {
			actual = 1
		}
	}
	return clamp01(actual / expected)
}

// scoreAccuracy compares the value against a known-good reference when one
// is supplied; otherwise the conservative enhanced default applies.
func (s *DimensionScorer) scoreAccuracy(kde string, value interface{}, baseline *contracts.Baseline) float64 {
	if baseline == nil {
		return s.cfg.EnhancedDefault
	}
	ref, ok := baseline.Reference[kde]
	if !ok {
		return s.cfg.EnhancedDefault
	}
	if !present(value) {
		return 0.0
	}

	if asString(value) == asString(ref) {
		return 1.0
	}

	// Numeric values earn partial credit inside tolerance.
	v, vOK := asFloat(value)
	r, rOK := asFloat(ref)
	if vOK && rOK && r != 0 {
		diff := relDiff(v, r)
		switch {
		case diff <= 0.01:
			return 0.9
		case diff <= 0.05:
			return 0.7
		}
	}
	return 0.2
}

func relDiff(a, b float64) float64 {
	d := a - b
	if d < 0 {
		d = -d
	}
	base := b
	if base < 0 {
		base = -base
	}
	return d / base
}

// scoreUniqueness converts the baseline duplicate rate for the KDE into a
// score; without cross-system data the enhanced default applies.
func (s *DimensionScorer) scoreUniqueness(kde string, baseline *contracts.Baseline) float64 {
	if baseline == nil {
		return s.cfg.EnhancedDefault
	}
	rate, ok := baseline.DuplicateRates[kde]
	if !ok {
		return s.cfg.EnhancedDefault
	}
	return clamp01(1 - rate)
}

// scoreConsistency grades the baseline cross-system agreement rate through
// the graduated bands; without it the enhanced default applies.
func (s *DimensionScorer) scoreConsistency(kde string, baseline *contracts.Baseline) float64 {
	if baseline == nil {
		return s.cfg.EnhancedDefault
	}
	rate, ok := baseline.ConsistencyRates[kde]
	if !ok {
		return s.cfg.EnhancedDefault
	}
	return conformityBand(clamp01(rate))
}

// present mirrors contracts.Evidence.Present for a bare value.
func present(v interface{}) bool {
	if v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return asString(s) != ""
	}
	return true
}
