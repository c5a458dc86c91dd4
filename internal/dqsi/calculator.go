package dqsi

import (
	"sort"
	"time"

	"github.com/hseo/vigil/internal/contracts"
)

// StrategyKDEFirst is the strategy label of the base calculator.
const StrategyKDEFirst = "kde_first"

// Calculator is the KDE-first DQSI calculator: it scores every supplied KDE
// on its applicable dimensions, adds the two synthetic pseudo-KDEs, applies
// risk-tier and dimension-tier weights, and emits the full score breakdown.
//
// The calculator is stateless apart from its immutable configuration, so it
// is safe for concurrent use. Scope filtering belongs to the role-aware
// wrapper: the calculator scores whatever evidence it is given.
type Calculator struct {
	cfg        *Config
	configHash string
	dims       *DimensionScorer
	synth      *SyntheticScorer
	now        func() time.Time
}

// NewCalculator creates a calculator over a validated configuration.
func NewCalculator(cfg *Config) *Calculator {
	hash, _ := Hash(cfg)
	return &Calculator{
		cfg:        cfg,
		configHash: hash,
		dims:       NewDimensionScorer(cfg),
		synth:      NewSyntheticScorer(cfg),
		now:        time.Now,
	}
}

// WithClock overrides the reference clock. Used by tests and the re-sweep
// job to reproduce historical scores.
func (c *Calculator) WithClock(now func() time.Time) *Calculator {
	c.now = now
	return c
}

// Config returns the immutable configuration the calculator scores with.
func (c *Calculator) Config() *Config {
	return c.cfg
}

// ConfigHash returns the hash of the active configuration.
func (c *Calculator) ConfigHash() string {
	return c.configHash
}

// accumulator collects weighted contributions split by dimension tier.
type accumulator struct {
	weightedScore float64
	weights       float64

	foundationalScore   float64
	foundationalWeights float64
	enhancedScore       float64
	enhancedWeights     float64
}

func (a *accumulator) add(score, weight float64, tier DimensionTier) {
	a.weightedScore += score * weight
	a.weights += weight
	if tier == TierFoundational {
		a.foundationalScore += score * weight
		a.foundationalWeights += weight
	} else {
		a.enhancedScore += score * weight
		a.enhancedWeights += weight
	}
}

// Calculate runs one full assessment. It never fails: malformed values
// score their penalty defaults and a KDE whose scoring panics is zero-scored
// and flagged, so the overall computation always completes.
func (c *Calculator) Calculate(evidence contracts.Evidence, baseline *contracts.Baseline, role Role, alertTime time.Time) *Result {
	sc := ScoringContext{
		Baseline:  baseline,
		AlertTime: alertTime,
		Now:       c.now(),
	}

	applicable := evidence.KDENames()
	kdeScores := make(map[string]map[Dimension]float64, len(applicable))
	var acc accumulator
	var missing, internalErrors []string
	dimensionsScored := 0

	for _, kde := range applicable {
		vector, ok := c.scoreKDE(kde, evidence[kde], sc)
		if !ok {
			// Scoring panicked for this KDE: record a zero completeness
			// vector so the weight mass still counts against the score.
			vector = map[Dimension]float64{DimCompleteness: 0.0}
			internalErrors = append(internalErrors, kde)
		}

		profile := c.cfg.KDEProfile(kde)
		riskWeight := c.cfg.RiskWeights.For(profile.Risk)

		// Accumulate in declaration order. Float addition is not
		// associative, so map-order iteration would make the unrounded
		// breakdown values differ between identical calls.
		for _, dim := range AllDimensions() {
			score, scored := vector[dim]
			if !scored {
				continue
			}
			tier := dim.Tier()
			acc.add(score, riskWeight*c.cfg.TierWeights.For(tier), tier)
		}
		dimensionsScored += len(vector)

		kdeScores[kde] = vector
		if !evidence.Present(kde) {
			missing = append(missing, kde)
		}
	}

	// Synthetic pseudo-KDEs contribute with the foundational tier weight.
	synthetic := map[string]float64{
		SyntheticTimeliness: c.synth.ScoreTimeliness(alertTime, evidence, sc.Now),
		SyntheticCoverage:   c.synth.ScoreCoverage(evidence, baseline),
	}
	syntheticWeight := c.cfg.SyntheticKDEWeight * c.cfg.TierWeights.For(TierFoundational)
	for _, name := range []string{SyntheticTimeliness, SyntheticCoverage} {
		acc.add(synthetic[name], syntheticWeight, TierFoundational)
		synthetic[name] = round3(synthetic[name])
	}

	score := 0.0
	if acc.weights > 0 {
		score = clamp01(acc.weightedScore / acc.weights)
	}

	for kde, vector := range kdeScores {
		for dim, s := range vector {
			kdeScores[kde][dim] = round3(s)
		}
	}

	return &Result{
		DQSIScore:       round3(score),
		TrustBucket:     c.cfg.ClassifyTrustBucket(score),
		Framework:       c.cfg.Framework,
		Strategy:        StrategyKDEFirst,
		KDEScores:       kdeScores,
		SyntheticScores: synthetic,
		Breakdown:       breakdown(acc),
		ApplicableKDEs:  applicable,
		Summary:         summarize(kdeScores),
		Metadata: QualityMetadata{
			KDEsAssessed:      len(applicable),
			DimensionsScored:  dimensionsScored,
			FoundationalScore: round3(safeRatio(acc.foundationalScore, acc.foundationalWeights)),
			EnhancedScore:     round3(safeRatio(acc.enhancedScore, acc.enhancedWeights)),
			SyntheticKDEs:     []string{SyntheticTimeliness, SyntheticCoverage},
			MissingValueKDEs:  missing,
			InternalErrorKDEs: internalErrors,
			ConfigHash:        c.configHash,
		},
	}
}

// scoreKDE computes the dimension vector for one KDE. The recover guard
// means one misbehaving KDE can never abort the whole assessment; the
// scorer itself is total, so the guard only trips on genuine bugs.
func (c *Calculator) scoreKDE(kde string, value interface{}, sc ScoringContext) (vector map[Dimension]float64, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			vector, ok = nil, false
		}
	}()

	profile := c.cfg.KDEProfile(kde)
	dims := FoundationalDimensions()
	if profile.Enhanced {
		dims = AllDimensions()
	}

	vector = make(map[Dimension]float64, len(dims))
	for _, dim := range dims {
		vector[dim] = clamp01(c.dims.Score(kde, value, dim, sc))
	}
	return vector, true
}

// breakdown converts the accumulator into the reported ledger. Contribution
// percentages are shares of the total weighted score; with no score mass
// they fall back to weight-mass shares so the two still sum to 100.
func breakdown(acc accumulator) ScoreBreakdown {
	foundationalPct, enhancedPct := 0.0, 0.0
	switch {
	case acc.weightedScore > 0:
		foundationalPct = acc.foundationalScore / acc.weightedScore * 100
		enhancedPct = acc.enhancedScore / acc.weightedScore * 100
	case acc.weights > 0:
		foundationalPct = acc.foundationalWeights / acc.weights * 100
		enhancedPct = acc.enhancedWeights / acc.weights * 100
	}

	return ScoreBreakdown{
		TotalWeightedScore:          acc.weightedScore,
		TotalWeights:                acc.weights,
		FoundationalWeightedScore:   acc.foundationalScore,
		EnhancedWeightedScore:       acc.enhancedScore,
		FoundationalContributionPct: round3(foundationalPct),
		EnhancedContributionPct:     round3(enhancedPct),
	}
}

// summarize builds per-dimension average/min/max across all scored KDEs.
func summarize(kdeScores map[string]map[Dimension]float64) map[Dimension]DimensionStats {
	type agg struct {
		sum      float64
		min, max float64
		count    int
	}
	byDim := make(map[Dimension]*agg)

	kdes := make([]string, 0, len(kdeScores))
	for kde := range kdeScores {
		kdes = append(kdes, kde)
	}
	sort.Strings(kdes)

	for _, kde := range kdes {
		vector := kdeScores[kde]
		for _, dim := range AllDimensions() {
			score, scored := vector[dim]
			if !scored {
				continue
			}
			a, ok := byDim[dim]
			if !ok {
				a = &agg{min: score, max: score}
				byDim[dim] = a
			}
			if score < a.min {
				a.min = score
			}
			if score > a.max {
				a.max = score
			}
			a.sum += score
			a.count++
		}
	}

	summary := make(map[Dimension]DimensionStats, len(byDim))
	for dim, a := range byDim {
		summary[dim] = DimensionStats{
			Average: round3(a.sum / float64(a.count)),
			Min:     round3(a.min),
			Max:     round3(a.max),
			Count:   a.count,
		}
	}
	return summary
}

func safeRatio(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return clamp01(num / den)
}
