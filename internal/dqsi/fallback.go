package dqsi

import (
	"fmt"

	"github.com/hseo/vigil/internal/contracts"
)

// StrategyFallback is the strategy label of the fallback path.
const StrategyFallback = "fallback"

// minimalConfidence is the fixed confidence of the minimal result produced
// when every input is empty.
const minimalConfidence = 0.1

// FallbackInput carries the degraded-mode inputs. Any subset may be empty;
// missing optional inputs are defaulted pessimistically before delegating
// to the base calculator.
type FallbackInput struct {
	Evidence           contracts.Evidence
	DataQualityMetrics map[string]float64
	ImputationUsage    map[string]bool
	KDEPresence        map[string]bool
	Reason             FallbackReason
}

// FallbackStrategy guarantees a trust-bucket-bearing result when evidence
// is empty, partial, or the primary calculation failed. The computed
// confidence is multiplied by a conservative factor keyed on the failure
// reason, and the trust bucket is re-derived from the adjusted value.
type FallbackStrategy struct {
	cfg  *Config
	base *BaseCalculator
}

// NewFallbackStrategy creates the fallback strategy.
func NewFallbackStrategy(cfg *Config) *FallbackStrategy {
	return &FallbackStrategy{cfg: cfg, base: NewBaseCalculator(cfg)}
}

// CalculateDQScore runs the degraded-mode assessment. It has three paths —
// conservative, minimal, emergency — and all of them return a well-formed
// result with a valid trust bucket and a confidence in [0,1]. It never
// returns an error and never panics outward.
func (s *FallbackStrategy) CalculateDQScore(in FallbackInput) (result *Result) {
	reason, factor := s.cfg.FallbackFactor(in.Reason)

	defer func() {
		if r := recover(); r != nil {
			result = s.emergencyResult(reason, fmt.Sprintf("fallback calculation failed: %v", r))
		}
	}()

	var confidence float64
	var components ConfidenceComponents

	if len(in.Evidence) == 0 && len(in.DataQualityMetrics) == 0 && len(in.KDEPresence) == 0 {
		// Minimal result: nothing to assess, fixed low confidence and
		// pessimistic components. The base calculator is not invoked.
		confidence = minimalConfidence
		components = ConfidenceComponents{
			DataAvailability: minimalConfidence,
			ImputationFactor: 1.0 - imputationPenalty,
			KDECoverage:      0.0,
		}
	} else {
		metrics, imputation, presence := s.conservativeDefaults(in)
		confidence, components = s.base.Confidence(metrics, imputation, presence)
	}

	adjusted := clamp01(confidence * factor)
	adjustedRounded := round3(adjusted)

	return &Result{
		DQSIScore:          adjustedRounded,
		TrustBucket:        s.cfg.ClassifyTrustBucket(adjusted),
		Framework:          s.cfg.Framework,
		Strategy:           StrategyFallback,
		KDEScores:          map[string]map[Dimension]float64{},
		SyntheticScores:    map[string]float64{},
		ApplicableKDEs:     in.Evidence.KDENames(),
		Summary:            map[Dimension]DimensionStats{},
		ConfidenceIndex:    &adjustedRounded,
		Components:         &components,
		FallbackReason:     reason,
		AdjustmentFactor:   factor,
		OriginalConfidence: round3(confidence),
		DegradationLevel:   degradationLevel(factor),
		IsDegradedMode:     true,
	}
}

// conservativeDefaults fills in the missing optional inputs pessimistically:
// unknown sources score 0.3, imputation is assumed heavy, and when presence
// is unreported the critical KDE is assumed absent.
func (s *FallbackStrategy) conservativeDefaults(in FallbackInput) (map[string]float64, map[string]bool, map[string]bool) {
	metrics := in.DataQualityMetrics
	if len(metrics) == 0 {
		metrics = map[string]float64{"unknown_source": 0.3}
	}

	imputation := in.ImputationUsage
	if len(imputation) == 0 {
		imputation = map[string]bool{"assumed_imputed": true}
	}

	presence := in.KDEPresence
	if len(presence) == 0 {
		if len(in.Evidence) > 0 {
			presence = make(map[string]bool, len(in.Evidence))
			for _, kde := range in.Evidence.KDENames() {
				presence[kde] = in.Evidence.Present(kde)
			}
		} else {
			presence = map[string]bool{"critical_kde": false}
		}
	}

	return metrics, imputation, presence
}

// degradationLevel labels the severity implied by the adjustment factor.
func degradationLevel(factor float64) string {
	switch {
	case factor >= 0.80:
		return "Minor"
	case factor >= 0.70:
		return "Moderate"
	case factor >= 0.60:
		return "Severe"
	default:
		return "Critical"
	}
}

// emergencyResult is the terminal failure mode: zero confidence, Low
// bucket, everything well-formed. Callers never see a missing trust bucket.
func (s *FallbackStrategy) emergencyResult(reason FallbackReason, errMsg string) *Result {
	zero := 0.0
	return &Result{
		DQSIScore:          0.0,
		TrustBucket:        BucketLow,
		Framework:          s.cfg.Framework,
		Strategy:           StrategyFallback,
		KDEScores:          map[string]map[Dimension]float64{},
		SyntheticScores:    map[string]float64{},
		ApplicableKDEs:     []string{},
		Summary:            map[Dimension]DimensionStats{},
		ConfidenceIndex:    &zero,
		Components:         &ConfidenceComponents{},
		FallbackReason:     reason,
		AdjustmentFactor:   0.0,
		OriginalConfidence: 0.0,
		DegradationLevel:   "Critical",
		IsDegradedMode:     true,
		IsEmergencyMode:    true,
		Error:              errMsg,
	}
}
