package dqsi

// Component blend weights of the base confidence index. They sum to 1 so
// the index stays in [0,1] whenever the components do.
const (
	availabilityWeight = 0.5
	coverageWeight     = 0.3
	imputationWeight   = 0.2
)

// imputationPenalty is how much confidence a fully imputed evidence set
// loses on the imputation component.
const imputationPenalty = 0.5

// BaseCalculator is the simple, non-KDE-first confidence model the fallback
// strategy delegates to. It blends source data-quality metrics, KDE
// presence, and imputation usage into one confidence index without needing
// per-dimension evidence.
type BaseCalculator struct {
	cfg *Config
}

// NewBaseCalculator creates the base confidence calculator.
func NewBaseCalculator(cfg *Config) *BaseCalculator {
	return &BaseCalculator{cfg: cfg}
}

// Confidence computes the blended confidence index and its components.
// Inputs may be empty; empty components score zero availability/coverage
// and a fully-imputed penalty, which is the conservative floor.
func (c *BaseCalculator) Confidence(metrics map[string]float64, imputation map[string]bool, presence map[string]bool) (float64, ConfidenceComponents) {
	availability := 0.0
	if len(metrics) > 0 {
		sum := 0.0
		for _, v := range metrics {
			sum += clamp01(v)
		}
		availability = sum / float64(len(metrics))
	}

	coverage := 0.0
	if len(presence) > 0 {
		presentCount := 0
		for _, ok := range presence {
			if ok {
				presentCount++
			}
		}
		coverage = float64(presentCount) / float64(len(presence))
	}

	imputedFraction := 1.0
	if len(imputation) > 0 {
		imputedCount := 0
		for _, imputed := range imputation {
			if imputed {
				imputedCount++
			}
		}
		imputedFraction = float64(imputedCount) / float64(len(imputation))
	}
	imputationFactor := 1.0 - imputationPenalty*imputedFraction

	components := ConfidenceComponents{
		DataAvailability: round3(availability),
		ImputationFactor: round3(imputationFactor),
		KDECoverage:      round3(coverage),
	}

	confidence := availabilityWeight*availability +
		coverageWeight*coverage +
		imputationWeight*imputationFactor

	return clamp01(confidence), components
}
