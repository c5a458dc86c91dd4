package contracts

// Baseline carries the reference data an organization supplies for quality
// scoring: the expected KDE set, expected/observed record volumes, known-good
// reference values, and cross-system agreement rates. All fields are
// optional; scorers fall back to neutral defaults when a field is absent.
//
// Baselines can be layered per desk and per role. Resolution order is
// desk-specific, then role-specific, then the baseline itself, so an
// organization can supply overrides without any branching in the calculator.
type Baseline struct {
	ExpectedKDEs     []string               `json:"expected_kdes,omitempty" yaml:"expected_kdes,omitempty"`
	ExpectedVolumes  map[string]float64     `json:"expected_volumes,omitempty" yaml:"expected_volumes,omitempty"`
	ActualVolumes    map[string]float64     `json:"actual_volumes,omitempty" yaml:"actual_volumes,omitempty"`
	Reference        map[string]interface{} `json:"reference_values,omitempty" yaml:"reference_values,omitempty"`
	DuplicateRates   map[string]float64     `json:"duplicate_rates,omitempty" yaml:"duplicate_rates,omitempty"`
	ConsistencyRates map[string]float64     `json:"consistency_rates,omitempty" yaml:"consistency_rates,omitempty"`

	ByRole map[string]*Baseline `json:"by_role,omitempty" yaml:"by_role,omitempty"`
	ByDesk map[string]*Baseline `json:"by_desk,omitempty" yaml:"by_desk,omitempty"`
}

// ForScope resolves the layered baseline for a consumer. A desk-specific
// baseline wins over a role-specific one, which wins over the raw baseline.
// Safe on a nil receiver.
func (b *Baseline) ForScope(role, deskID string) *Baseline {
	if b == nil {
		return nil
	}
	if deskID != "" {
		if desk, ok := b.ByDesk[deskID]; ok && desk != nil {
			return desk
		}
	}
	if role != "" {
		if r, ok := b.ByRole[role]; ok && r != nil {
			return r
		}
	}
	return b
}

// HasExpectedKDEs reports whether the baseline defines an expected KDE set.
func (b *Baseline) HasExpectedKDEs() bool {
	return b != nil && len(b.ExpectedKDEs) > 0
}
