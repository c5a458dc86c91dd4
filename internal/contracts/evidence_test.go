package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvidence_Present(t *testing.T) {
	ev := Evidence{
		"trader_id": "TRD-001",
		"notional":  0.0,
		"blank":     "",
		"spaces":    "   ",
		"missing":   nil,
	}

	assert.True(t, ev.Present("trader_id"))
	assert.True(t, ev.Present("notional"), "zero is a value, not an absence")
	assert.False(t, ev.Present("blank"))
	assert.False(t, ev.Present("spaces"))
	assert.False(t, ev.Present("missing"))
	assert.False(t, ev.Present("never_supplied"))
}

func TestEvidence_KDENamesSorted(t *testing.T) {
	ev := Evidence{"zeta": 1, "alpha": 2, "mid": 3}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, ev.KDENames())
}

func TestEvidence_PresentCount(t *testing.T) {
	ev := Evidence{"a": "x", "b": nil, "c": "", "d": 4.0}
	assert.Equal(t, 2, ev.PresentCount())
	assert.Equal(t, 0, Evidence{}.PresentCount())
}

func TestBaseline_ForScope(t *testing.T) {
	desk := &Baseline{ExpectedKDEs: []string{"price"}}
	role := &Baseline{ExpectedKDEs: []string{"price", "quantity"}}
	root := &Baseline{
		ExpectedKDEs: []string{"price", "quantity", "side"},
		ByRole:       map[string]*Baseline{"trader": role},
		ByDesk:       map[string]*Baseline{"EQ-1": desk},
	}

	assert.Same(t, desk, root.ForScope("trader", "EQ-1"))
	assert.Same(t, role, root.ForScope("trader", "FX-9"), "unknown desk falls back to role")
	assert.Same(t, root, root.ForScope("auditor", ""), "unknown role falls back to the root baseline")

	var nilBaseline *Baseline
	assert.Nil(t, nilBaseline.ForScope("trader", "EQ-1"))
}
