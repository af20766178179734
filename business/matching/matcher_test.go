package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchExactTerm(t *testing.T) {
	m := NewMatcher()

	assert.Equal(t, 1.0, m.Match("CNC Machining", []string{"CNC Machining"}))
	assert.Equal(t, 1.0, m.Match("  cnc machining ", []string{"CNC MACHINING"}))
}

func TestMatchEmptyInputs(t *testing.T) {
	m := NewMatcher()

	assert.Equal(t, 0.0, m.Match("", []string{"CNC Machining"}))
	assert.Equal(t, 0.0, m.Match("CNC Machining", nil))
	assert.Equal(t, 0.0, m.Match("CNC Machining", []string{""}))
}

func TestMatchBounds(t *testing.T) {
	m := NewMatcher()

	pairs := [][2]string{
		{"CNC Machining", "CNC Manufacturing"},
		{"Aluminum", "Aluminum 6061"},
		{"Injection Molding", "Blow Molding"},
		{"Stainless Steel", "Titanium"},
		{"3D Printing", "SLS"},
		{"Sheet Metal Fabrication", "Laser Cutting"},
		{"weird unknown term", "another unknown"},
	}

	for _, p := range pairs {
		score := m.Match(p[0], []string{p[1]})
		assert.GreaterOrEqual(t, score, 0.0, "%s vs %s", p[0], p[1])
		assert.LessOrEqual(t, score, 1.0, "%s vs %s", p[0], p[1])
	}
}

// The calibrated scores must keep qualitatively different matches
// numerically far apart, in strict order.
func TestMatchDiscrimination(t *testing.T) {
	m := NewMatcher()

	required := "CNC Machining"
	candidates := []string{
		"CNC Machining",
		"CNC Manufacturing",
		"Precision Machining",
		"Milling",
		"Injection Molding",
	}

	scores := make([]float64, len(candidates))
	for i, c := range candidates {
		scores[i] = m.Match(required, []string{c})
	}

	require.Equal(t, 1.0, scores[0])
	for i := 1; i < len(scores); i++ {
		assert.Greater(t, scores[i-1], scores[i],
			"%q should outscore %q", candidates[i-1], candidates[i])
	}

	// unrelated process contributes nothing
	assert.Equal(t, 0.0, scores[4])

	// an exact match stays far ahead of a loosely related one
	assert.GreaterOrEqual(t, scores[0]-scores[3], 0.7)
}

func TestMatchPicksBestAvailable(t *testing.T) {
	m := NewMatcher()

	best := m.Match("CNC Machining", []string{"Milling", "CNC Manufacturing", "CNC Machining"})
	assert.Equal(t, 1.0, best)

	best = m.Match("CNC Machining", []string{"Injection Molding", "Precision Machining"})
	assert.InDelta(t, 0.35, best, 1e-9)
}

func TestHierarchyCrossCategory(t *testing.T) {
	assert.Equal(t, 0.0, hierarchyScore("cnc machining", "injection molding"))
	assert.Equal(t, 0.0, hierarchyScore("aluminum", "titanium"))
	assert.Equal(t, 0.0, hierarchyScore("not in table", "cnc machining"))
}

func TestHierarchyCrossTierDiscount(t *testing.T) {
	// same category, adjacent tiers: lower tier score times the discount
	got := hierarchyScore("cnc machining", "cnc manufacturing")
	assert.InDelta(t, tierVeryCloseScore*crossTierDiscount, got, 1e-9)

	// symmetric
	assert.InDelta(t, got, hierarchyScore("cnc manufacturing", "cnc machining"), 1e-9)
}

func TestMaterialHierarchy(t *testing.T) {
	m := NewMatcher()

	grade := m.Match("Aluminum", []string{"Aluminum 6061"})
	unrelated := m.Match("Aluminum", []string{"Titanium"})

	assert.Greater(t, grade, 0.5)
	assert.Less(t, unrelated, 0.2)
}

func TestDiscriminationClamp(t *testing.T) {
	cases := []struct {
		raw  float64
		want float64
	}{
		{1.0, 1.0},
		{0.9, 0.9},
		{0.8, 0.75},
		{0.6, 0.55},
		{0.45, 0.35},
		{0.28, 0.15},
		{0.0, 0.0},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, discriminationClamp(tc.raw), 1e-9, "raw=%v", tc.raw)
	}
}
