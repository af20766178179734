package matching

import (
	"testing"

	"makerLink/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorm.io/datatypes"
)

func newTestComposer() *Composer {
	return NewComposer(NewMatcher())
}

func perfectOrder() domain.OrderRequirement {
	return domain.OrderRequirement{
		OrderID:              1,
		ManufacturingProcess: "CNC Machining",
		Material:             "Aluminum 6061",
		IndustryCategory:     "Aerospace",
		Certifications:       datatypes.JSONSlice[string]{"ISO 9001", "AS9100"},
		Complexity:           domain.ComplexityHigh,
	}
}

func perfectCapability() domain.ManufacturerCapability {
	return domain.ManufacturerCapability{
		ManufacturerID:         10,
		ManufacturingProcesses: datatypes.JSONSlice[string]{"CNC Machining", "CNC Milling"},
		Materials:              datatypes.JSONSlice[string]{"Aluminum 6061", "Stainless Steel"},
		IndustriesServed:       datatypes.JSONSlice[string]{"Aerospace", "Automotive"},
		Certifications:         datatypes.JSONSlice[string]{"ISO 9001", "AS9100", "ISO 13485"},
	}
}

func TestComposePerfectMatch(t *testing.T) {
	c := newTestComposer()

	score := c.Compose(perfectOrder(), perfectCapability(), nil)

	assert.Equal(t, 1.0, score.CompositeScore)
	assert.Equal(t, 1.0, score.Confidence)
	assert.Equal(t, uint64(10), score.ManufacturerID)
	require.Len(t, score.ComponentScores, 4)
	for attr, s := range score.ComponentScores {
		assert.Equal(t, 1.0, s, attr)
	}
}

func TestComposeDisjointCapability(t *testing.T) {
	c := newTestComposer()

	capability := domain.ManufacturerCapability{
		ManufacturerID:         11,
		ManufacturingProcesses: datatypes.JSONSlice[string]{"Injection Molding"},
		Materials:              datatypes.JSONSlice[string]{"Titanium"},
		IndustriesServed:       datatypes.JSONSlice[string]{"Medical"},
		Certifications:         datatypes.JSONSlice[string]{"ISO 13485"},
	}

	score := c.Compose(perfectOrder(), capability, nil)

	assert.LessOrEqual(t, score.CompositeScore, 0.2)
}

func TestComposePerfectBeatsDisjointByWideMargin(t *testing.T) {
	c := newTestComposer()

	perfect := c.Compose(perfectOrder(), perfectCapability(), nil)

	disjoint := c.Compose(perfectOrder(), domain.ManufacturerCapability{
		ManufacturerID:         12,
		ManufacturingProcesses: datatypes.JSONSlice[string]{"Sand Casting"},
		Materials:              datatypes.JSONSlice[string]{"Cast Iron"},
	}, nil)

	assert.GreaterOrEqual(t, perfect.CompositeScore-disjoint.CompositeScore, 0.7)
}

func TestComposeMissingCriticalDataPenalized(t *testing.T) {
	c := newTestComposer()

	order := domain.OrderRequirement{
		OrderID:              2,
		ManufacturingProcess: "CNC Machining",
		Material:             "Aluminum",
	}

	full := domain.ManufacturerCapability{
		ManufacturerID:         20,
		ManufacturingProcesses: datatypes.JSONSlice[string]{"CNC Machining"},
		Materials:              datatypes.JSONSlice[string]{"Aluminum"},
	}
	noMaterials := domain.ManufacturerCapability{
		ManufacturerID:         21,
		ManufacturingProcesses: datatypes.JSONSlice[string]{"CNC Machining"},
	}

	fullScore := c.Compose(order, full, nil)
	penalized := c.Compose(order, noMaterials, nil)

	assert.Equal(t, 1.0, fullScore.CompositeScore)
	assert.Less(t, penalized.CompositeScore, fullScore.CompositeScore)
	// process matched perfectly but the undeclared material caps the result
	assert.InDelta(t, 0.55, penalized.CompositeScore, 1e-9)
	assert.NotContains(t, penalized.ComponentScores, domain.AttrMaterial)
}

func TestComposeNoOverlapAtAll(t *testing.T) {
	c := newTestComposer()

	order := domain.OrderRequirement{
		OrderID:              3,
		ManufacturingProcess: "CNC Machining",
	}
	capability := domain.ManufacturerCapability{
		ManufacturerID: 30,
	}

	score := c.Compose(order, capability, nil)

	assert.Equal(t, 0.02, score.CompositeScore)
	assert.Equal(t, 0.0, score.Confidence)
	assert.Empty(t, score.ComponentScores)
}

func TestComposeConfidenceTracksCoverage(t *testing.T) {
	c := newTestComposer()

	order := domain.OrderRequirement{
		OrderID:              4,
		ManufacturingProcess: "CNC Machining",
		Material:             "Aluminum",
	}
	capability := domain.ManufacturerCapability{
		ManufacturerID:         40,
		ManufacturingProcesses: datatypes.JSONSlice[string]{"CNC Machining"},
		Materials:              datatypes.JSONSlice[string]{"Aluminum"},
	}

	score := c.Compose(order, capability, nil)

	// process + material default weights
	assert.InDelta(t, 0.80, score.Confidence, 1e-9)
}

func TestComposeLearnedWeightsShiftRanking(t *testing.T) {
	c := newTestComposer()

	order := domain.OrderRequirement{
		OrderID:              5,
		ManufacturingProcess: "Milling",
		Material:             "Aluminum",
	}
	capability := domain.ManufacturerCapability{
		ManufacturerID:         50,
		ManufacturingProcesses: datatypes.JSONSlice[string]{"CNC Machining"},
		Materials:              datatypes.JSONSlice[string]{"Aluminum"},
	}

	baseline := c.Compose(order, capability, nil)

	materialHeavy := map[string]float64{
		domain.AttrProcess:  0.2,
		domain.AttrMaterial: 0.5,
	}
	shifted := c.Compose(order, capability, materialHeavy)

	assert.Greater(t, shifted.CompositeScore, baseline.CompositeScore)
}

func TestComposeCertificationMean(t *testing.T) {
	c := newTestComposer()

	order := domain.OrderRequirement{
		OrderID:              6,
		ManufacturingProcess: "CNC Machining",
		Certifications:       datatypes.JSONSlice[string]{"ISO 9001", "NADCAP"},
	}
	capability := domain.ManufacturerCapability{
		ManufacturerID:         60,
		ManufacturingProcesses: datatypes.JSONSlice[string]{"CNC Machining"},
		Certifications:         datatypes.JSONSlice[string]{"ISO 9001"},
	}

	score := c.Compose(order, capability, nil)

	// one exact hit, one complete miss
	assert.InDelta(t, 0.5, score.ComponentScores[domain.AttrCertifications], 1e-9)
}

func TestDefaultWeightsSumToOne(t *testing.T) {
	sum := 0.0
	for _, w := range DefaultWeights() {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}
