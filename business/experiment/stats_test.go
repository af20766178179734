package experiment

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTwoProportionZTestSignificant(t *testing.T) {
	// 10% vs 15% conversion over 1000 sessions each
	res := TwoProportionZTest(100, 1000, 150, 1000, 0.95)

	assert.True(t, res.Significant)
	assert.Less(t, res.PValue, 0.01)
	assert.InDelta(t, 0.05, res.EffectSize, 1e-9)
	assert.Less(t, res.ConfidenceInterval[0], res.EffectSize)
	assert.Greater(t, res.ConfidenceInterval[1], res.EffectSize)
	assert.Greater(t, res.ConfidenceInterval[0], 0.0)
}

func TestTwoProportionZTestEqualRates(t *testing.T) {
	res := TwoProportionZTest(100, 1000, 100, 1000, 0.95)

	assert.False(t, res.Significant)
	assert.InDelta(t, 1.0, res.PValue, 1e-9)
	assert.Equal(t, 0.0, res.EffectSize)
}

func TestTwoProportionZTestDegenerate(t *testing.T) {
	assert.Equal(t, neutralResult(), TwoProportionZTest(0, 0, 10, 100, 0.95))
	assert.Equal(t, neutralResult(), TwoProportionZTest(10, 100, 0, 0, 0.95))
	// all converted on both sides, pooled variance collapses
	assert.Equal(t, neutralResult(), TwoProportionZTest(100, 100, 50, 50, 0.95))
}

func TestTwoProportionZTestDirection(t *testing.T) {
	worse := TwoProportionZTest(150, 1000, 100, 1000, 0.95)

	assert.InDelta(t, -0.05, worse.EffectSize, 1e-9)
	assert.True(t, worse.Significant)
}

func TestWelchTTestSignificant(t *testing.T) {
	// clearly separated means, modest variance
	res := WelchTTest(10.0, 4.0, 50, 12.0, 4.0, 50, 0.95)

	assert.True(t, res.Significant)
	assert.Less(t, res.PValue, 0.001)
	assert.InDelta(t, 2.0, res.EffectSize, 1e-9)
	assert.Greater(t, res.ConfidenceInterval[0], 0.0)
}

func TestWelchTTestIdenticalSamples(t *testing.T) {
	res := WelchTTest(10.0, 4.0, 50, 10.0, 4.0, 50, 0.95)

	assert.False(t, res.Significant)
	assert.InDelta(t, 1.0, res.PValue, 1e-9)
}

func TestWelchTTestDegenerate(t *testing.T) {
	assert.Equal(t, neutralResult(), WelchTTest(10, 4, 1, 12, 4, 50, 0.95))
	assert.Equal(t, neutralResult(), WelchTTest(10, 0, 50, 12, 0, 50, 0.99))
}

func TestAlphaFallback(t *testing.T) {
	assert.InDelta(t, 0.05, alpha(0.95), 1e-12)
	assert.InDelta(t, 0.01, alpha(0.99), 1e-12)
	assert.InDelta(t, 0.05, alpha(0), 1e-12)
	assert.InDelta(t, 0.05, alpha(1.5), 1e-12)
}

func TestNormalQuantileKnownValues(t *testing.T) {
	assert.InDelta(t, 1.959964, normalQuantile(0.975), 1e-5)
	assert.InDelta(t, 2.575829, normalQuantile(0.995), 1e-5)
	assert.InDelta(t, 0.0, normalQuantile(0.5), 1e-8)
	assert.InDelta(t, -1.644854, normalQuantile(0.05), 1e-5)
	assert.True(t, math.IsInf(normalQuantile(0), -1))
	assert.True(t, math.IsInf(normalQuantile(1), 1))
}

func TestNormalQuantileInvertsCDF(t *testing.T) {
	for _, p := range []float64{0.01, 0.1, 0.3, 0.5, 0.7, 0.9, 0.975, 0.999} {
		z := normalQuantile(p)
		assert.InDelta(t, p, normalCDF(z), 1e-8, "p=%v", p)
	}
}

func TestStudentTCDF(t *testing.T) {
	assert.InDelta(t, 0.5, studentTCDF(0, 10), 1e-9)
	// large df approaches the normal
	assert.InDelta(t, normalCDF(1.96), studentTCDF(1.96, 200), 2e-3)
	// symmetry
	assert.InDelta(t, 1.0, studentTCDF(2.5, 8)+studentTCDF(-2.5, 8), 1e-9)
	assert.Equal(t, 1.0, studentTCDF(math.Inf(1), 5))
	assert.Equal(t, 0.0, studentTCDF(math.Inf(-1), 5))
}

func TestStudentTQuantile(t *testing.T) {
	// t_{0.975, 10} = 2.228
	assert.InDelta(t, 2.228, studentTQuantile(0.975, 10), 1e-3)
	// t_{0.975, 30} = 2.042
	assert.InDelta(t, 2.042, studentTQuantile(0.975, 30), 1e-3)
	assert.Equal(t, 0.0, studentTQuantile(0.5, 10))
}
