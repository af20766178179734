package learning

import (
	"context"
	"fmt"
	"testing"

	"makerLink/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorm.io/datatypes"
)

func priceChoice(session string) domain.CustomerChoice {
	return domain.CustomerChoice{
		SessionID:            session,
		OrderID:              1,
		ChosenManufacturerID: 7,
		ChosenRank:           1,
		ChoiceType:           domain.ChoiceSelected,
		CitedFactors:         datatypes.JSONSlice[string]{"price"},
	}
}

func TestUpdateConvergesToFactorCeiling(t *testing.T) {
	learner := NewLearner(NewMemoryWeightStore())
	cctx := domain.CustomerContext{PricePriority: true}

	var profile domain.WeightProfile
	prev := 0.0
	for i := 0; i < 20; i++ {
		var err error
		profile, err = learner.Update(
			context.Background(),
			priceChoice(fmt.Sprintf("sess-%d", i)),
			cctx,
			domain.ComplexityModerate,
		)
		require.NoError(t, err)

		cost := profile.Weights[domain.FactorCost]
		assert.Greater(t, cost, prev, "cost weight must rise monotonically")
		prev = cost
	}

	assert.InDelta(t, 0.2, profile.Weights[domain.FactorCost], 1e-6)
	assert.Equal(t, 20, profile.SampleSize)
	assert.Equal(t, 1.0, profile.ConfidenceScore)

	sum := 0.0
	for _, w := range profile.Weights {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)

	learned, err := learner.GetWeights(context.Background(), domain.SegmentPriceSensitive, domain.ComplexityModerate)
	require.NoError(t, err)
	require.NotNil(t, learned)
	assert.InDelta(t, 0.2, learned.Weights[domain.FactorCost], 1e-6)
}

func TestGetWeightsBelowSampleThreshold(t *testing.T) {
	learner := NewLearner(NewMemoryWeightStore())
	cctx := domain.CustomerContext{QualityPriority: true}

	for i := 0; i < 5; i++ {
		_, err := learner.Update(
			context.Background(),
			priceChoice(fmt.Sprintf("q-%d", i)),
			cctx,
			domain.ComplexityHigh,
		)
		require.NoError(t, err)
	}

	learned, err := learner.GetWeights(context.Background(), domain.SegmentQualityFocused, domain.ComplexityHigh)
	require.NoError(t, err)
	assert.Nil(t, learned)
}

func TestUpdateDeduplicatesSession(t *testing.T) {
	learner := NewLearner(NewMemoryWeightStore())
	cctx := domain.CustomerContext{}

	first, err := learner.Update(context.Background(), priceChoice("dup"), cctx, domain.ComplexitySimple)
	require.NoError(t, err)
	assert.Equal(t, 1, first.SampleSize)

	second, err := learner.Update(context.Background(), priceChoice("dup"), cctx, domain.ComplexitySimple)
	require.NoError(t, err)
	assert.Equal(t, 1, second.SampleSize)
	assert.Equal(t, first.Weights[domain.FactorCost], second.Weights[domain.FactorCost])
}

func TestUpdateIgnoresNegativeChoices(t *testing.T) {
	store := NewMemoryWeightStore()
	learner := NewLearner(store)
	cctx := domain.CustomerContext{}

	choice := domain.CustomerChoice{
		SessionID:    "neg-1",
		ChoiceType:   domain.ChoiceRejectedAll,
		CitedFactors: datatypes.JSONSlice[string]{"price"},
	}

	profile, err := learner.Update(context.Background(), choice, cctx, domain.ComplexityModerate)
	require.NoError(t, err)
	assert.Equal(t, 0, profile.SampleSize)

	stored, err := store.Get(context.Background(), domain.SegmentBalanced, domain.ComplexityModerate)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestUpdateRequiresChosenRank(t *testing.T) {
	store := NewMemoryWeightStore()
	learner := NewLearner(store)

	choice := priceChoice("no-rank")
	choice.ChosenRank = 0

	profile, err := learner.Update(context.Background(), choice, domain.CustomerContext{}, domain.ComplexityModerate)
	require.NoError(t, err)
	assert.Equal(t, 0, profile.SampleSize)
}

func TestUpdateIgnoresUnknownFactors(t *testing.T) {
	learner := NewLearner(NewMemoryWeightStore())

	choice := priceChoice("unknown-factor")
	choice.CitedFactors = datatypes.JSONSlice[string]{"vibes", "Lead_Time"}

	profile, err := learner.Update(context.Background(), choice, domain.CustomerContext{}, domain.ComplexityModerate)
	require.NoError(t, err)

	assert.Equal(t, 1, profile.SampleSize)
	assert.Greater(t, profile.Weights[domain.FactorAvailability], seedWeights()[domain.FactorAvailability]/1.05-1e-9)
	// seed mix only renormalized for the lead_time bump; cost untouched
	assert.InDelta(t, 0.10/1.05, profile.Weights[domain.FactorCost], 1e-9)
}

func TestUpdateCanceledContext(t *testing.T) {
	learner := NewLearner(NewMemoryWeightStore())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := learner.Update(ctx, priceChoice("ctx"), domain.CustomerContext{}, domain.ComplexityModerate)
	assert.Error(t, err)
}

func TestAssignSegmentPrecedence(t *testing.T) {
	cases := []struct {
		name string
		cctx domain.CustomerContext
		want domain.CustomerSegment
	}{
		{"price wins over quality", domain.CustomerContext{PricePriority: true, QualityPriority: true}, domain.SegmentPriceSensitive},
		{"quality", domain.CustomerContext{QualityPriority: true}, domain.SegmentQualityFocused},
		{"rush", domain.CustomerContext{RushOrders: true}, domain.SegmentSpeedPriority},
		{"local", domain.CustomerContext{PrefersLocal: true}, domain.SegmentLocalPreference},
		{"premium", domain.CustomerContext{PremiumBuyer: true}, domain.SegmentPremiumBuyer},
		{"no flags", domain.CustomerContext{}, domain.SegmentBalanced},
		{"quality wins over local", domain.CustomerContext{QualityPriority: true, PrefersLocal: true}, domain.SegmentQualityFocused},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AssignSegment(tc.cctx))
		})
	}
}

func TestSeedWeightsSumToOne(t *testing.T) {
	sum := 0.0
	for _, w := range seedWeights() {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestMemoryWeightStoreSnapshotIsolation(t *testing.T) {
	store := NewMemoryWeightStore()

	_, err := store.Update(context.Background(), domain.SegmentBalanced, domain.ComplexityModerate, func(p *domain.WeightProfile) {
		p.SampleSize = 3
	})
	require.NoError(t, err)

	got, err := store.Get(context.Background(), domain.SegmentBalanced, domain.ComplexityModerate)
	require.NoError(t, err)
	require.NotNil(t, got)

	got.Weights[domain.FactorCost] = 99

	again, err := store.Get(context.Background(), domain.SegmentBalanced, domain.ComplexityModerate)
	require.NoError(t, err)
	assert.NotEqual(t, 99.0, again.Weights[domain.FactorCost])
	assert.Equal(t, int64(1), again.Version)
}
