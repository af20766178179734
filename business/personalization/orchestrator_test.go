package personalization

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"makerLink/business/experiment"
	"makerLink/business/learning"
	"makerLink/business/matching"
	"makerLink/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorm.io/datatypes"
)

type fakeHistoryRepo struct {
	scores    [][]domain.MatchScore
	choices   []domain.CustomerChoice
	choiceErr error
}

func (f *fakeHistoryRepo) SaveScores(_ context.Context, scores []domain.MatchScore) error {
	f.scores = append(f.scores, scores)
	return nil
}

func (f *fakeHistoryRepo) SaveChoice(_ context.Context, choice domain.CustomerChoice) error {
	if f.choiceErr != nil {
		return f.choiceErr
	}
	f.choices = append(f.choices, choice)
	return nil
}

type testRig struct {
	orchestrator *Orchestrator
	learner      *learning.Learner
	engine       *experiment.Engine
	history      *fakeHistoryRepo
}

func newTestRig() *testRig {
	history := &fakeHistoryRepo{}
	learner := learning.NewLearner(learning.NewMemoryWeightStore())
	engine := experiment.NewEngine(experiment.NewMemoryExperimentStore(), nil)
	orchestrator := NewOrchestrator(
		matching.NewComposer(matching.NewMatcher()),
		learner,
		engine,
		history,
	)
	return &testRig{orchestrator: orchestrator, learner: learner, engine: engine, history: history}
}

func machiningOrder() domain.OrderRequirement {
	return domain.OrderRequirement{
		OrderID:              1,
		ManufacturingProcess: "CNC Machining",
		Material:             "Aluminum 6061",
		Complexity:           domain.ComplexityModerate,
	}
}

func rankingCandidates() []domain.ManufacturerCapability {
	return []domain.ManufacturerCapability{
		{
			ManufacturerID:         3,
			ManufacturingProcesses: datatypes.JSONSlice[string]{"Sand Casting"},
			Materials:              datatypes.JSONSlice[string]{"Cast Iron"},
		},
		{
			ManufacturerID:         1,
			ManufacturingProcesses: datatypes.JSONSlice[string]{"CNC Machining"},
			Materials:              datatypes.JSONSlice[string]{"Aluminum 6061"},
		},
		{
			ManufacturerID:         2,
			ManufacturingProcesses: datatypes.JSONSlice[string]{"Precision Machining"},
			Materials:              datatypes.JSONSlice[string]{"Aluminum 6061"},
		},
	}
}

func TestGetRankedMatchesOrdering(t *testing.T) {
	rig := newTestRig()

	ranked, err := rig.orchestrator.GetRankedMatches(
		context.Background(),
		machiningOrder(),
		rankingCandidates(),
		domain.CustomerContext{SessionID: "sess-rank"},
	)
	require.NoError(t, err)

	require.Len(t, ranked.Matches, 3)
	assert.Equal(t, domain.WeightSourceDefault, ranked.WeightSource)
	assert.Equal(t, domain.SegmentBalanced, ranked.Segment)

	assert.Equal(t, uint64(1), ranked.Matches[0].ManufacturerID)
	assert.Equal(t, uint64(2), ranked.Matches[1].ManufacturerID)
	assert.Equal(t, uint64(3), ranked.Matches[2].ManufacturerID)

	for i, m := range ranked.Matches {
		assert.Equal(t, i+1, m.Rank)
		assert.Equal(t, "sess-rank", m.SessionID)
		assert.Equal(t, domain.WeightSourceDefault, m.WeightSource)
		if i > 0 {
			assert.GreaterOrEqual(t, ranked.Matches[i-1].CompositeScore, m.CompositeScore)
		}
	}

	require.Len(t, rig.history.scores, 1)
	assert.Len(t, rig.history.scores[0], 3)
}

func TestGetRankedMatchesDeterministic(t *testing.T) {
	rig := newTestRig()
	cctx := domain.CustomerContext{SessionID: "sess-det"}

	first, err := rig.orchestrator.GetRankedMatches(context.Background(), machiningOrder(), rankingCandidates(), cctx)
	require.NoError(t, err)
	second, err := rig.orchestrator.GetRankedMatches(context.Background(), machiningOrder(), rankingCandidates(), cctx)
	require.NoError(t, err)

	require.Equal(t, len(first.Matches), len(second.Matches))
	for i := range first.Matches {
		assert.Equal(t, first.Matches[i].ManufacturerID, second.Matches[i].ManufacturerID)
		assert.Equal(t, first.Matches[i].CompositeScore, second.Matches[i].CompositeScore)
	}
}

func TestGetRankedMatchesTieBreakByID(t *testing.T) {
	rig := newTestRig()

	twins := []domain.ManufacturerCapability{
		{
			ManufacturerID:         9,
			ManufacturingProcesses: datatypes.JSONSlice[string]{"CNC Machining"},
			Materials:              datatypes.JSONSlice[string]{"Aluminum 6061"},
		},
		{
			ManufacturerID:         4,
			ManufacturingProcesses: datatypes.JSONSlice[string]{"CNC Machining"},
			Materials:              datatypes.JSONSlice[string]{"Aluminum 6061"},
		},
	}

	ranked, err := rig.orchestrator.GetRankedMatches(
		context.Background(), machiningOrder(), twins, domain.CustomerContext{SessionID: "sess-tie"})
	require.NoError(t, err)

	require.Len(t, ranked.Matches, 2)
	assert.Equal(t, uint64(4), ranked.Matches[0].ManufacturerID)
	assert.Equal(t, uint64(9), ranked.Matches[1].ManufacturerID)
}

func TestGetRankedMatchesEmptyCandidates(t *testing.T) {
	rig := newTestRig()

	ranked, err := rig.orchestrator.GetRankedMatches(
		context.Background(), machiningOrder(), nil, domain.CustomerContext{SessionID: "sess-empty"})
	require.NoError(t, err)

	assert.Empty(t, ranked.Matches)
	assert.Empty(t, rig.history.scores)
}

func TestGetRankedMatchesLearnedProvenance(t *testing.T) {
	rig := newTestRig()
	cctx := domain.CustomerContext{SessionID: "sess-learned", PricePriority: true}

	for i := 0; i < 20; i++ {
		_, err := rig.learner.Update(context.Background(), domain.CustomerChoice{
			SessionID:    fmt.Sprintf("train-%d", i),
			ChosenRank:   1,
			ChoiceType:   domain.ChoiceSelected,
			CitedFactors: datatypes.JSONSlice[string]{"price"},
		}, cctx, domain.ComplexityModerate)
		require.NoError(t, err)
	}

	ranked, err := rig.orchestrator.GetRankedMatches(
		context.Background(), machiningOrder(), rankingCandidates(), cctx)
	require.NoError(t, err)

	assert.Equal(t, domain.WeightSourceLearned, ranked.WeightSource)
	assert.Equal(t, domain.SegmentPriceSensitive, ranked.Segment)
}

func startScoringExperiment(t *testing.T, engine *experiment.Engine) *domain.Experiment {
	t.Helper()
	exp, err := engine.Create(context.Background(), experiment.CreateParams{
		Name:          "material bump",
		Type:          domain.ExperimentScoringWeights,
		ControlConfig: domain.VariantConfig{},
		TreatmentConfigs: map[string]domain.VariantConfig{
			"material_heavy": {domain.AttrMaterial: 0.5, domain.AttrProcess: 0.3},
		},
		TrafficAllocation: map[string]float64{
			domain.ControlVariant: 0.5,
			"material_heavy":      0.5,
		},
		PrimaryMetric:     domain.MetricConversionRate,
		MinimumSampleSize: 100,
		MinimumEffectSize: 0.02,
		ConfidenceLevel:   0.95,
	})
	require.NoError(t, err)
	_, err = engine.Start(context.Background(), exp.ID)
	require.NoError(t, err)
	return exp
}

func TestGetRankedMatchesExperimentProvenance(t *testing.T) {
	rig := newTestRig()
	exp := startScoringExperiment(t, rig.engine)

	ranked, err := rig.orchestrator.GetRankedMatches(
		context.Background(), machiningOrder(), rankingCandidates(),
		domain.CustomerContext{SessionID: "sess-exp"})
	require.NoError(t, err)

	assert.Equal(t, domain.WeightSourceExperiment, ranked.WeightSource)
	assert.Equal(t, exp.ID, ranked.ExperimentID)
	assert.Contains(t, []string{domain.ControlVariant, "material_heavy"}, ranked.Variant)
	for _, m := range ranked.Matches {
		assert.Equal(t, domain.WeightSourceExperiment, m.WeightSource)
	}
}

func TestRecordOutcomeValidation(t *testing.T) {
	rig := newTestRig()

	err := rig.orchestrator.RecordOutcome(context.Background(), domain.CustomerChoice{
		ChoiceType: domain.ChoiceSelected,
	}, domain.CustomerContext{}, domain.ComplexityModerate)
	var verr *domain.ValidationError
	assert.True(t, errors.As(err, &verr), "missing session id")

	err = rig.orchestrator.RecordOutcome(context.Background(), domain.CustomerChoice{
		SessionID:  "sess-bad-type",
		ChoiceType: "window_shopping",
	}, domain.CustomerContext{}, domain.ComplexityModerate)
	assert.True(t, errors.As(err, &verr), "unknown choice type")

	assert.Empty(t, rig.history.choices)
}

func TestRecordOutcomeFanOut(t *testing.T) {
	rig := newTestRig()
	exp := startScoringExperiment(t, rig.engine)

	choice := domain.CustomerChoice{
		SessionID:            "sess-fanout",
		OrderID:              1,
		ChosenManufacturerID: 1,
		ChosenRank:           1,
		ChoiceType:           domain.ChoiceSelected,
		CitedFactors:         datatypes.JSONSlice[string]{"price"},
	}

	err := rig.orchestrator.RecordOutcome(
		context.Background(), choice, domain.CustomerContext{}, domain.ComplexityModerate)
	require.NoError(t, err)

	require.Len(t, rig.history.choices, 1)
	assert.Equal(t, "sess-fanout", rig.history.choices[0].SessionID)

	results, err := rig.engine.Analyze(context.Background(), exp.ID)
	require.NoError(t, err)
	require.NotNil(t, results)

	total := results.Control.Participants
	conversions := results.Control.Conversions
	for _, tr := range results.Treatments {
		total += tr.Participants
		conversions += tr.Conversions
	}
	assert.Equal(t, int64(1), total)
	assert.Equal(t, int64(1), conversions)
}

func TestRecordOutcomeWithoutExperiment(t *testing.T) {
	rig := newTestRig()

	err := rig.orchestrator.RecordOutcome(context.Background(), domain.CustomerChoice{
		SessionID:  "sess-plain",
		ChosenRank: 1,
		ChoiceType: domain.ChoiceContacted,
	}, domain.CustomerContext{}, domain.ComplexityModerate)
	require.NoError(t, err)

	assert.Len(t, rig.history.choices, 1)
}

func TestRecordOutcomeAfterExperimentCompleted(t *testing.T) {
	rig := newTestRig()
	exp := startScoringExperiment(t, rig.engine)

	// complete the experiment between assignment resolution and the outcome
	_, err := rig.engine.Stop(context.Background(), exp.ID, "done")
	require.NoError(t, err)

	err = rig.orchestrator.RecordOutcome(context.Background(), domain.CustomerChoice{
		SessionID:  "sess-late",
		ChosenRank: 1,
		ChoiceType: domain.ChoiceSelected,
	}, domain.CustomerContext{}, domain.ComplexityModerate)

	assert.NoError(t, err, "completed experiment must not fail the outcome")
}

func TestRecordOutcomeHistoryFailure(t *testing.T) {
	rig := newTestRig()
	rig.history.choiceErr = errors.New("db down")

	err := rig.orchestrator.RecordOutcome(context.Background(), domain.CustomerChoice{
		SessionID:  "sess-db-down",
		ChoiceType: domain.ChoiceAbandoned,
	}, domain.CustomerContext{}, domain.ComplexityModerate)

	assert.Error(t, err)
}

func TestOutcomeFromChoice(t *testing.T) {
	selected := domain.CustomerChoice{
		ChoiceType:        domain.ChoiceSelected,
		ChosenRank:        2,
		DecisionLatencyMS: 4500,
		Context:           datatypes.JSONMap{"composite_score": 0.82},
	}

	conv := outcomeFromChoice(selected, domain.MetricConversionRate)
	assert.True(t, conv.Converted)
	assert.Equal(t, 1.0, conv.MetricValue)

	latency := outcomeFromChoice(selected, domain.MetricDecisionLatency)
	assert.Equal(t, 4500.0, latency.MetricValue)

	score := outcomeFromChoice(selected, domain.MetricAvgMatchScore)
	assert.Equal(t, 0.82, score.MetricValue)

	rejected := outcomeFromChoice(domain.CustomerChoice{ChoiceType: domain.ChoiceRejectedAll}, domain.MetricConversionRate)
	assert.False(t, rejected.Converted)
	assert.Equal(t, 0.0, rejected.MetricValue)
}
