package personalization

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"makerLink/business/experiment"
	"makerLink/business/learning"
	"makerLink/business/matching"
	"makerLink/domain"
	"makerLink/pkg/logger"
)

// MatchHistoryRepository persists the append-only audit trail of matching
// runs and the choices made against them.
type MatchHistoryRepository interface {
	SaveScores(ctx context.Context, scores []domain.MatchScore) error
	SaveChoice(ctx context.Context, choice domain.CustomerChoice) error
}

// RankedMatches is one matching run: the ordered scores plus the weight
// provenance that produced them.
type RankedMatches struct {
	SessionID    string                 `json:"session_id"`
	Segment      domain.CustomerSegment `json:"segment"`
	WeightSource string                 `json:"weight_source"`
	ExperimentID string                 `json:"experiment_id,omitempty"`
	Variant      string                 `json:"variant,omitempty"`
	Matches      []domain.MatchScore    `json:"matches"`
}

// Orchestrator composes the matcher, the weight learner and the experiment
// engine into the two operations collaborators call: rank candidates for an
// order, and feed the observed outcome back.
type Orchestrator struct {
	composer    *matching.Composer
	learner     *learning.Learner
	experiments *experiment.Engine
	historyRepo MatchHistoryRepository
}

func NewOrchestrator(
	composer *matching.Composer,
	learner *learning.Learner,
	experiments *experiment.Engine,
	historyRepo MatchHistoryRepository,
) *Orchestrator {
	return &Orchestrator{
		composer:    composer,
		learner:     learner,
		experiments: experiments,
		historyRepo: historyRepo,
	}
}

// GetRankedMatches scores every candidate against the order under the
// effective weight profile and returns them ranked. Given the same weight
// snapshot the ordering is identical across calls: ties break by
// confidence, then manufacturer id.
func (o *Orchestrator) GetRankedMatches(
	ctx context.Context,
	order domain.OrderRequirement,
	candidates []domain.ManufacturerCapability,
	cctx domain.CustomerContext,
) (*RankedMatches, error) {

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	segment := learning.AssignSegment(cctx)

	weights, provenance, err := o.resolveWeights(ctx, segment, order.Complexity, cctx.SessionID)
	if err != nil {
		return nil, err
	}

	logger.Debug("matching_run",
		"session_id", cctx.SessionID,
		"order_id", order.OrderID,
		"segment", string(segment),
		"weight_source", provenance.source,
		"candidates", len(candidates),
	)

	scores := make([]domain.MatchScore, 0, len(candidates))
	for _, capability := range candidates {
		score := o.composer.Compose(order, capability, weights)
		score.SessionID = cctx.SessionID
		score.WeightSource = provenance.source
		scores = append(scores, score)
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].CompositeScore != scores[j].CompositeScore {
			return scores[i].CompositeScore > scores[j].CompositeScore
		}
		if scores[i].Confidence != scores[j].Confidence {
			return scores[i].Confidence > scores[j].Confidence
		}
		return scores[i].ManufacturerID < scores[j].ManufacturerID
	})
	for i := range scores {
		scores[i].Rank = i + 1
	}

	if o.historyRepo != nil && len(scores) > 0 {
		if err := o.historyRepo.SaveScores(ctx, scores); err != nil {
			return nil, fmt.Errorf("persist match scores: %w", err)
		}
	}

	matching.MatchRunsTotal.WithLabelValues(provenance.source).Inc()
	matching.CandidatesScoredTotal.Add(float64(len(candidates)))

	return &RankedMatches{
		SessionID:    cctx.SessionID,
		Segment:      segment,
		WeightSource: provenance.source,
		ExperimentID: provenance.experimentID,
		Variant:      provenance.variant,
		Matches:      scores,
	}, nil
}

// RecordOutcome fans one customer choice out to the weight learner and, when
// the session belongs to an experiment arm, to the experiment counters.
func (o *Orchestrator) RecordOutcome(
	ctx context.Context,
	choice domain.CustomerChoice,
	cctx domain.CustomerContext,
	complexity domain.ComplexityLevel,
) error {

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	if choice.SessionID == "" {
		return domain.NewValidationError("session_id", "required")
	}
	if err := validateChoiceType(choice.ChoiceType); err != nil {
		return err
	}

	if o.historyRepo != nil {
		if err := o.historyRepo.SaveChoice(ctx, choice); err != nil {
			return fmt.Errorf("persist choice: %w", err)
		}
	}

	if _, err := o.learner.Update(ctx, choice, cctx, complexity); err != nil {
		return fmt.Errorf("weight update: %w", err)
	}

	exp, variant, err := o.experiments.Assign(ctx, choice.SessionID)
	if err != nil {
		return fmt.Errorf("resolve experiment assignment: %w", err)
	}
	if exp == nil {
		return nil
	}

	outcome := outcomeFromChoice(choice, exp.PrimaryMetric)
	if err := o.experiments.RecordParticipant(ctx, exp.ID, choice.SessionID, variant, outcome); err != nil {
		// the experiment may have completed between assignment and outcome;
		// the learning signal was already applied
		var stateErr *domain.StateError
		if errors.As(err, &stateErr) {
			logger.Debug("outcome after experiment completed",
				"experiment_id", exp.ID,
				"session_id", choice.SessionID,
			)
			return nil
		}
		return fmt.Errorf("record participant: %w", err)
	}

	return nil
}

type weightProvenance struct {
	source       string
	experimentID string
	variant      string
}

// resolveWeights picks the effective profile: an experiment-arm override
// first, then a confidently learned segment profile, then defaults.
func (o *Orchestrator) resolveWeights(
	ctx context.Context,
	segment domain.CustomerSegment,
	complexity domain.ComplexityLevel,
	sessionID string,
) (map[string]float64, weightProvenance, error) {

	exp, variant, err := o.experiments.Assign(ctx, sessionID)
	if err != nil {
		return nil, weightProvenance{}, fmt.Errorf("experiment assignment: %w", err)
	}
	if exp != nil && exp.Type == domain.ExperimentScoringWeights {
		overrides := experiment.VariantWeights(exp, variant)
		if len(overrides) > 0 {
			return mergeWeights(overrides), weightProvenance{
				source:       domain.WeightSourceExperiment,
				experimentID: exp.ID,
				variant:      variant,
			}, nil
		}
		// an arm without overrides still participates, scored on defaults
		return nil, weightProvenance{
			source:       domain.WeightSourceExperiment,
			experimentID: exp.ID,
			variant:      variant,
		}, nil
	}

	profile, err := o.learner.GetWeights(ctx, segment, complexity)
	if err != nil {
		return nil, weightProvenance{}, fmt.Errorf("load weight profile: %w", err)
	}
	if profile != nil {
		return profile.Weights, weightProvenance{source: domain.WeightSourceLearned}, nil
	}

	return nil, weightProvenance{source: domain.WeightSourceDefault}, nil
}

// mergeWeights lays variant overrides over the default attribute weights.
func mergeWeights(overrides domain.VariantConfig) map[string]float64 {
	weights := matching.DefaultWeights()
	for k, v := range overrides {
		weights[k] = v
	}
	return weights
}

func outcomeFromChoice(choice domain.CustomerChoice, metric domain.MetricType) experiment.Outcome {
	converted := choice.ChoiceType == domain.ChoiceSelected || choice.ChoiceType == domain.ChoiceContacted

	var metricValue float64
	switch metric {
	case domain.MetricConversionRate:
		if converted {
			metricValue = 1
		}
	case domain.MetricDecisionLatency:
		metricValue = float64(choice.DecisionLatencyMS)
	case domain.MetricAvgMatchScore:
		if v, ok := choice.Context["composite_score"].(float64); ok {
			metricValue = v
		}
	}

	return experiment.Outcome{
		Converted:         converted,
		MetricValue:       metricValue,
		ChoiceType:        choice.ChoiceType,
		ChosenRank:        choice.ChosenRank,
		DecisionLatencyMS: choice.DecisionLatencyMS,
	}
}

func validateChoiceType(t domain.ChoiceType) error {
	switch t {
	case domain.ChoiceSelected, domain.ChoiceContacted, domain.ChoiceRejectedAll, domain.ChoiceAbandoned:
		return nil
	}
	return domain.NewValidationError("choice_type", fmt.Sprintf("unknown choice type %q", t))
}
