package learning

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"makerLink/domain"
	"makerLink/pkg/logger"
)

const (
	// Fixed learning-rate step for a cited factor.
	learningRate = 0.05

	// A profile overrides defaults only past both thresholds.
	minSampleSize       = 10
	confidenceThreshold = 0.7

	// confidence_score = min(1, sample_size / confidenceSamples)
	confidenceSamples = 20

	// Bound on the choice dedupe set.
	maxSeenSessions = 10000
)

// Per-factor weight ceilings.
var factorCeilings = map[string]float64{
	domain.FactorCost:         0.20,
	domain.FactorQuality:      0.30,
	domain.FactorGeographic:   0.30,
	domain.FactorAvailability: 0.15,
}

// factorAliases maps the free-text factors customers cite onto weight keys.
// Unknown factors are ignored.
var factorAliases = map[string]string{
	"price":          domain.FactorCost,
	"cost":           domain.FactorCost,
	"budget":         domain.FactorCost,
	"quality":        domain.FactorQuality,
	"certifications": domain.FactorQuality,
	"rating":         domain.FactorQuality,
	"location":       domain.FactorGeographic,
	"proximity":      domain.FactorGeographic,
	"distance":       domain.FactorGeographic,
	"local":          domain.FactorGeographic,
	"speed":          domain.FactorAvailability,
	"lead_time":      domain.FactorAvailability,
	"availability":   domain.FactorAvailability,
	"capacity":       domain.FactorAvailability,
}

// seedWeights is the starting weight distribution for a fresh profile:
// the four matching attributes plus the four behavioral factors, summing
// to 1.0.
func seedWeights() map[string]float64 {
	return map[string]float64{
		domain.AttrProcess:        0.30,
		domain.AttrMaterial:       0.20,
		domain.AttrIndustry:       0.10,
		domain.AttrCertifications: 0.05,
		domain.FactorCost:         0.10,
		domain.FactorQuality:      0.10,
		domain.FactorGeographic:   0.10,
		domain.FactorAvailability: 0.05,
	}
}

// Learner maintains per-(segment, complexity) weight profiles from observed
// customer choices.
type Learner struct {
	store WeightStore

	seenMu sync.Mutex
	seen   map[string]struct{}
}

func NewLearner(store WeightStore) *Learner {
	return &Learner{
		store: store,
		seen:  make(map[string]struct{}),
	}
}

// Update folds one customer choice into the profile for the session's
// (segment, complexity) key. Processing the same session twice is a no-op,
// so retried deliveries cannot double-count.
func (l *Learner) Update(
	ctx context.Context,
	choice domain.CustomerChoice,
	cctx domain.CustomerContext,
	complexity domain.ComplexityLevel,
) (domain.WeightProfile, error) {

	if err := ctx.Err(); err != nil {
		return domain.WeightProfile{}, fmt.Errorf("context error: %w", err)
	}

	segment := AssignSegment(cctx)

	if !l.markSeen(choice.SessionID) {
		current, err := l.store.Get(ctx, segment, complexity)
		if err != nil {
			return domain.WeightProfile{}, err
		}
		if current != nil {
			return *current, nil
		}
		return NewProfile(segment, complexity), nil
	}

	if !isLearningSignal(choice) {
		current, err := l.store.Get(ctx, segment, complexity)
		if err != nil {
			return domain.WeightProfile{}, err
		}
		if current != nil {
			return *current, nil
		}
		return NewProfile(segment, complexity), nil
	}

	updated, err := l.store.Update(ctx, segment, complexity, func(p *domain.WeightProfile) {
		for _, factor := range choice.CitedFactors {
			key, ok := factorAliases[strings.ToLower(strings.TrimSpace(factor))]
			if !ok {
				continue
			}
			w := p.Weights[key] + learningRate
			if ceiling := factorCeilings[key]; w > ceiling {
				w = ceiling
			}
			p.Weights[key] = w
		}
		normalizeWeights(p.Weights)

		p.SampleSize++
		p.ConfidenceScore = float64(p.SampleSize) / confidenceSamples
		if p.ConfidenceScore > 1 {
			p.ConfidenceScore = 1
		}
	})
	if err != nil {
		return domain.WeightProfile{}, fmt.Errorf("update weight profile: %w", err)
	}

	logger.Debug("weight_profile_updated",
		"segment", string(segment),
		"complexity", string(complexity),
		"sample_size", updated.SampleSize,
		"confidence", updated.ConfidenceScore,
	)

	ChoiceEventsTotal.WithLabelValues(string(segment), string(choice.ChoiceType)).Inc()

	return updated, nil
}

// GetWeights returns the profile for the key when it is confident enough to
// override defaults, nil otherwise.
func (l *Learner) GetWeights(
	ctx context.Context,
	segment domain.CustomerSegment,
	complexity domain.ComplexityLevel,
) (*domain.WeightProfile, error) {
	profile, err := l.store.Get(ctx, segment, complexity)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, nil
	}
	if profile.SampleSize < minSampleSize || profile.ConfidenceScore < confidenceThreshold {
		return nil, nil
	}
	return profile, nil
}

// Only positive choices with a known rank carry a learning signal.
func isLearningSignal(choice domain.CustomerChoice) bool {
	if choice.ChosenRank <= 0 {
		return false
	}
	return choice.ChoiceType == domain.ChoiceSelected || choice.ChoiceType == domain.ChoiceContacted
}

func (l *Learner) markSeen(sessionID string) bool {
	if sessionID == "" {
		return true
	}

	l.seenMu.Lock()
	defer l.seenMu.Unlock()

	if _, ok := l.seen[sessionID]; ok {
		return false
	}
	if len(l.seen) >= maxSeenSessions {
		l.seen = make(map[string]struct{})
	}
	l.seen[sessionID] = struct{}{}
	return true
}

// normalizeWeights rescales in place so the map sums to 1.0.
func normalizeWeights(weights map[string]float64) {
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if sum <= 0 {
		return
	}
	for k, w := range weights {
		weights[k] = w / sum
	}
}
