package experiment

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"makerLink/domain"
	"makerLink/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	minSampleFloor       = 20
	maxSampleCeiling     = 10000
	minEffectFloor       = 0.01
	maxEffectCeiling     = 0.5
	minConfidence        = 0.8
	maxConfidence        = 0.99
	allocationTolerance  = 1e-3
	defaultMaxDuration   = 30 // days
	strongSignificanceP  = 0.01
	futilityPValue       = 0.5
	futilitySampleFactor = 2
)

// AssignmentCache remembers which arm a session landed in so assignment
// survives process restarts. Misses are fine; assignment is deterministic
// anyway.
type AssignmentCache interface {
	GetAssignment(ctx context.Context, sessionID string) (experimentID, variant string, ok bool, err error)
	SaveAssignment(ctx context.Context, sessionID, experimentID, variant string) error
}

// CreateParams carries a new experiment definition through validation.
type CreateParams struct {
	Name              string                          `validate:"required"`
	Type              domain.ExperimentType           `validate:"required"`
	ControlConfig     domain.VariantConfig            ``
	TreatmentConfigs  map[string]domain.VariantConfig `validate:"required,min=1"`
	TrafficAllocation map[string]float64              `validate:"required,min=2"`
	PrimaryMetric     domain.MetricType               `validate:"required"`
	MinimumSampleSize int                             `validate:"min=20,max=10000"`
	MinimumEffectSize float64                         `validate:"min=0.01,max=0.5"`
	ConfidenceLevel   float64                         `validate:"min=0.8,max=0.99"`
	MaxDurationDays   int                             `validate:"min=0"`
}

// Outcome is the per-session result recorded against an experiment arm.
type Outcome struct {
	Converted         bool
	MetricValue       float64
	ChoiceType        domain.ChoiceType
	ChosenRank        int
	DecisionLatencyMS int64
}

// variantCounter accumulates per-arm observations. Writers increment under
// the mutex; Analyze takes a short snapshot and never holds writers long.
type variantCounter struct {
	mu           sync.Mutex
	participants int64
	conversions  int64
	metricSum    float64
	metricSumSq  float64
}

type counterSnapshot struct {
	participants int64
	conversions  int64
	metricSum    float64
	metricSumSq  float64
}

func (c *variantCounter) record(converted bool, metricValue float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.participants++
	if converted {
		c.conversions++
	}
	c.metricSum += metricValue
	c.metricSumSq += metricValue * metricValue
}

func (c *variantCounter) snapshot() counterSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return counterSnapshot{
		participants: c.participants,
		conversions:  c.conversions,
		metricSum:    c.metricSum,
		metricSumSq:  c.metricSumSq,
	}
}

func (s counterSnapshot) mean() float64 {
	if s.participants == 0 {
		return 0
	}
	return s.metricSum / float64(s.participants)
}

func (s counterSnapshot) variance() float64 {
	if s.participants < 2 {
		return 0
	}
	n := float64(s.participants)
	v := (s.metricSumSq - s.metricSum*s.metricSum/n) / (n - 1)
	if v < 0 {
		return 0
	}
	return v
}

// Engine manages the experiment lifecycle: draft -> active -> completed,
// with completed terminal.
type Engine struct {
	store    ExperimentStore
	cache    AssignmentCache
	validate *validator.Validate

	countersMu sync.RWMutex
	counters   map[string]map[string]*variantCounter
}

func NewEngine(store ExperimentStore, cache AssignmentCache) *Engine {
	return &Engine{
		store:    store,
		cache:    cache,
		validate: validator.New(),
		counters: make(map[string]map[string]*variantCounter),
	}
}

// Create validates the config and persists a draft. Nothing is persisted
// when validation fails.
func (e *Engine) Create(ctx context.Context, params CreateParams) (*domain.Experiment, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if err := e.validate.Struct(&params); err != nil {
		return nil, domain.NewValidationError("config", err.Error())
	}
	if err := validateExperimentType(params.Type); err != nil {
		return nil, err
	}
	if err := validateMetric(params.PrimaryMetric); err != nil {
		return nil, err
	}
	if err := validateAllocation(params.TrafficAllocation, params.TreatmentConfigs); err != nil {
		return nil, err
	}

	maxDuration := params.MaxDurationDays
	if maxDuration <= 0 {
		maxDuration = defaultMaxDuration
	}

	exp := &domain.Experiment{
		ID:                uuid.NewString(),
		Name:              params.Name,
		Type:              params.Type,
		Status:            domain.ExperimentDraft,
		ControlConfig:     params.ControlConfig,
		TreatmentConfigs:  params.TreatmentConfigs,
		TrafficAllocation: params.TrafficAllocation,
		PrimaryMetric:     params.PrimaryMetric,
		MinimumSampleSize: params.MinimumSampleSize,
		MinimumEffectSize: params.MinimumEffectSize,
		ConfidenceLevel:   params.ConfidenceLevel,
		MaxDurationDays:   maxDuration,
	}

	if err := e.store.Create(ctx, exp); err != nil {
		return nil, fmt.Errorf("persist experiment: %w", err)
	}

	logger.Info("experiment_created",
		"experiment_id", exp.ID,
		"name", exp.Name,
		"type", string(exp.Type),
		"metric", string(exp.PrimaryMetric),
	)

	return exp, nil
}

// Start transitions draft -> active and initializes zeroed per-variant
// counters.
func (e *Engine) Start(ctx context.Context, id string) (*domain.Experiment, error) {
	exp, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if exp.Status != domain.ExperimentDraft {
		return nil, domain.NewStateError("experiment", string(exp.Status), "start")
	}

	now := time.Now()
	planned := now.AddDate(0, 0, exp.MaxDurationDays)
	exp.Status = domain.ExperimentActive
	exp.StartDate = &now
	exp.PlannedEndDate = &planned

	e.countersMu.Lock()
	variants := make(map[string]*variantCounter, len(exp.TrafficAllocation))
	for v := range exp.TrafficAllocation {
		variants[v] = &variantCounter{}
	}
	e.counters[exp.ID] = variants
	e.countersMu.Unlock()

	if err := e.store.Save(ctx, exp); err != nil {
		return nil, fmt.Errorf("persist experiment: %w", err)
	}

	logger.Info("experiment_started", "experiment_id", exp.ID, "planned_end", planned)
	return exp, nil
}

// Assign resolves the sticky arm for a session. The first active experiment
// (by id) handles all sessions; sessions keep their arm for the experiment's
// lifetime.
func (e *Engine) Assign(ctx context.Context, sessionID string) (*domain.Experiment, string, error) {
	if sessionID == "" {
		return nil, "", nil
	}

	active, err := e.store.List(ctx, domain.ExperimentActive)
	if err != nil {
		return nil, "", fmt.Errorf("list active experiments: %w", err)
	}
	if len(active) == 0 {
		return nil, "", nil
	}

	if e.cache != nil {
		expID, variant, ok, err := e.cache.GetAssignment(ctx, sessionID)
		if err == nil && ok {
			for i := range active {
				if active[i].ID == expID {
					return &active[i], variant, nil
				}
			}
		}
	}

	exp := &active[0]
	variant := AssignVariant(exp.ID, sessionID, exp.TrafficAllocation)

	if e.cache != nil {
		if err := e.cache.SaveAssignment(ctx, sessionID, exp.ID, variant); err != nil {
			logger.Error("assignment cache save failed", "error", err, "session_id", sessionID)
		}
	}

	AssignmentsTotal.WithLabelValues(exp.ID, variant).Inc()
	return exp, variant, nil
}

// VariantWeights returns the weight overrides the given arm applies.
func VariantWeights(exp *domain.Experiment, variant string) domain.VariantConfig {
	if variant == domain.ControlVariant {
		return exp.ControlConfig
	}
	return exp.TreatmentConfigs[variant]
}

// RecordParticipant atomically folds one outcome into the variant's
// counters and appends the participant row. Concurrent calls never lose an
// increment.
func (e *Engine) RecordParticipant(ctx context.Context, id, sessionID, variant string, outcome Outcome) error {
	exp, err := e.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if exp.Status != domain.ExperimentActive {
		return domain.NewStateError("experiment", string(exp.Status), "record_participant")
	}
	if _, ok := exp.TrafficAllocation[variant]; !ok {
		return domain.NewValidationError("variant", fmt.Sprintf("unknown variant %q", variant))
	}

	counter := e.counter(id, variant)
	counter.record(outcome.Converted, outcome.MetricValue)

	participant := domain.ExperimentParticipant{
		ExperimentID:      id,
		SessionID:         sessionID,
		TreatmentGroup:    variant,
		Converted:         outcome.Converted,
		MetricValue:       outcome.MetricValue,
		ChoiceType:        outcome.ChoiceType,
		ChosenRank:        outcome.ChosenRank,
		DecisionLatencyMS: outcome.DecisionLatencyMS,
	}
	if err := e.store.AppendParticipant(ctx, participant); err != nil {
		return fmt.Errorf("append participant: %w", err)
	}

	ParticipantsTotal.WithLabelValues(id, variant).Inc()
	return nil
}

// Analyze runs the statistical comparison of every treatment against
// control. Permitted while active or completed; a completed experiment
// returns its frozen results. Returns nil (no error) when no participants
// have been recorded yet.
func (e *Engine) Analyze(ctx context.Context, id string) (*domain.ExperimentResults, error) {
	exp, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	switch exp.Status {
	case domain.ExperimentCompleted:
		return exp.FinalResults, nil
	case domain.ExperimentActive:
		return e.analyzeActive(ctx, exp)
	default:
		return nil, domain.NewStateError("experiment", string(exp.Status), "analyze")
	}
}

func (e *Engine) analyzeActive(ctx context.Context, exp *domain.Experiment) (*domain.ExperimentResults, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	snaps := e.snapshotCounters(exp)

	total := int64(0)
	for _, s := range snaps {
		total += s.participants
	}
	if total == 0 {
		return nil, nil
	}

	control := snaps[domain.ControlVariant]

	results := &domain.ExperimentResults{
		ExperimentID: exp.ID,
		Status:       exp.Status,
		Control:      variantAnalysisFor(domain.ControlVariant, control, neutralResult()),
		AnalyzedAt:   time.Now(),
	}

	treatments := make([]string, 0, len(snaps))
	for v := range snaps {
		if v != domain.ControlVariant {
			treatments = append(treatments, v)
		}
	}
	sort.Strings(treatments)

	var bestWinner *domain.VariantAnalysis
	bestP := math.Inf(1)

	for _, variant := range treatments {
		snap := snaps[variant]
		test := e.compare(exp, control, snap)
		analysis := variantAnalysisFor(variant, snap, test)
		results.Treatments = append(results.Treatments, analysis)

		if test.PValue < bestP {
			bestP = test.PValue
		}
		if test.Significant && test.EffectSize >= exp.MinimumEffectSize {
			if bestWinner == nil || analysis.EffectSize > bestWinner.EffectSize {
				w := analysis
				bestWinner = &w
			}
		}
	}

	switch {
	case bestWinner != nil:
		results.Winner = bestWinner.Variant
	case bestP > alpha(exp.ConfidenceLevel):
		// no signal yet; continue with control
		results.Winner = ""
	default:
		results.Winner = domain.ControlVariant
	}

	return results, nil
}

func (e *Engine) compare(exp *domain.Experiment, control, treat counterSnapshot) TestResult {
	if exp.PrimaryMetric == domain.MetricConversionRate {
		return TwoProportionZTest(
			control.conversions, control.participants,
			treat.conversions, treat.participants,
			exp.ConfidenceLevel,
		)
	}
	return WelchTTest(
		control.mean(), control.variance(), control.participants,
		treat.mean(), treat.variance(), treat.participants,
		exp.ConfidenceLevel,
	)
}

// CheckStoppingRules reports whether the experiment should stop now and why.
func (e *Engine) CheckStoppingRules(ctx context.Context, id string) (bool, string, error) {
	exp, err := e.store.Get(ctx, id)
	if err != nil {
		return false, "", err
	}
	if exp.Status != domain.ExperimentActive {
		return false, "", domain.NewStateError("experiment", string(exp.Status), "check_stopping_rules")
	}

	if exp.StartDate != nil {
		age := time.Since(*exp.StartDate)
		if age >= time.Duration(exp.MaxDurationDays)*24*time.Hour {
			return true, "max duration reached", nil
		}
	}

	results, err := e.analyzeActive(ctx, exp)
	if err != nil {
		return false, "", err
	}
	if results == nil || len(results.Treatments) == 0 {
		return false, "", nil
	}

	bestP := math.Inf(1)
	bestEffect := 0.0
	total := results.Control.Participants
	for _, t := range results.Treatments {
		total += t.Participants
		if t.PValue < bestP {
			bestP = t.PValue
			bestEffect = t.EffectSize
		}
	}

	if bestP < strongSignificanceP && math.Abs(bestEffect) > 2*exp.MinimumEffectSize {
		return true, "strong significance, stop early", nil
	}
	if bestP > futilityPValue && total > int64(futilitySampleFactor*exp.MinimumSampleSize) {
		return true, "futility, stop early", nil
	}

	return false, "", nil
}

// Stop transitions active -> completed, runs a final analysis and freezes
// it.
func (e *Engine) Stop(ctx context.Context, id, reason string) (*domain.Experiment, error) {
	exp, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if exp.Status != domain.ExperimentActive {
		return nil, domain.NewStateError("experiment", string(exp.Status), "stop")
	}

	final, err := e.analyzeActive(ctx, exp)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	exp.Status = domain.ExperimentCompleted
	exp.CompletedAt = &now
	exp.StopReason = reason
	if final != nil {
		final.Status = domain.ExperimentCompleted
		exp.FinalResults = final
	}

	if err := e.store.Save(ctx, exp); err != nil {
		return nil, fmt.Errorf("persist experiment: %w", err)
	}

	winner := ""
	if final != nil {
		winner = final.Winner
	}
	logger.Info("experiment_stopped",
		"experiment_id", exp.ID,
		"reason", reason,
		"winner", winner,
	)

	return exp, nil
}

// GetActive lists active experiments.
func (e *Engine) GetActive(ctx context.Context) ([]domain.Experiment, error) {
	return e.store.List(ctx, domain.ExperimentActive)
}

// Get loads one experiment by id.
func (e *Engine) Get(ctx context.Context, id string) (*domain.Experiment, error) {
	return e.store.Get(ctx, id)
}

// List returns experiments filtered by status; empty status lists all.
func (e *Engine) List(ctx context.Context, status domain.ExperimentStatus) ([]domain.Experiment, error) {
	return e.store.List(ctx, status)
}

func (e *Engine) counter(experimentID, variant string) *variantCounter {
	e.countersMu.Lock()
	defer e.countersMu.Unlock()

	variants, ok := e.counters[experimentID]
	if !ok {
		variants = make(map[string]*variantCounter)
		e.counters[experimentID] = variants
	}
	c, ok := variants[variant]
	if !ok {
		c = &variantCounter{}
		variants[variant] = c
	}
	return c
}

func (e *Engine) snapshotCounters(exp *domain.Experiment) map[string]counterSnapshot {
	snaps := make(map[string]counterSnapshot, len(exp.TrafficAllocation))
	for v := range exp.TrafficAllocation {
		snaps[v] = e.counter(exp.ID, v).snapshot()
	}
	return snaps
}

func variantAnalysisFor(variant string, snap counterSnapshot, test TestResult) domain.VariantAnalysis {
	return domain.VariantAnalysis{
		Variant:            variant,
		Participants:       snap.participants,
		Conversions:        snap.conversions,
		MetricMean:         snap.mean(),
		MetricStdDev:       math.Sqrt(snap.variance()),
		EffectSize:         test.EffectSize,
		PValue:             test.PValue,
		ConfidenceInterval: test.ConfidenceInterval,
		Significant:        test.Significant,
	}
}

func validateExperimentType(t domain.ExperimentType) error {
	switch t {
	case domain.ExperimentScoringWeights, domain.ExperimentRankingStrategy, domain.ExperimentCalibration:
		return nil
	}
	return domain.NewValidationError("experiment_type", fmt.Sprintf("unknown type %q", t))
}

func validateMetric(m domain.MetricType) error {
	switch m {
	case domain.MetricConversionRate, domain.MetricAvgMatchScore, domain.MetricDecisionLatency:
		return nil
	}
	return domain.NewValidationError("primary_metric", fmt.Sprintf("unknown metric %q", m))
}

func validateAllocation(allocation map[string]float64, treatments map[string]domain.VariantConfig) error {
	if _, ok := allocation[domain.ControlVariant]; !ok {
		return domain.NewValidationError("traffic_allocation", "control variant is required")
	}

	sum := 0.0
	for variant, frac := range allocation {
		if frac < 0 || frac > 1 {
			return domain.NewValidationError("traffic_allocation",
				fmt.Sprintf("allocation for %q out of [0,1]", variant))
		}
		sum += frac

		if variant == domain.ControlVariant {
			continue
		}
		if _, ok := treatments[variant]; !ok {
			return domain.NewValidationError("treatment_configs",
				fmt.Sprintf("missing config for variant %q", variant))
		}
	}

	if math.Abs(sum-1.0) > allocationTolerance {
		return domain.NewValidationError("traffic_allocation",
			fmt.Sprintf("allocations sum to %.4f, must sum to 1.0", sum))
	}
	return nil
}
