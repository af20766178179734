package domain

import (
	"time"
)

type ExperimentStatus string

const (
	ExperimentDraft     ExperimentStatus = "draft"
	ExperimentActive    ExperimentStatus = "active"
	ExperimentCompleted ExperimentStatus = "completed"
)

// ExperimentType is a closed set; unknown types are rejected at create time.
type ExperimentType string

const (
	ExperimentScoringWeights  ExperimentType = "scoring_weights"
	ExperimentRankingStrategy ExperimentType = "ranking_strategy"
	ExperimentCalibration     ExperimentType = "calibration"
)

// MetricType decides which statistical test analysis runs: conversion_rate
// gets a two-proportion z-test, continuous metrics get a Welch t-test.
type MetricType string

const (
	MetricConversionRate  MetricType = "conversion_rate"
	MetricAvgMatchScore   MetricType = "avg_match_score"
	MetricDecisionLatency MetricType = "decision_latency"
)

// ControlVariant is the reserved variant id every traffic allocation must
// include.
const ControlVariant = "control"

// VariantConfig is the weight override one experiment arm applies on top of
// the default scoring weights.
type VariantConfig map[string]float64

type Experiment struct {
	ID                string                   `gorm:"column:id;primaryKey" json:"id"`
	Name              string                   `gorm:"column:name;not null" json:"name"`
	Type              ExperimentType           `gorm:"column:experiment_type;not null" json:"experiment_type"`
	Status            ExperimentStatus         `gorm:"column:status;not null" json:"status"`
	ControlConfig     VariantConfig            `gorm:"column:control_config;serializer:json" json:"control_config"`
	TreatmentConfigs  map[string]VariantConfig `gorm:"column:treatment_configs;serializer:json" json:"treatment_configs"`
	TrafficAllocation map[string]float64       `gorm:"column:traffic_allocation;serializer:json" json:"traffic_allocation"`
	PrimaryMetric     MetricType               `gorm:"column:primary_metric;not null" json:"primary_metric"`
	MinimumSampleSize int                      `gorm:"column:minimum_sample_size" json:"minimum_sample_size"`
	MinimumEffectSize float64                  `gorm:"column:minimum_effect_size" json:"minimum_effect_size"`
	ConfidenceLevel   float64                  `gorm:"column:confidence_level" json:"confidence_level"`
	MaxDurationDays   int                      `gorm:"column:max_duration_days" json:"max_duration_days"`
	StartDate         *time.Time               `gorm:"column:start_date" json:"start_date,omitempty"`
	PlannedEndDate    *time.Time               `gorm:"column:planned_end_date" json:"planned_end_date,omitempty"`
	CompletedAt       *time.Time               `gorm:"column:completed_at" json:"completed_at,omitempty"`
	StopReason        string                   `gorm:"column:stop_reason" json:"stop_reason,omitempty"`
	FinalResults      *ExperimentResults       `gorm:"column:final_results;serializer:json" json:"final_results,omitempty"`
	CreatedAt         time.Time                `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time                `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Experiment) TableName() string {
	return "experiments"
}

// ExperimentParticipant is one session assigned to one experiment arm,
// carrying the same outcome fields as CustomerChoice.
type ExperimentParticipant struct {
	ID                uint64     `gorm:"primaryKey" json:"id"`
	ExperimentID      string     `gorm:"column:experiment_id;index;not null" json:"experiment_id"`
	SessionID         string     `gorm:"column:session_id;index;not null" json:"session_id"`
	TreatmentGroup    string     `gorm:"column:treatment_group;not null" json:"treatment_group"`
	Converted         bool       `gorm:"column:converted" json:"converted"`
	MetricValue       float64    `gorm:"column:metric_value" json:"metric_value"`
	ChoiceType        ChoiceType `gorm:"column:choice_type" json:"choice_type"`
	ChosenRank        int        `gorm:"column:chosen_rank" json:"chosen_rank"`
	DecisionLatencyMS int64      `gorm:"column:decision_latency_ms" json:"decision_latency_ms"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (ExperimentParticipant) TableName() string {
	return "experiment_participants"
}

// VariantAnalysis is the per-arm slice of an analysis: observed counts, the
// test statistic against control, and the decision inputs derived from it.
type VariantAnalysis struct {
	Variant            string     `json:"variant"`
	Participants       int64      `json:"participants"`
	Conversions        int64      `json:"conversions"`
	MetricMean         float64    `json:"metric_mean"`
	MetricStdDev       float64    `json:"metric_std_dev"`
	EffectSize         float64    `json:"effect_size"`
	PValue             float64    `json:"p_value"`
	ConfidenceInterval [2]float64 `json:"confidence_interval"`
	Significant        bool       `json:"significant"`
}

// ExperimentResults is the outcome of one analyze() pass. Winner semantics:
// a treatment id when one is significant with a large enough effect,
// ControlVariant when treatments significantly underperform, and empty when
// the data says keep collecting.
type ExperimentResults struct {
	ExperimentID string            `json:"experiment_id"`
	Status       ExperimentStatus  `json:"status"`
	Control      VariantAnalysis   `json:"control"`
	Treatments   []VariantAnalysis `json:"treatments"`
	Winner       string            `json:"winner,omitempty"`
	AnalyzedAt   time.Time         `json:"analyzed_at"`
}
