package domain

import (
	"time"

	"gorm.io/datatypes"
)

type CustomerSegment string

const (
	SegmentPriceSensitive  CustomerSegment = "price_sensitive"
	SegmentQualityFocused  CustomerSegment = "quality_focused"
	SegmentSpeedPriority   CustomerSegment = "speed_priority"
	SegmentLocalPreference CustomerSegment = "local_preference"
	SegmentPremiumBuyer    CustomerSegment = "premium_buyer"
	SegmentBalanced        CustomerSegment = "balanced"
)

// Behavioral factor keys a customer can cite when making a choice. They live
// in the same weight map as the matching attributes.
const (
	FactorCost         = "cost"
	FactorQuality      = "quality"
	FactorGeographic   = "geographic"
	FactorAvailability = "availability"
)

// WeightProfile holds the learned scoring weights for one
// (segment, complexity) key. Mutated only by the weight learner; the version
// column backs the optimistic read-modify-write in the postgres store.
type WeightProfile struct {
	Segment         CustomerSegment    `gorm:"column:segment;primaryKey" json:"segment"`
	Complexity      ComplexityLevel    `gorm:"column:complexity_level;primaryKey" json:"complexity_level"`
	Weights         map[string]float64 `gorm:"column:weights;serializer:json" json:"weights"`
	SampleSize      int                `gorm:"column:sample_size" json:"sample_size"`
	ConfidenceScore float64            `gorm:"column:confidence_score" json:"confidence_score"`
	Version         int64              `gorm:"column:version" json:"version"`
	LastUpdated     time.Time          `gorm:"column:last_updated" json:"last_updated"`
}

func (WeightProfile) TableName() string {
	return "weight_profiles"
}

type ChoiceType string

const (
	ChoiceSelected    ChoiceType = "selected"
	ChoiceContacted   ChoiceType = "contacted"
	ChoiceRejectedAll ChoiceType = "rejected_all"
	ChoiceAbandoned   ChoiceType = "abandoned"
)

// CustomerChoice is the observed outcome of one matching session. Created
// once, immutable; triggers one weight update and one experiment update.
type CustomerChoice struct {
	ID                   uint64                      `gorm:"primaryKey" json:"id"`
	SessionID            string                      `gorm:"column:session_id;index;not null" json:"session_id"`
	OrderID              uint64                      `gorm:"column:order_id" json:"order_id"`
	ChosenManufacturerID uint64                      `gorm:"column:chosen_manufacturer_id" json:"chosen_manufacturer_id"`
	ChosenRank           int                         `gorm:"column:chosen_rank" json:"chosen_rank"`
	ChoiceType           ChoiceType                  `gorm:"column:choice_type;not null" json:"choice_type"`
	CitedFactors         datatypes.JSONSlice[string] `gorm:"column:cited_factors" json:"cited_factors"`
	DecisionLatencyMS    int64                       `gorm:"column:decision_latency_ms" json:"decision_latency_ms"`
	Context              datatypes.JSONMap           `gorm:"column:context;type:jsonb" json:"context"`
	CreatedAt            time.Time                   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (CustomerChoice) TableName() string {
	return "customer_choices"
}

// CustomerContext carries the preference flags and session identity a
// matching request arrives with. Segment assignment is a pure function over
// the flags.
type CustomerContext struct {
	CustomerID      uint   `json:"customer_id"`
	SessionID       string `json:"session_id"`
	PricePriority   bool   `json:"price_priority"`
	QualityPriority bool   `json:"quality_priority"`
	RushOrders      bool   `json:"rush_orders"`
	PrefersLocal    bool   `json:"prefers_local"`
	PremiumBuyer    bool   `json:"premium_buyer"`
}
