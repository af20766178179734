package domain

import (
	"time"

	"gorm.io/datatypes"
)

type ComplexityLevel string

const (
	ComplexitySimple   ComplexityLevel = "simple"
	ComplexityModerate ComplexityLevel = "moderate"
	ComplexityHigh     ComplexityLevel = "high"
	ComplexityCritical ComplexityLevel = "critical"
)

// Attribute keys shared by OrderRequirement, ManufacturerCapability and
// the weight profiles that score them.
const (
	AttrProcess        = "manufacturing_process"
	AttrMaterial       = "material"
	AttrIndustry       = "industry_category"
	AttrCertifications = "certifications"
)

// OrderRequirement is the technical side of an order. Immutable once a
// matching run starts.
type OrderRequirement struct {
	OrderID              uint64                       `gorm:"column:order_id;primaryKey" json:"order_id"`
	ManufacturingProcess string                       `gorm:"column:manufacturing_process" json:"manufacturing_process"`
	Material             string                       `gorm:"column:material" json:"material"`
	IndustryCategory     string                       `gorm:"column:industry_category" json:"industry_category"`
	Certifications       datatypes.JSONSlice[string]  `gorm:"column:certifications" json:"certifications"`
	Complexity           ComplexityLevel              `gorm:"column:complexity_level" json:"complexity_level"`
}

func (OrderRequirement) TableName() string {
	return "order_requirements"
}

// ManufacturerCapability is the declared capability set of one manufacturer
// profile. Read-only input to matching.
type ManufacturerCapability struct {
	ManufacturerID         uint64                      `gorm:"column:manufacturer_id;primaryKey" json:"manufacturer_id"`
	ManufacturingProcesses datatypes.JSONSlice[string] `gorm:"column:manufacturing_processes" json:"manufacturing_processes"`
	Materials              datatypes.JSONSlice[string] `gorm:"column:materials" json:"materials"`
	IndustriesServed       datatypes.JSONSlice[string] `gorm:"column:industries_served" json:"industries_served"`
	Certifications         datatypes.JSONSlice[string] `gorm:"column:certifications" json:"certifications"`
	UpdatedAt              time.Time                   `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ManufacturerCapability) TableName() string {
	return "manufacturer_capabilities"
}

// MatchScore is the per-candidate result of one matching run. Created fresh
// per run and never mutated afterward; rows are append-only history.
type MatchScore struct {
	ID              uint64             `gorm:"primaryKey" json:"id"`
	SessionID       string             `gorm:"column:session_id;index" json:"session_id"`
	OrderID         uint64             `gorm:"column:order_id" json:"order_id"`
	ManufacturerID  uint64             `gorm:"column:manufacturer_id" json:"manufacturer_id"`
	ComponentScores map[string]float64 `gorm:"column:component_scores;serializer:json" json:"component_scores"`
	CompositeScore  float64            `gorm:"column:composite_score" json:"composite_score"`
	Confidence      float64            `gorm:"column:confidence" json:"confidence"`
	Rank            int                `gorm:"column:rank" json:"rank"`
	WeightSource    string             `gorm:"column:weight_source" json:"weight_source"`
	CreatedAt       time.Time          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (MatchScore) TableName() string {
	return "match_scores"
}

// Weight provenance recorded on every ranked result for audit.
const (
	WeightSourceDefault    = "default"
	WeightSourceLearned    = "learned"
	WeightSourceExperiment = "experiment"
)
