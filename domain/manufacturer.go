package domain

import (
	"time"
)

// CREATE TABLE public.manufacturers (
//     id          BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     name        TEXT,
//     region      TEXT,
//     rating      NUMERIC,
//     lead_time_days INTEGER,
//     is_active   BOOLEAN,
//     created_at  TIMESTAMPTZ DEFAULT NOW()
// );

type Manufacturer struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	Name         string    `gorm:"column:name;type:text"`
	Region       string    `gorm:"column:region;type:text"`
	Rating       float64   `gorm:"column:rating;type:numeric"`
	LeadTimeDays int       `gorm:"column:lead_time_days"`
	IsActive     bool      `gorm:"column:is_active;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (Manufacturer) TableName() string {
	return "manufacturers"
}
