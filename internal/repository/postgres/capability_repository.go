package postgres

import (
	"context"
	"errors"
	"fmt"
	"makerLink/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CapabilityRepository struct {
	DB *gorm.DB
}

func NewCapabilityRepository(db *gorm.DB) *CapabilityRepository {
	return &CapabilityRepository{DB: db}
}

func (r *CapabilityRepository) Upsert(ctx context.Context, capability *domain.ManufacturerCapability) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns:   []clause.Column{{Name: "manufacturer_id"}},
			UpdateAll: true,
		},
	).Create(capability).Error; err != nil {
		return fmt.Errorf("failed to upsert capability: %w", err)
	}

	return nil
}

func (r *CapabilityRepository) FindByManufacturerID(ctx context.Context, manufacturerID uint64) (domain.ManufacturerCapability, error) {
	if err := ctx.Err(); err != nil {
		return domain.ManufacturerCapability{}, fmt.Errorf("context error: %w", err)
	}

	var capability domain.ManufacturerCapability
	err := r.DB.WithContext(ctx).First(&capability, "manufacturer_id = ?", manufacturerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ManufacturerCapability{}, errors.New("capability not found")
		}
		return domain.ManufacturerCapability{}, fmt.Errorf("failed to find capability: %w", err)
	}

	return capability, nil
}

// FindAllActive returns capabilities of manufacturers that are still active.
func (r *CapabilityRepository) FindAllActive(ctx context.Context) ([]domain.ManufacturerCapability, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var capabilities []domain.ManufacturerCapability
	err := r.DB.WithContext(ctx).
		Joins("JOIN manufacturers ON manufacturers.id = manufacturer_capabilities.manufacturer_id").
		Where("manufacturers.is_active = ?", true).
		Find(&capabilities).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find active capabilities: %w", err)
	}

	return capabilities, nil
}
