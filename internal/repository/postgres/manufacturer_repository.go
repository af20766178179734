package postgres

import (
	"context"
	"errors"
	"fmt"
	"makerLink/domain"

	"gorm.io/gorm"
)

type ManufacturerRepository struct {
	DB *gorm.DB
}

func NewManufacturerRepository(db *gorm.DB) *ManufacturerRepository {
	return &ManufacturerRepository{
		DB: db,
	}
}

func (r *ManufacturerRepository) Create(ctx context.Context, manufacturer *domain.Manufacturer) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(manufacturer).Error; err != nil {
		return fmt.Errorf("failed to create manufacturer: %w", err)
	}

	return nil
}

func (r *ManufacturerRepository) FindByID(ctx context.Context, id uint64) (domain.Manufacturer, error) {
	if err := ctx.Err(); err != nil {
		return domain.Manufacturer{}, fmt.Errorf("context error: %w", err)
	}

	var manufacturer domain.Manufacturer

	err := r.DB.WithContext(ctx).First(&manufacturer, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Manufacturer{}, errors.New("manufacturer not found")
		}
		return domain.Manufacturer{}, fmt.Errorf("failed to find manufacturer: %w", err)
	}

	return manufacturer, nil
}

func (r *ManufacturerRepository) FindAll(ctx context.Context) ([]domain.Manufacturer, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var manufacturers []domain.Manufacturer
	err := r.DB.WithContext(ctx).Find(&manufacturers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find manufacturers: %w", err)
	}

	return manufacturers, nil
}

func (r *ManufacturerRepository) Update(ctx context.Context, manufacturer *domain.Manufacturer) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	var existing domain.Manufacturer
	if err := r.DB.WithContext(ctx).First(&existing, manufacturer.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("manufacturer not found")
		}
		return fmt.Errorf("failed to find manufacturer: %w", err)
	}

	updateData := map[string]interface{}{
		"name":           manufacturer.Name,
		"region":         manufacturer.Region,
		"rating":         manufacturer.Rating,
		"lead_time_days": manufacturer.LeadTimeDays,
		"is_active":      manufacturer.IsActive,
	}

	result := r.DB.WithContext(ctx).Model(&domain.Manufacturer{}).Where("id = ?", manufacturer.ID).Updates(updateData)
	if result.Error != nil {
		return fmt.Errorf("failed to update manufacturer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("manufacturer not found or already deleted")
	}

	return nil
}

func (r *ManufacturerRepository) Delete(ctx context.Context, id uint64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).Delete(&domain.Manufacturer{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete manufacturer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("manufacturer not found or already deleted")
	}

	return nil
}
