package postgres

import (
	"context"
	"errors"
	"fmt"
	"makerLink/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RequirementRepository struct {
	DB *gorm.DB
}

func NewRequirementRepository(db *gorm.DB) *RequirementRepository {
	return &RequirementRepository{DB: db}
}

func (r *RequirementRepository) Upsert(ctx context.Context, requirement *domain.OrderRequirement) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			UpdateAll: true,
		},
	).Create(requirement).Error; err != nil {
		return fmt.Errorf("failed to upsert order requirement: %w", err)
	}

	return nil
}

func (r *RequirementRepository) FindByOrderID(ctx context.Context, orderID uint64) (domain.OrderRequirement, error) {
	if err := ctx.Err(); err != nil {
		return domain.OrderRequirement{}, fmt.Errorf("context error: %w", err)
	}

	var requirement domain.OrderRequirement
	err := r.DB.WithContext(ctx).First(&requirement, "order_id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.OrderRequirement{}, errors.New("order requirement not found")
		}
		return domain.OrderRequirement{}, fmt.Errorf("failed to find order requirement: %w", err)
	}

	return requirement, nil
}
