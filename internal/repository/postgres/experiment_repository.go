package postgres

import (
	"context"
	"errors"
	"fmt"
	"makerLink/business/experiment"
	"makerLink/domain"

	"gorm.io/gorm"
)

type ExperimentRepository struct {
	DB *gorm.DB
}

func NewExperimentRepository(db *gorm.DB) *ExperimentRepository {
	return &ExperimentRepository{DB: db}
}

func (r *ExperimentRepository) Create(ctx context.Context, exp *domain.Experiment) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(exp).Error; err != nil {
		return fmt.Errorf("failed to create experiment: %w", err)
	}

	return nil
}

func (r *ExperimentRepository) Get(ctx context.Context, id string) (*domain.Experiment, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var exp domain.Experiment
	err := r.DB.WithContext(ctx).First(&exp, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NewNotFoundError("experiment", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query experiments: %w", err)
	}

	return &exp, nil
}

func (r *ExperimentRepository) Save(ctx context.Context, exp *domain.Experiment) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).
		Model(&domain.Experiment{}).
		Where("id = ?", exp.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(exp)
	if result.Error != nil {
		return fmt.Errorf("failed to save experiment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("experiment", exp.ID)
	}

	return nil
}

func (r *ExperimentRepository) List(ctx context.Context, status domain.ExperimentStatus) ([]domain.Experiment, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	query := r.DB.WithContext(ctx).Order("id")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var experiments []domain.Experiment
	if err := query.Find(&experiments).Error; err != nil {
		return nil, fmt.Errorf("failed to list experiments: %w", err)
	}

	return experiments, nil
}

func (r *ExperimentRepository) AppendParticipant(ctx context.Context, p domain.ExperimentParticipant) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(&p).Error; err != nil {
		return fmt.Errorf("failed to append participant: %w", err)
	}

	return nil
}

var _ experiment.ExperimentStore = (*ExperimentRepository)(nil)
