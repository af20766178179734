package postgres

import (
	"context"
	"errors"
	"fmt"
	"makerLink/business/learning"
	"makerLink/domain"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const casRetries = 5

// WeightProfileRepository backs learning.WeightStore with a postgres table.
// Update is an optimistic read-modify-write on the version column, retried a
// bounded number of times under contention.
type WeightProfileRepository struct {
	DB *gorm.DB
}

func NewWeightProfileRepository(db *gorm.DB) *WeightProfileRepository {
	return &WeightProfileRepository{DB: db}
}

func (r *WeightProfileRepository) Get(
	ctx context.Context,
	segment domain.CustomerSegment,
	complexity domain.ComplexityLevel,
) (*domain.WeightProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var profile domain.WeightProfile
	err := r.DB.WithContext(ctx).
		First(&profile, "segment = ? AND complexity_level = ?", segment, complexity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query weight_profiles: %w", err)
	}

	return &profile, nil
}

func (r *WeightProfileRepository) Update(
	ctx context.Context,
	segment domain.CustomerSegment,
	complexity domain.ComplexityLevel,
	mutate func(profile *domain.WeightProfile),
) (domain.WeightProfile, error) {
	if err := ctx.Err(); err != nil {
		return domain.WeightProfile{}, fmt.Errorf("context error: %w", err)
	}

	for attempt := 0; attempt < casRetries; attempt++ {
		current, err := r.Get(ctx, segment, complexity)
		if err != nil {
			return domain.WeightProfile{}, err
		}

		var next domain.WeightProfile
		if current != nil {
			next = *current
		} else {
			next = learning.NewProfile(segment, complexity)
		}

		prevVersion := next.Version
		mutate(&next)
		next.Version = prevVersion + 1
		next.LastUpdated = time.Now()

		if current == nil {
			err = r.DB.WithContext(ctx).Clauses(
				clause.OnConflict{
					Columns:   []clause.Column{{Name: "segment"}, {Name: "complexity_level"}},
					DoNothing: true,
				},
			).Create(&next).Error
			if err != nil {
				return domain.WeightProfile{}, fmt.Errorf("failed to insert weight profile: %w", err)
			}
			// another writer may have inserted first; re-read to confirm
			stored, err := r.Get(ctx, segment, complexity)
			if err != nil {
				return domain.WeightProfile{}, err
			}
			if stored != nil && stored.Version == next.Version && stored.SampleSize == next.SampleSize {
				return next, nil
			}
			continue
		}

		result := r.DB.WithContext(ctx).
			Model(&domain.WeightProfile{}).
			Where("segment = ? AND complexity_level = ? AND version = ?", segment, complexity, prevVersion).
			Select("weights", "sample_size", "confidence_score", "version", "last_updated").
			Updates(&next)
		if result.Error != nil {
			return domain.WeightProfile{}, fmt.Errorf("failed to update weight profile: %w", result.Error)
		}
		if result.RowsAffected > 0 {
			return next, nil
		}
		// version moved under us, retry against the fresh row
	}

	return domain.WeightProfile{}, errors.New("weight profile update contention, retries exhausted")
}

var _ learning.WeightStore = (*WeightProfileRepository)(nil)
