package postgres

import (
	"context"
	"fmt"
	"makerLink/business/personalization"
	"makerLink/domain"

	"gorm.io/gorm"
)

// MatchHistoryRepository persists the append-only matching audit trail:
// every scored candidate per session, and the choice recorded against it.
type MatchHistoryRepository struct {
	DB *gorm.DB
}

func NewMatchHistoryRepository(db *gorm.DB) *MatchHistoryRepository {
	return &MatchHistoryRepository{DB: db}
}

func (r *MatchHistoryRepository) SaveScores(ctx context.Context, scores []domain.MatchScore) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if len(scores) == 0 {
		return nil
	}

	if err := r.DB.WithContext(ctx).Create(&scores).Error; err != nil {
		return fmt.Errorf("failed to save match scores: %w", err)
	}

	return nil
}

func (r *MatchHistoryRepository) SaveChoice(ctx context.Context, choice domain.CustomerChoice) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(&choice).Error; err != nil {
		return fmt.Errorf("failed to save customer choice: %w", err)
	}

	return nil
}

// FindScoresBySession returns the ranked scores recorded for one session.
func (r *MatchHistoryRepository) FindScoresBySession(ctx context.Context, sessionID string) ([]domain.MatchScore, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var scores []domain.MatchScore
	err := r.DB.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("rank").
		Find(&scores).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query match_scores: %w", err)
	}

	return scores, nil
}

var _ personalization.MatchHistoryRepository = (*MatchHistoryRepository)(nil)
