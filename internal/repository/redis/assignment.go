package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const assignmentTTL = 90 * 24 * time.Hour

type assignmentData struct {
	ExperimentID string    `json:"experiment_id"`
	Variant      string    `json:"variant"`
	AssignedAt   time.Time `json:"assigned_at"`
}

// AssignmentRepository keeps the session-to-variant mapping so sticky
// assignment survives process restarts.
type AssignmentRepository struct {
	client *redis.Client
}

func NewAssignmentRepository(client *redis.Client) *AssignmentRepository {
	return &AssignmentRepository{
		client: client,
	}
}

func (r *AssignmentRepository) GetAssignment(ctx context.Context, sessionID string) (string, string, bool, error) {
	key := fmt.Sprintf("experiment:assignment:%s", sessionID)

	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", "", false, nil
		}
		return "", "", false, fmt.Errorf("failed to get assignment from Redis: %w", err)
	}

	var data assignmentData
	if err := json.Unmarshal([]byte(val), &data); err != nil {
		return "", "", false, fmt.Errorf("failed to unmarshal assignment data: %w", err)
	}

	return data.ExperimentID, data.Variant, true, nil
}

func (r *AssignmentRepository) SaveAssignment(ctx context.Context, sessionID, experimentID, variant string) error {
	key := fmt.Sprintf("experiment:assignment:%s", sessionID)

	jsonData, err := json.Marshal(assignmentData{
		ExperimentID: experimentID,
		Variant:      variant,
		AssignedAt:   time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal assignment data: %w", err)
	}

	if err := r.client.Set(ctx, key, jsonData, assignmentTTL).Err(); err != nil {
		return fmt.Errorf("failed to store assignment in Redis: %w", err)
	}

	return nil
}
