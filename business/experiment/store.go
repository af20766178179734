package experiment

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"makerLink/domain"
)

// ExperimentStore persists experiment definitions and the append-only
// participant log. Implementations must tolerate concurrent Save calls for
// different experiments; the engine serializes per-experiment mutation.
type ExperimentStore interface {
	Create(ctx context.Context, exp *domain.Experiment) error
	Get(ctx context.Context, id string) (*domain.Experiment, error)
	Save(ctx context.Context, exp *domain.Experiment) error
	List(ctx context.Context, status domain.ExperimentStatus) ([]domain.Experiment, error)
	AppendParticipant(ctx context.Context, p domain.ExperimentParticipant) error
}

// MemoryExperimentStore is the in-process implementation the engine uses by
// default and tests run against.
type MemoryExperimentStore struct {
	mu           sync.RWMutex
	experiments  map[string]domain.Experiment
	participants []domain.ExperimentParticipant
}

func NewMemoryExperimentStore() *MemoryExperimentStore {
	return &MemoryExperimentStore{
		experiments: make(map[string]domain.Experiment),
	}
}

func (s *MemoryExperimentStore) Create(ctx context.Context, exp *domain.Experiment) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.experiments[exp.ID]; ok {
		return domain.NewValidationError("id", "experiment already exists")
	}
	s.experiments[exp.ID] = *exp
	return nil
}

func (s *MemoryExperimentStore) Get(ctx context.Context, id string) (*domain.Experiment, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	exp, ok := s.experiments[id]
	if !ok {
		return nil, domain.NewNotFoundError("experiment", id)
	}
	return &exp, nil
}

func (s *MemoryExperimentStore) Save(ctx context.Context, exp *domain.Experiment) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.experiments[exp.ID]; !ok {
		return domain.NewNotFoundError("experiment", exp.ID)
	}
	s.experiments[exp.ID] = *exp
	return nil
}

func (s *MemoryExperimentStore) List(ctx context.Context, status domain.ExperimentStatus) ([]domain.Experiment, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Experiment, 0, len(s.experiments))
	for _, exp := range s.experiments {
		if status != "" && exp.Status != status {
			continue
		}
		out = append(out, exp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryExperimentStore) AppendParticipant(ctx context.Context, p domain.ExperimentParticipant) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = uint64(len(s.participants) + 1)
	s.participants = append(s.participants, p)
	return nil
}
