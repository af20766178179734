package learning

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"makerLink/domain"
)

// WeightStore holds one WeightProfile per (segment, complexity) key.
// Update is a single atomic read-modify-write for its key; Get never blocks
// and may return a slightly stale profile.
type WeightStore interface {
	Get(ctx context.Context, segment domain.CustomerSegment, complexity domain.ComplexityLevel) (*domain.WeightProfile, error)
	Update(
		ctx context.Context,
		segment domain.CustomerSegment,
		complexity domain.ComplexityLevel,
		mutate func(profile *domain.WeightProfile),
	) (domain.WeightProfile, error)
}

func profileKey(segment domain.CustomerSegment, complexity domain.ComplexityLevel) string {
	return fmt.Sprintf("%s|%s", segment, complexity)
}

// MemoryWeightStore keeps profiles in process memory. Writers serialize per
// key; readers load an immutable snapshot pointer.
type MemoryWeightStore struct {
	mu      sync.Mutex
	entries map[string]*storeEntry
}

type storeEntry struct {
	mu   sync.Mutex
	snap atomic.Pointer[domain.WeightProfile]
}

func NewMemoryWeightStore() *MemoryWeightStore {
	return &MemoryWeightStore{
		entries: make(map[string]*storeEntry),
	}
}

func (s *MemoryWeightStore) entry(key string) *storeEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		e = &storeEntry{}
		s.entries[key] = e
	}
	return e
}

func (s *MemoryWeightStore) Get(
	ctx context.Context,
	segment domain.CustomerSegment,
	complexity domain.ComplexityLevel,
) (*domain.WeightProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	s.mu.Lock()
	e, ok := s.entries[profileKey(segment, complexity)]
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}

	snap := e.snap.Load()
	if snap == nil {
		return nil, nil
	}

	// copy so callers can't mutate the shared snapshot
	cp := *snap
	cp.Weights = copyWeights(snap.Weights)
	return &cp, nil
}

func (s *MemoryWeightStore) Update(
	ctx context.Context,
	segment domain.CustomerSegment,
	complexity domain.ComplexityLevel,
	mutate func(profile *domain.WeightProfile),
) (domain.WeightProfile, error) {
	if err := ctx.Err(); err != nil {
		return domain.WeightProfile{}, fmt.Errorf("context error: %w", err)
	}

	e := s.entry(profileKey(segment, complexity))

	e.mu.Lock()
	defer e.mu.Unlock()

	var next domain.WeightProfile
	if cur := e.snap.Load(); cur != nil {
		next = *cur
		next.Weights = copyWeights(cur.Weights)
	} else {
		next = NewProfile(segment, complexity)
	}

	mutate(&next)
	next.Version++
	next.LastUpdated = time.Now()

	e.snap.Store(&next)
	return next, nil
}

// NewProfile seeds a fresh profile with the default weight mix.
func NewProfile(segment domain.CustomerSegment, complexity domain.ComplexityLevel) domain.WeightProfile {
	return domain.WeightProfile{
		Segment:    segment,
		Complexity: complexity,
		Weights:    seedWeights(),
	}
}

func copyWeights(w map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}
