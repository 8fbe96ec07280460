package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"cat-feeder/internal/domain/weights"
)

type weightsRepo struct {
	mu      sync.RWMutex
	entries []weights.Entry
}

func NewWeightsRepo() weights.Repository {
	return &weightsRepo{
		entries: make([]weights.Entry, 0),
	}
}

func (r *weightsRepo) Create(ctx context.Context, e weights.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, e)
	return nil
}

func (r *weightsRepo) ListByPet(ctx context.Context, petID string, limit int) ([]weights.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]weights.Entry, 0)
	for _, e := range r.entries {
		if e.PetID == petID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RecordedAt.After(out[j].RecordedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *weightsRepo) ListRange(ctx context.Context, petID string, start, end time.Time) ([]weights.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]weights.Entry, 0)
	for _, e := range r.entries {
		if e.PetID == petID && !e.RecordedAt.Before(start) && e.RecordedAt.Before(end) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RecordedAt.Before(out[j].RecordedAt)
	})
	return out, nil
}
