package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"cat-feeder/internal/domain/feedings"
)

type feedingsRepo struct {
	mu     sync.RWMutex
	events []feedings.FeedingEvent
}

func NewFeedingsRepo() feedings.Repository {
	return &feedingsRepo{
		events: make([]feedings.FeedingEvent, 0),
	}
}

func (r *feedingsRepo) Create(ctx context.Context, e feedings.FeedingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, e)
	return nil
}

// matches: petID vacío = todos los eventos.
func matches(e feedings.FeedingEvent, petID string) bool {
	return petID == "" || e.PetID == petID
}

func inWindow(e feedings.FeedingEvent, start, end time.Time) bool {
	return !e.FedAt.Before(start) && e.FedAt.Before(end)
}

func (r *feedingsRepo) CountInWindow(ctx context.Context, start, end time.Time, petID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, e := range r.events {
		if matches(e, petID) && inWindow(e, start, end) {
			count++
		}
	}
	return count, nil
}

func (r *feedingsRepo) SumGramsInWindow(ctx context.Context, start, end time.Time, petID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sum := 0
	for _, e := range r.events {
		if matches(e, petID) && inWindow(e, start, end) {
			sum += e.AmountGrams
		}
	}
	return sum, nil
}

func (r *feedingsRepo) DailyTotals(ctx context.Context, start, end time.Time, petID string) (map[string]feedings.DayTotal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]feedings.DayTotal)
	for _, e := range r.events {
		if !matches(e, petID) || !inWindow(e, start, end) {
			continue
		}
		key := e.FedAt.Format("2006-01-02")
		t := out[key]
		t.Count++
		t.Grams += e.AmountGrams
		out[key] = t
	}
	return out, nil
}

func (r *feedingsRepo) TotalGrams(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sum := 0
	for _, e := range r.events {
		sum += e.AmountGrams
	}
	return sum, nil
}

func (r *feedingsRepo) Last(ctx context.Context, petID string) (feedings.FeedingEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var last feedings.FeedingEvent
	found := false
	for _, e := range r.events {
		if !matches(e, petID) {
			continue
		}
		if !found || e.FedAt.After(last.FedAt) {
			last = e
			found = true
		}
	}
	if !found {
		return feedings.FeedingEvent{}, feedings.ErrNotFound
	}
	return last, nil
}

func (r *feedingsRepo) ListByPet(ctx context.Context, petID string, limit int) ([]feedings.FeedingEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]feedings.FeedingEvent, 0)
	for _, e := range r.events {
		if e.PetID == petID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].FedAt.After(out[j].FedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *feedingsRepo) ListRange(ctx context.Context, petID string, start, end time.Time) ([]feedings.FeedingEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]feedings.FeedingEvent, 0)
	for _, e := range r.events {
		if matches(e, petID) && inWindow(e, start, end) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].FedAt.Before(out[j].FedAt)
	})
	return out, nil
}

func (r *feedingsRepo) ListAll(ctx context.Context) ([]feedings.FeedingEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]feedings.FeedingEvent, len(r.events))
	copy(out, r.events)
	sort.Slice(out, func(i, j int) bool {
		return out[i].FedAt.Before(out[j].FedAt)
	})
	return out, nil
}

func (r *feedingsRepo) CountByPet(ctx context.Context, petID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, e := range r.events {
		if e.PetID == petID {
			count++
		}
	}
	return count, nil
}

func (r *feedingsRepo) DeleteByPet(ctx context.Context, petID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.events[:0]
	for _, e := range r.events {
		if e.PetID != petID {
			kept = append(kept, e)
		}
	}
	r.events = kept
	return nil
}

func (r *feedingsRepo) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = r.events[:0]
	return nil
}
