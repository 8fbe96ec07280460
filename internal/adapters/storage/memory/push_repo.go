package memory

import (
	"context"
	"sort"
	"sync"

	"cat-feeder/internal/domain/push"
)

type pushRepo struct {
	mu         sync.RWMutex
	byEndpoint map[string]push.Subscription
}

func NewPushRepo() push.Repository {
	return &pushRepo{
		byEndpoint: make(map[string]push.Subscription),
	}
}

func (r *pushRepo) Upsert(ctx context.Context, sub push.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byEndpoint[sub.Endpoint] = sub
	return nil
}

func (r *pushRepo) List(ctx context.Context) ([]push.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]push.Subscription, 0, len(r.byEndpoint))
	for _, sub := range r.byEndpoint {
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Endpoint < out[j].Endpoint
	})
	return out, nil
}

func (r *pushRepo) Delete(ctx context.Context, endpoint, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.byEndpoint[endpoint]
	if !ok {
		return nil
	}
	if userID != "" && sub.UserID != userID {
		return nil
	}
	delete(r.byEndpoint, endpoint)
	return nil
}
