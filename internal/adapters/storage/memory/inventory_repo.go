package memory

import (
	"context"
	"sort"
	"sync"

	"cat-feeder/internal/domain/inventory"
)

type inventoryRepo struct {
	mu      sync.RWMutex
	byPetID map[string]inventory.Item
}

func NewInventoryRepo() inventory.Repository {
	return &inventoryRepo{
		byPetID: make(map[string]inventory.Item),
	}
}

func (r *inventoryRepo) Get(ctx context.Context, petID string) (inventory.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.byPetID[petID]
	if !ok {
		return inventory.Item{}, inventory.ErrNotFound
	}
	return item, nil
}

func (r *inventoryRepo) Upsert(ctx context.Context, item inventory.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byPetID[item.PetID] = item
	return nil
}

func (r *inventoryRepo) ListLowStock(ctx context.Context, threshold int) ([]inventory.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]inventory.Item, 0)
	for _, item := range r.byPetID {
		if item.SachetCount <= threshold {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PetID < out[j].PetID
	})
	return out, nil
}
