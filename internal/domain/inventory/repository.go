package inventory

import "context"

// Repository guarda a lo sumo un Item por mascota (Upsert pisa).
type Repository interface {
	Get(ctx context.Context, petID string) (Item, error)
	Upsert(ctx context.Context, item Item) error
	ListLowStock(ctx context.Context, threshold int) ([]Item, error)
}
