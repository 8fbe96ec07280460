package weights

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, e Entry) error
	// ListByPet devuelve las últimas mediciones, más reciente primero.
	ListByPet(ctx context.Context, petID string, limit int) ([]Entry, error)
	ListRange(ctx context.Context, petID string, start, end time.Time) ([]Entry, error)
}
