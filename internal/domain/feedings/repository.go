package feedings

import (
	"context"
	"time"
)

// Repository: petID vacío significa "todos los eventos" en las
// consultas por ventana; las ventanas son half-open [start, end).
type Repository interface {
	Create(ctx context.Context, e FeedingEvent) error

	CountInWindow(ctx context.Context, start, end time.Time, petID string) (int, error)
	SumGramsInWindow(ctx context.Context, start, end time.Time, petID string) (int, error)
	DailyTotals(ctx context.Context, start, end time.Time, petID string) (map[string]DayTotal, error)
	TotalGrams(ctx context.Context) (int, error)

	Last(ctx context.Context, petID string) (FeedingEvent, error)
	ListByPet(ctx context.Context, petID string, limit int) ([]FeedingEvent, error)
	ListRange(ctx context.Context, petID string, start, end time.Time) ([]FeedingEvent, error)
	ListAll(ctx context.Context) ([]FeedingEvent, error)
	CountByPet(ctx context.Context, petID string) (int, error)

	DeleteByPet(ctx context.Context, petID string) error
	DeleteAll(ctx context.Context) error
}
