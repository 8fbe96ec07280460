package stats_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"cat-feeder/internal/adapters/storage/memory"
	"cat-feeder/internal/domain/feedings"
	"cat-feeder/internal/domain/stats"
)

func seedEvents(t *testing.T, repo feedings.Repository, events ...feedings.FeedingEvent) {
	t.Helper()
	for _, e := range events {
		if err := repo.Create(context.Background(), e); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}
}

func TestSeries_ExplicitRangeZeroFilled(t *testing.T) {
	repo := memory.NewFeedingsRepo()
	seedEvents(t, repo,
		feedings.FeedingEvent{ID: "e1", FedAt: time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC), AmountGrams: 85},
		feedings.FeedingEvent{ID: "e2", FedAt: time.Date(2026, 8, 20, 18, 0, 0, 0, time.UTC), AmountGrams: 40},
		feedings.FeedingEvent{ID: "e3", FedAt: time.Date(2026, 8, 22, 8, 0, 0, 0, time.UTC), AmountGrams: 85},
	)
	svc := stats.NewService(repo)

	start := time.Date(2026, 8, 19, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC)
	days, items, err := svc.Series(context.Background(), stats.Query{Start: &start, End: &end})
	if err != nil {
		t.Fatalf("series failed: %v", err)
	}
	if days != 4 || len(items) != 4 {
		t.Fatalf("expected 4 days, got days=%d len=%d", days, len(items))
	}

	want := []stats.DailyStat{
		{Date: "2026-08-19", Grams: 0, Count: 0},
		{Date: "2026-08-20", Grams: 125, Count: 2},
		{Date: "2026-08-21", Grams: 0, Count: 0},
		{Date: "2026-08-22", Grams: 85, Count: 1},
	}
	for i, w := range want {
		if items[i] != w {
			t.Fatalf("item %d: expected %+v, got %+v", i, w, items[i])
		}
	}
}

func TestSeries_DefaultsToSevenDays(t *testing.T) {
	svc := stats.NewService(memory.NewFeedingsRepo())

	days, items, err := svc.Series(context.Background(), stats.Query{})
	if err != nil {
		t.Fatalf("series failed: %v", err)
	}
	if days != 7 || len(items) != 7 {
		t.Fatalf("expected default 7 days, got days=%d len=%d", days, len(items))
	}
	// Orden ascendente terminando hoy.
	today := time.Now().UTC().Format("2006-01-02")
	if items[6].Date != today {
		t.Fatalf("expected last item %s, got %s", today, items[6].Date)
	}
}

func TestSeries_DaysOutOfRangeFallsBack(t *testing.T) {
	svc := stats.NewService(memory.NewFeedingsRepo())

	days, _, err := svc.Series(context.Background(), stats.Query{Days: 99})
	if err != nil {
		t.Fatalf("series failed: %v", err)
	}
	if days != 7 {
		t.Fatalf("expected fallback to 7 days, got %d", days)
	}
}

func TestSeries_StartAfterEnd(t *testing.T) {
	svc := stats.NewService(memory.NewFeedingsRepo())

	start := time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 19, 0, 0, 0, 0, time.UTC)
	_, _, err := svc.Series(context.Background(), stats.Query{Start: &start, End: &end})
	if !errors.Is(err, stats.ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
}

func TestSeries_FiltersByPet(t *testing.T) {
	repo := memory.NewFeedingsRepo()
	day := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	seedEvents(t, repo,
		feedings.FeedingEvent{ID: "e1", FedAt: day, AmountGrams: 85, PetID: "p1"},
		feedings.FeedingEvent{ID: "e2", FedAt: day, AmountGrams: 40, PetID: "p2"},
	)
	svc := stats.NewService(repo)

	start := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	end := start
	_, items, err := svc.Series(context.Background(), stats.Query{Start: &start, End: &end, PetID: "p1"})
	if err != nil {
		t.Fatalf("series failed: %v", err)
	}
	if len(items) != 1 || items[0].Grams != 85 || items[0].Count != 1 {
		t.Fatalf("expected only p1 totals, got %+v", items)
	}
}
