package reports_test

import (
	"bytes"
	"testing"
	"time"

	"cat-feeder/internal/domain/feedings"
	"cat-feeder/internal/domain/inventory"
	"cat-feeder/internal/domain/pets"
	"cat-feeder/internal/domain/weights"
	"cat-feeder/internal/reports"
)

func TestBuildPetReport(t *testing.T) {
	start := time.Date(2026, 7, 24, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	out, err := reports.BuildPetReport(reports.Input{
		Pet: pets.Pet{ID: "p1", Name: "Whiskers"},
		Feedings: []feedings.FeedingEvent{
			{ID: "e1", FedAt: start.Add(9 * time.Hour), AmountGrams: 85, DietType: "Whiskas Poultry", PetID: "p1"},
		},
		Weights: []weights.Entry{
			{ID: "w1", PetID: "p1", WeightKg: 4.2, RecordedAt: start.Add(10 * time.Hour)},
		},
		Inventory: &inventory.Item{PetID: "p1", FoodName: "Whiskas Poultry", SachetCount: 8, RemainingGrams: 680},
		Start:     start,
		End:       end,
	})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("expected a PDF document, got prefix %q", out[:min(8, len(out))])
	}
}

func TestBuildPetReport_EmptySections(t *testing.T) {
	out, err := reports.BuildPetReport(reports.Input{
		Pet:   pets.Pet{ID: "p1", Name: "Whiskers"},
		Start: time.Date(2026, 7, 24, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("expected output even with no data")
	}
}
