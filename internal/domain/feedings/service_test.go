package feedings_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"cat-feeder/internal/adapters/storage/memory"
	"cat-feeder/internal/domain/feedings"
	"cat-feeder/internal/domain/pets"
)

type petDir struct {
	byID map[string]pets.Pet
}

func (d petDir) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	p, ok := d.byID[id]
	if !ok {
		return pets.Pet{}, pets.ErrNotFound
	}
	return p, nil
}

func newService(t *testing.T, known ...pets.Pet) *feedings.Service {
	t.Helper()
	dir := petDir{byID: make(map[string]pets.Pet)}
	for _, p := range known {
		dir.byID[p.ID] = p
	}
	return feedings.NewService(memory.NewFeedingsRepo(), feedings.Deps{
		Pets:              dir,
		DefaultDailyLimit: 3,
	})
}

func mustLog(t *testing.T, svc *feedings.Service, in feedings.LogInput) feedings.FeedingEvent {
	t.Helper()
	e, err := svc.Log(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error logging feeding: %v", err)
	}
	return e
}

func TestLog_DailyCountLimit(t *testing.T) {
	svc := newService(t, pets.Pet{ID: "p1", Name: "Whiskers"})
	fedAt := time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		mustLog(t, svc, feedings.LogInput{
			PetID:       "p1",
			AmountGrams: 85,
			FedAt:       fedAt.Add(time.Duration(i) * time.Hour),
		})
	}

	_, err := svc.Log(context.Background(), feedings.LogInput{
		PetID:       "p1",
		AmountGrams: 85,
		FedAt:       fedAt.Add(4 * time.Hour),
	})
	if !errors.Is(err, feedings.ErrDailyCountLimit) {
		t.Fatalf("expected ErrDailyCountLimit on 4th feeding, got %v", err)
	}
}

func TestLog_PerPetCountOverride(t *testing.T) {
	one := 1
	svc := newService(t, pets.Pet{ID: "p1", Name: "Whiskers", DailyLimitCount: &one})
	fedAt := time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC)

	mustLog(t, svc, feedings.LogInput{PetID: "p1", AmountGrams: 85, FedAt: fedAt})

	_, err := svc.Log(context.Background(), feedings.LogInput{
		PetID:       "p1",
		AmountGrams: 85,
		FedAt:       fedAt.Add(time.Hour),
	})
	if !errors.Is(err, feedings.ErrDailyCountLimit) {
		t.Fatalf("expected ErrDailyCountLimit with per-pet limit 1, got %v", err)
	}
}

func TestLog_ZeroCountLimitNeverFeeds(t *testing.T) {
	zero := 0
	svc := newService(t, pets.Pet{ID: "p1", Name: "Whiskers", DailyLimitCount: &zero})

	_, err := svc.Log(context.Background(), feedings.LogInput{
		PetID:       "p1",
		AmountGrams: 85,
		FedAt:       time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, feedings.ErrDailyCountLimit) {
		t.Fatalf("expected explicit zero limit to reject first feeding, got %v", err)
	}
}

func TestLog_GramsLimit(t *testing.T) {
	limit := 100
	svc := newService(t, pets.Pet{ID: "p1", Name: "Whiskers", DailyGramsLimit: &limit})
	fedAt := time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC)

	mustLog(t, svc, feedings.LogInput{PetID: "p1", AmountGrams: 60, FedAt: fedAt})
	// Llegar exacto al tope se acepta.
	mustLog(t, svc, feedings.LogInput{PetID: "p1", AmountGrams: 40, FedAt: fedAt.Add(time.Hour)})

	_, err := svc.Log(context.Background(), feedings.LogInput{
		PetID:       "p1",
		AmountGrams: 1,
		FedAt:       fedAt.Add(2 * time.Hour),
	})
	if !errors.Is(err, feedings.ErrDailyGramsLimit) {
		t.Fatalf("expected ErrDailyGramsLimit over the cap, got %v", err)
	}
}

func TestLog_CountCheckedBeforeGrams(t *testing.T) {
	one := 1
	grams := 10
	svc := newService(t, pets.Pet{ID: "p1", Name: "Whiskers", DailyLimitCount: &one, DailyGramsLimit: &grams})
	fedAt := time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC)

	mustLog(t, svc, feedings.LogInput{PetID: "p1", AmountGrams: 10, FedAt: fedAt})

	// Ambos topes alcanzados: tiene que ganar el de cantidad.
	_, err := svc.Log(context.Background(), feedings.LogInput{
		PetID:       "p1",
		AmountGrams: 10,
		FedAt:       fedAt.Add(time.Hour),
	})
	if !errors.Is(err, feedings.ErrDailyCountLimit) {
		t.Fatalf("expected count limit to win over grams limit, got %v", err)
	}
}

func TestLog_DayBoundaryResets(t *testing.T) {
	svc := newService(t, pets.Pet{ID: "p1", Name: "Whiskers"})
	lateNight := time.Date(2026, 8, 23, 23, 59, 59, 0, time.UTC)

	for i := 0; i < 3; i++ {
		mustLog(t, svc, feedings.LogInput{
			PetID:       "p1",
			AmountGrams: 85,
			FedAt:       lateNight.Add(-time.Duration(i) * time.Minute),
		})
	}

	// Un segundo después de medianoche es otro día calendario.
	mustLog(t, svc, feedings.LogInput{
		PetID:       "p1",
		AmountGrams: 85,
		FedAt:       time.Date(2026, 8, 24, 0, 0, 1, 0, time.UTC),
	})
}

func TestLog_PetNotFound(t *testing.T) {
	svc := newService(t)

	_, err := svc.Log(context.Background(), feedings.LogInput{
		PetID:       "nope",
		AmountGrams: 85,
	})
	if !errors.Is(err, feedings.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown pet, got %v", err)
	}
}

func TestStatus_RemainingGrams(t *testing.T) {
	svc := newService(t, pets.Pet{ID: "p1", Name: "Whiskers"})

	// Ambos en el mismo instante para no cruzar medianoche en el test.
	now := time.Now().UTC()
	mustLog(t, svc, feedings.LogInput{PetID: "p1", AmountGrams: 85, FedAt: now})
	mustLog(t, svc, feedings.LogInput{PetID: "p1", AmountGrams: 85, FedAt: now})

	st, err := svc.Status(context.Background())
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if st.DailyCount != 2 {
		t.Fatalf("expected daily count 2, got %d", st.DailyCount)
	}
	if st.RemainingGrams != 2000-170 {
		t.Fatalf("expected remaining grams %d, got %d", 2000-170, st.RemainingGrams)
	}
	if st.RemainingFeedings != 1 {
		t.Fatalf("expected 1 remaining feeding, got %d", st.RemainingFeedings)
	}
	if st.LastFedAt == nil || !st.LastFedAt.Equal(now) {
		t.Fatalf("expected last_fed_at %v, got %v", now, st.LastFedAt)
	}
}

func TestPetStatus_AfterThreeFeedings(t *testing.T) {
	svc := newService(t, pets.Pet{ID: "p1", Name: "Whiskers"})

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		mustLog(t, svc, feedings.LogInput{PetID: "p1", AmountGrams: 85, FedAt: now})
	}

	st, err := svc.PetStatus(context.Background(), "p1")
	if err != nil {
		t.Fatalf("pet status failed: %v", err)
	}
	if st.PetID != "p1" {
		t.Fatalf("expected pet id p1, got %q", st.PetID)
	}
	if st.DailyCount != 3 || st.DailyLimit != 3 {
		t.Fatalf("expected 3/3 for the day, got %d/%d", st.DailyCount, st.DailyLimit)
	}
	if st.RemainingFeedings != 0 {
		t.Fatalf("expected 0 remaining feedings, got %d", st.RemainingFeedings)
	}
	if st.LastFedAt == nil || !st.LastFedAt.Equal(now) {
		t.Fatalf("expected last_fed_at %v, got %v", now, st.LastFedAt)
	}

	if _, err := svc.PetStatus(context.Background(), "nope"); !errors.Is(err, feedings.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown pet, got %v", err)
	}
}

func TestLogUngrouped_GlobalLimit(t *testing.T) {
	svc := newService(t)
	fedAt := time.Date(2026, 8, 23, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if _, err := svc.LogUngrouped(context.Background(), fedAt.Add(time.Duration(i)*time.Hour), 85, "Whiskas Poultry"); err != nil {
			t.Fatalf("unexpected error on ungrouped feeding %d: %v", i+1, err)
		}
	}

	_, err := svc.LogUngrouped(context.Background(), fedAt.Add(4*time.Hour), 85, "Whiskas Poultry")
	if !errors.Is(err, feedings.ErrDailyCountLimit) {
		t.Fatalf("expected global limit on 4th ungrouped feeding, got %v", err)
	}
}
