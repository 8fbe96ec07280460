package pets_test

import (
	"context"
	"errors"
	"testing"

	"cat-feeder/internal/adapters/storage/memory"
	"cat-feeder/internal/domain/pets"
)

func TestCreate_Validation(t *testing.T) {
	svc := pets.NewService(memory.NewPetsRepo())
	ctx := context.Background()

	if _, err := svc.Create(ctx, pets.CreateInput{Name: "   "}); !errors.Is(err, pets.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank name, got %v", err)
	}

	neg := -1
	if _, err := svc.Create(ctx, pets.CreateInput{Name: "Mishi", AgeYears: &neg}); !errors.Is(err, pets.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative age, got %v", err)
	}

	p, err := svc.Create(ctx, pets.CreateInput{Name: "  Mishi  ", Sex: "F"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if p.Name != "Mishi" {
		t.Fatalf("expected trimmed name, got %q", p.Name)
	}
	if p.ID == "" {
		t.Fatal("expected generated id")
	}
}

func TestUpdate_Patch(t *testing.T) {
	svc := pets.NewService(memory.NewPetsRepo())
	ctx := context.Background()

	p, err := svc.Create(ctx, pets.CreateInput{Name: "Mishi", DietType: "Whiskas Poultry"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Solo breed: el resto queda igual.
	breed := "Siamese"
	got, err := svc.Update(ctx, p.ID, pets.UpdateInput{Breed: &breed})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got.Breed != "Siamese" || got.DietType != "Whiskas Poultry" || got.Name != "Mishi" {
		t.Fatalf("patch touched more than breed: %+v", got)
	}

	empty := ""
	if _, err := svc.Update(ctx, p.ID, pets.UpdateInput{Name: &empty}); !errors.Is(err, pets.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank name patch, got %v", err)
	}

	if _, err := svc.Update(ctx, "nope", pets.UpdateInput{}); !errors.Is(err, pets.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown pet, got %v", err)
	}
}

func TestUpdate_PhotoBlobWins(t *testing.T) {
	svc := pets.NewService(memory.NewPetsRepo())
	ctx := context.Background()

	p, err := svc.Create(ctx, pets.CreateInput{Name: "Mishi", PhotoURL: "https://example.com/a.jpg"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Subir blob pisa la URL.
	got, err := svc.Update(ctx, p.ID, pets.UpdateInput{PhotoBlob: []byte{0xFF, 0xD8}, PhotoMime: "image/jpeg"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got.PhotoURL != "" || len(got.PhotoBlob) == 0 {
		t.Fatalf("expected blob to replace url: %+v", got)
	}

	// ClearPhotoBlob lo borra.
	got, err = svc.Update(ctx, p.ID, pets.UpdateInput{ClearPhotoBlob: true})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if len(got.PhotoBlob) != 0 || got.PhotoMime != "" {
		t.Fatalf("expected blob cleared: %+v", got)
	}
}

func TestUpdateLimits(t *testing.T) {
	svc := pets.NewService(memory.NewPetsRepo())
	ctx := context.Background()

	p, err := svc.Create(ctx, pets.CreateInput{Name: "Mishi"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	zero := 0
	if _, err := svc.UpdateLimits(ctx, p.ID, &zero, nil); !errors.Is(err, pets.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero limit, got %v", err)
	}

	two := 2
	grams := 200
	got, err := svc.UpdateLimits(ctx, p.ID, &two, &grams)
	if err != nil {
		t.Fatalf("update limits failed: %v", err)
	}
	if got.DailyLimitCount == nil || *got.DailyLimitCount != 2 {
		t.Fatalf("expected daily limit 2, got %+v", got.DailyLimitCount)
	}
	if got.DailyGramsLimit == nil || *got.DailyGramsLimit != 200 {
		t.Fatalf("expected grams limit 200, got %+v", got.DailyGramsLimit)
	}

	// Tocar solo uno deja el otro.
	five := 5
	got, err = svc.UpdateLimits(ctx, p.ID, &five, nil)
	if err != nil {
		t.Fatalf("update limits failed: %v", err)
	}
	if *got.DailyLimitCount != 5 || got.DailyGramsLimit == nil || *got.DailyGramsLimit != 200 {
		t.Fatalf("partial limits update broke the other field: %+v", got)
	}
}

func TestListOrderedByCreation(t *testing.T) {
	svc := pets.NewService(memory.NewPetsRepo())
	ctx := context.Background()

	for _, name := range []string{"Uno", "Dos", "Tres"} {
		if _, err := svc.Create(ctx, pets.CreateInput{Name: name}); err != nil {
			t.Fatalf("create %s failed: %v", name, err)
		}
	}

	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 pets, got %d", len(list))
	}
}
