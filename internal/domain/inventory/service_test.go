package inventory_test

import (
	"context"
	"errors"
	"testing"

	"cat-feeder/internal/adapters/storage/memory"
	"cat-feeder/internal/domain/inventory"
	"cat-feeder/internal/domain/pets"
)

type auditCapture struct {
	actions []string
	details []string
}

func (c *auditCapture) Append(_ context.Context, action, details, _ string) error {
	c.actions = append(c.actions, action)
	c.details = append(c.details, details)
	return nil
}

type alertCapture struct {
	fired int
}

func (c *alertCapture) LowStock(_ context.Context, _ pets.Pet, _ inventory.Item) {
	c.fired++
}

func TestConsumeAfterFeeding_Depletes(t *testing.T) {
	svc := inventory.NewService(memory.NewInventoryRepo(), inventory.Deps{})
	ctx := context.Background()
	pet := pets.Pet{ID: "p1", Name: "Whiskers"}

	// 1) Cargar 10 sachets de 85g = 850g.
	if _, err := svc.Set(ctx, pet.ID, "Whiskas Poultry", 10); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	// 2) Consumir 90g: 850-90=760 => floor 8 sachets. Los gramos se
	// derivan del count (sachets parciales no persisten): 680.
	if err := svc.ConsumeAfterFeeding(ctx, pet, 90); err != nil {
		t.Fatalf("consume failed: %v", err)
	}

	item, err := svc.Get(ctx, pet.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if item.SachetCount != 8 {
		t.Fatalf("expected 8 sachets, got %d", item.SachetCount)
	}
	if item.RemainingGrams != 8*85 {
		t.Fatalf("expected derived %d remaining grams, got %d", 8*85, item.RemainingGrams)
	}

	// 3) Segundo consumo de 90g parte de los 680 derivados, no del
	// residuo fraccional: 680-90=590 => 6 sachets.
	if err := svc.ConsumeAfterFeeding(ctx, pet, 90); err != nil {
		t.Fatalf("consume failed: %v", err)
	}
	item, err = svc.Get(ctx, pet.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if item.SachetCount != 6 {
		t.Fatalf("expected 6 sachets after second consume, got %d", item.SachetCount)
	}
	if item.RemainingGrams != 6*85 {
		t.Fatalf("expected derived %d remaining grams, got %d", 6*85, item.RemainingGrams)
	}
}

func TestConsumeAfterFeeding_ZeroGramsKeepsCount(t *testing.T) {
	svc := inventory.NewService(memory.NewInventoryRepo(), inventory.Deps{})
	ctx := context.Background()
	pet := pets.Pet{ID: "p1", Name: "Whiskers"}

	if _, err := svc.Set(ctx, pet.ID, "Whiskas Poultry", 10); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := svc.ConsumeAfterFeeding(ctx, pet, 0); err != nil {
		t.Fatalf("consume failed: %v", err)
	}

	item, err := svc.Get(ctx, pet.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if item.SachetCount != 10 || item.RemainingGrams != 10*85 {
		t.Fatalf("zero consumption changed the stock: %+v", item)
	}
}

func TestConsumeAfterFeeding_ClampsAtZero(t *testing.T) {
	svc := inventory.NewService(memory.NewInventoryRepo(), inventory.Deps{})
	ctx := context.Background()
	pet := pets.Pet{ID: "p1", Name: "Whiskers"}

	if _, err := svc.Set(ctx, pet.ID, "Whiskas Poultry", 1); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := svc.ConsumeAfterFeeding(ctx, pet, 500); err != nil {
		t.Fatalf("consume failed: %v", err)
	}

	item, err := svc.Get(ctx, pet.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if item.RemainingGrams != 0 || item.SachetCount != 0 {
		t.Fatalf("expected empty inventory, got %d grams / %d sachets", item.RemainingGrams, item.SachetCount)
	}
}

func TestConsumeAfterFeeding_NoInventoryIsNoop(t *testing.T) {
	svc := inventory.NewService(memory.NewInventoryRepo(), inventory.Deps{})

	if err := svc.ConsumeAfterFeeding(context.Background(), pets.Pet{ID: "p1"}, 85); err != nil {
		t.Fatalf("expected noop without inventory, got %v", err)
	}
	if _, err := svc.Get(context.Background(), "p1"); !errors.Is(err, inventory.ErrNotFound) {
		t.Fatalf("expected inventory to stay absent, got %v", err)
	}
}

func TestConsumeAfterFeeding_LowStockFiresOnceOnCrossing(t *testing.T) {
	rec := &auditCapture{}
	alerts := &alertCapture{}
	svc := inventory.NewService(memory.NewInventoryRepo(), inventory.Deps{
		Audit:             rec,
		Alerts:            alerts,
		LowStockThreshold: 5,
	})
	ctx := context.Background()
	pet := pets.Pet{ID: "p1", Name: "Whiskers"}

	// 6 sachets de 85g: justo por encima del umbral.
	if _, err := svc.Set(ctx, pet.ID, "Whiskas Poultry", 6); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	// 1) 6 -> 5 cruza el umbral: una sola alerta.
	if err := svc.ConsumeAfterFeeding(ctx, pet, 85); err != nil {
		t.Fatalf("consume failed: %v", err)
	}
	if alerts.fired != 1 {
		t.Fatalf("expected one low-stock alert, got %d", alerts.fired)
	}
	if len(rec.details) != 1 || rec.details[0] != "Whiskers low stock: 5 sachets left" {
		t.Fatalf("unexpected audit details: %v", rec.details)
	}

	// 2) 5 -> 4 ya está bajo el umbral: no se repite.
	if err := svc.ConsumeAfterFeeding(ctx, pet, 85); err != nil {
		t.Fatalf("consume failed: %v", err)
	}
	if alerts.fired != 1 {
		t.Fatalf("alert fired again below threshold: %d", alerts.fired)
	}
}

func TestSet_Validation(t *testing.T) {
	svc := inventory.NewService(memory.NewInventoryRepo(), inventory.Deps{})

	if _, err := svc.Set(context.Background(), "", "food", 1); !errors.Is(err, inventory.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty pet id, got %v", err)
	}
	if _, err := svc.Set(context.Background(), "p1", "food", -1); !errors.Is(err, inventory.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative count, got %v", err)
	}
}
