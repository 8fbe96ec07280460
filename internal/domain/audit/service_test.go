package audit_test

import (
	"context"
	"testing"

	"cat-feeder/internal/adapters/storage/memory"
	"cat-feeder/internal/domain/audit"
)

func TestAppendAndList(t *testing.T) {
	svc := audit.NewService(memory.NewAuditRepo())
	ctx := context.Background()

	// Acción vacía se ignora sin error.
	if err := svc.Append(ctx, "  ", "detail", ""); err != nil {
		t.Fatalf("blank action should be a noop, got %v", err)
	}

	if err := svc.Append(ctx, audit.ActionFeedingLogged, "Whiskers - 85g", "u1"); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if err := svc.Append(ctx, audit.ActionLowStock, "Whiskers low stock: 5 sachets left", ""); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	list, err := svc.List(ctx, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(list))
	}
	// Más nuevo primero.
	if list[0].Action != audit.ActionLowStock {
		t.Fatalf("expected newest first, got %+v", list)
	}

	activity, err := svc.Activity(ctx, 10)
	if err != nil {
		t.Fatalf("activity failed: %v", err)
	}
	if len(activity) != 1 || activity[0].Action != audit.ActionFeedingLogged {
		t.Fatalf("expected only feeding entries, got %+v", activity)
	}
}
