package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hectoraparici0/cyberaegis/internal/core/domain"
	"github.com/hectoraparici0/cyberaegis/internal/repository"
)

func TestAlertStoreAddAssignsIDAndResetsAck(t *testing.T) {
	store := NewAlertStore()
	ctx := context.Background()

	stored, err := store.Add(ctx, domain.Alert{
		Severity:     domain.SeverityWarning,
		Message:      "something",
		Acknowledged: true,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if stored.ID == "" {
		t.Fatal("expected assigned id")
	}
	if stored.Acknowledged {
		t.Fatal("expected acknowledged=false on a fresh alert")
	}
}

func TestAlertStoreAcknowledgeIsIdempotent(t *testing.T) {
	store := NewAlertStore()
	ctx := context.Background()

	stored, err := store.Add(ctx, domain.Alert{Severity: domain.SeverityError, Message: "boom"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := store.Acknowledge(ctx, stored.ID); err != nil {
		t.Fatalf("first acknowledge: %v", err)
	}
	if err := store.Acknowledge(ctx, stored.ID); err != nil {
		t.Fatalf("second acknowledge should not error: %v", err)
	}

	acked := true
	alerts, err := store.Query(ctx, domain.AlertFilter{Acknowledged: &acked})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(alerts) != 1 || !alerts[0].Acknowledged {
		t.Fatalf("expected one acknowledged alert, got %+v", alerts)
	}
}

func TestAlertStoreAcknowledgeUnknownID(t *testing.T) {
	store := NewAlertStore()

	if err := store.Acknowledge(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAlertStoreQueryOrderAndFilters(t *testing.T) {
	store := NewAlertStore()
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	for i, severity := range []domain.Severity{domain.SeverityInfo, domain.SeverityCritical, domain.SeverityCritical} {
		_, err := store.Add(ctx, domain.Alert{
			Severity:  severity,
			Message:   "alert",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	all, err := store.Query(ctx, domain.AlertFilter{})
	if err != nil {
		t.Fatalf("query all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 alerts, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].CreatedAt.Before(all[i-1].CreatedAt) {
			t.Fatal("expected ascending createdAt order")
		}
	}

	critical := domain.SeverityCritical
	since := base.Add(90 * time.Second)
	filtered, err := store.Query(ctx, domain.AlertFilter{Severity: &critical, Since: &since})
	if err != nil {
		t.Fatalf("query filtered: %v", err)
	}
	if len(filtered) != 1 {
		t.Fatalf("expected 1 filtered alert, got %d", len(filtered))
	}
}
