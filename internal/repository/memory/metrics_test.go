package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hectoraparici0/cyberaegis/internal/core/domain"
	"github.com/hectoraparici0/cyberaegis/internal/repository"
)

func TestMetricStoreLatest(t *testing.T) {
	store := NewMetricStore(24 * time.Hour)
	ctx := context.Background()
	now := time.Now()

	if _, err := store.Latest(ctx, "cpu_usage"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty series, got %v", err)
	}

	for i, value := range []float64{10, 20, 30} {
		metric := domain.Metric{
			Name:      "cpu_usage",
			Value:     value,
			Timestamp: now.Add(time.Duration(i) * time.Minute),
		}
		if err := store.Record(ctx, metric); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	latest, err := store.Latest(ctx, "cpu_usage")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.Value != 30 {
		t.Fatalf("expected latest value 30, got %g", latest.Value)
	}
}

func TestMetricStoreRangeInclusiveBounds(t *testing.T) {
	store := NewMetricStore(24 * time.Hour)
	ctx := context.Background()
	base := time.Now().Add(-2 * time.Hour)

	timestamps := []time.Time{
		base,
		base.Add(30 * time.Minute),
		base.Add(time.Hour),
		base.Add(90 * time.Minute),
	}
	for i, ts := range timestamps {
		metric := domain.Metric{Name: "cpu_usage", Value: float64(i), Timestamp: ts}
		if err := store.Record(ctx, metric); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	// Bounds land exactly on the second and third observations.
	got, err := store.Range(ctx, "cpu_usage", timestamps[1], timestamps[2])
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 metrics, got %d", len(got))
	}
	if got[0].Value != 1 || got[1].Value != 2 {
		t.Fatalf("unexpected values: %+v", got)
	}
}

func TestMetricStoreRangeEmptyIsNotAnError(t *testing.T) {
	store := NewMetricStore(24 * time.Hour)
	ctx := context.Background()

	got, err := store.Range(ctx, "absent", time.Now().Add(-time.Hour), time.Now())
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %d entries", len(got))
	}
}

func TestMetricStoreRetentionTrimsOnInsert(t *testing.T) {
	store := NewMetricStore(time.Hour)
	ctx := context.Background()
	now := time.Now()

	stale := domain.Metric{Name: "cpu_usage", Value: 1, Timestamp: now.Add(-2 * time.Hour)}
	if err := store.Record(ctx, stale); err != nil {
		t.Fatalf("record stale: %v", err)
	}

	fresh := domain.Metric{Name: "cpu_usage", Value: 2, Timestamp: now}
	if err := store.Record(ctx, fresh); err != nil {
		t.Fatalf("record fresh: %v", err)
	}

	got, err := store.Range(ctx, "cpu_usage", now.Add(-3*time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(got) != 1 || got[0].Value != 2 {
		t.Fatalf("expected only the fresh observation, got %+v", got)
	}
}
