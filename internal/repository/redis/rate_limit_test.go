package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRepository(t *testing.T) *RateLimitRepository {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRateLimitRepository(client, SlidingWindowConfig{
		KeyPrefix: "test:ratelimit",
		TTL:       time.Minute,
	})
}

func TestRecordAndCountAttempts(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 3; i++ {
		if err := repo.RecordAttempt(ctx, "grant:10.0.0.1", now.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("record attempt %d: %v", i, err)
		}
	}

	count, err := repo.CountAttempts(ctx, "grant:10.0.0.1", time.Minute, now.Add(3*time.Second))
	if err != nil {
		t.Fatalf("count attempts: %v", err)
	}
	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}

	count, err = repo.CountAttempts(ctx, "grant:10.0.0.2", time.Minute, now)
	if err != nil {
		t.Fatalf("count attempts for other client: %v", err)
	}
	if count != 0 {
		t.Fatalf("count for other client = %d, want 0", count)
	}
}

func TestCountAttemptsExcludesOutOfWindow(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	now := time.Now()

	if err := repo.RecordAttempt(ctx, "grant:client", now.Add(-2*time.Minute)); err != nil {
		t.Fatalf("record stale attempt: %v", err)
	}
	if err := repo.RecordAttempt(ctx, "grant:client", now); err != nil {
		t.Fatalf("record fresh attempt: %v", err)
	}

	count, err := repo.CountAttempts(ctx, "grant:client", time.Minute, now)
	if err != nil {
		t.Fatalf("count attempts: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
}

func TestTrimWindowRemovesStaleAttempts(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	now := time.Now()

	if err := repo.RecordAttempt(ctx, "grant:client", now.Add(-2*time.Minute)); err != nil {
		t.Fatalf("record stale attempt: %v", err)
	}
	if err := repo.RecordAttempt(ctx, "grant:client", now); err != nil {
		t.Fatalf("record fresh attempt: %v", err)
	}

	if err := repo.TrimWindow(ctx, "grant:client", time.Minute, now); err != nil {
		t.Fatalf("trim window: %v", err)
	}

	count, err := repo.CountAttempts(ctx, "grant:client", 10*time.Minute, now)
	if err != nil {
		t.Fatalf("count attempts: %v", err)
	}
	if count != 1 {
		t.Fatalf("count after trim = %d, want 1", count)
	}
}

func TestOldestAttempt(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	now := time.Now()

	_, found, err := repo.OldestAttempt(ctx, "grant:client", time.Minute, now)
	if err != nil {
		t.Fatalf("oldest attempt on empty set: %v", err)
	}
	if found {
		t.Fatal("expected no attempt in an empty window")
	}

	first := now.Add(-30 * time.Second)
	if err := repo.RecordAttempt(ctx, "grant:client", first); err != nil {
		t.Fatalf("record first attempt: %v", err)
	}
	if err := repo.RecordAttempt(ctx, "grant:client", now); err != nil {
		t.Fatalf("record second attempt: %v", err)
	}

	oldest, found, err := repo.OldestAttempt(ctx, "grant:client", time.Minute, now)
	if err != nil {
		t.Fatalf("oldest attempt: %v", err)
	}
	if !found {
		t.Fatal("expected an attempt inside the window")
	}
	if !oldest.Equal(time.Unix(0, first.UnixNano())) {
		t.Fatalf("oldest = %v, want %v", oldest, first)
	}
}

func TestWindowValidation(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if _, err := repo.CountAttempts(ctx, "x", 0, time.Now()); err == nil {
		t.Fatal("CountAttempts should reject a non-positive window")
	}
	if err := repo.TrimWindow(ctx, "x", -time.Second, time.Now()); err == nil {
		t.Fatal("TrimWindow should reject a non-positive window")
	}
	if _, _, err := repo.OldestAttempt(ctx, "x", 0, time.Now()); err == nil {
		t.Fatal("OldestAttempt should reject a non-positive window")
	}
}
