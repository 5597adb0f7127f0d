package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hectoraparici0/cyberaegis/internal/core/domain"
	"github.com/hectoraparici0/cyberaegis/internal/repository"
)

func newTestSession(id string, now time.Time, ttl time.Duration) domain.Session {
	return domain.Session{
		ID:        id,
		SubjectID: "subject-1",
		Profile: &domain.AccessProfile{
			Level:      domain.LevelBasic,
			AuditLevel: domain.AuditBasic,
		},
		CreatedAt:      now,
		LastActivityAt: now,
		ExpiresAt:      now.Add(ttl),
	}
}

func TestSessionStoreCreateAndGet(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	now := time.Now()

	session := newTestSession("sess-1", now, time.Hour)
	if err := store.Create(ctx, session); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.SubjectID != "subject-1" {
		t.Fatalf("expected subject-1, got %s", got.SubjectID)
	}

	if err := store.Create(ctx, session); !errors.Is(err, repository.ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestSessionStoreGetHidesExpired(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	session := newTestSession("sess-exp", time.Now().Add(-2*time.Hour), time.Hour)
	if err := store.Create(ctx, session); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := store.Get(ctx, "sess-exp"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for expired session, got %v", err)
	}
}

func TestSessionStoreTouchIsSilentForDeadSessions(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	now := time.Now()

	if err := store.Touch(ctx, "unknown", now); err != nil {
		t.Fatalf("touch unknown session should be a no-op, got %v", err)
	}

	session := newTestSession("sess-2", now, time.Hour)
	if err := store.Create(ctx, session); err != nil {
		t.Fatalf("create: %v", err)
	}

	later := now.Add(10 * time.Minute)
	if err := store.Touch(ctx, "sess-2", later); err != nil {
		t.Fatalf("touch: %v", err)
	}

	got, err := store.Get(ctx, "sess-2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.LastActivityAt.Equal(later) {
		t.Fatalf("expected last activity %v, got %v", later, got.LastActivityAt)
	}
}

func TestSessionStoreRevoke(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	now := time.Now()

	session := newTestSession("sess-3", now, time.Hour)
	if err := store.Create(ctx, session); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := store.Revoke(ctx, "sess-3", "test", now); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	if _, err := store.Get(ctx, "sess-3"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after revoke, got %v", err)
	}

	if err := store.Revoke(ctx, "sess-3", "test", now); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second revoke, got %v", err)
	}
}

func TestSessionStoreSweepExpired(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	now := time.Now()

	live := newTestSession("live", now, time.Hour)
	expired := newTestSession("expired", now.Add(-2*time.Hour), time.Hour)

	if err := store.Create(ctx, live); err != nil {
		t.Fatalf("create live: %v", err)
	}
	if err := store.Create(ctx, expired); err != nil {
		t.Fatalf("create expired: %v", err)
	}

	removed, err := store.SweepExpired(ctx, now)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}

	sessions, err := store.ListLive(ctx, now)
	if err != nil {
		t.Fatalf("list live: %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != "live" {
		t.Fatalf("expected only live session, got %+v", sessions)
	}
}
