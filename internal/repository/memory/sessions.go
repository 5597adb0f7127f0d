package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hectoraparici0/cyberaegis/internal/core/domain"
	"github.com/hectoraparici0/cyberaegis/internal/core/port"
	"github.com/hectoraparici0/cyberaegis/internal/repository"
)

// SessionStore is the in-memory owner of the active session set. A single
// mutex serializes every mutation; reads hand out copies so callers never
// observe a partially applied write.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

// NewSessionStore builds an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*domain.Session)}
}

// Create inserts the session. An ID collision returns ErrDuplicateID.
func (s *SessionStore) Create(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[session.ID]; exists {
		return repository.ErrDuplicateID
	}

	stored := session
	s.sessions[session.ID] = &stored
	return nil
}

// Get returns a live session snapshot. Unknown, expired, and revoked
// sessions all surface as ErrNotFound.
func (s *SessionStore) Get(_ context.Context, sessionID string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok || !session.IsLive(time.Now().UTC()) {
		return nil, repository.ErrNotFound
	}

	copied := cloneSession(session)
	return &copied, nil
}

// Touch advances last-activity. A no-op for sessions that are unknown or no
// longer live; callers needing to react must check liveness separately.
func (s *SessionStore) Touch(_ context.Context, sessionID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok || !session.IsLive(at) {
		return nil
	}

	session.Touch(at)
	return nil
}

// Revoke marks the session terminal and drops it from the live set. Unknown
// sessions return ErrNotFound so the caller can decide whether that matters;
// the access controller treats it as success.
func (s *SessionStore) Revoke(_ context.Context, sessionID, reason string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return repository.ErrNotFound
	}

	session.Revoke(at, reason)
	delete(s.sessions, sessionID)
	return nil
}

// SweepExpired removes every session whose expiry has passed. Safe to call
// concurrently with the other operations.
func (s *SessionStore) SweepExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, session := range s.sessions {
		if !now.Before(session.ExpiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// ListLive returns snapshots of every session still live at the supplied
// moment.
func (s *SessionStore) ListLive(_ context.Context, now time.Time) ([]domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		if !session.IsLive(now) {
			continue
		}
		result = append(result, cloneSession(session))
	}
	return result, nil
}

func cloneSession(session *domain.Session) domain.Session {
	copied := *session
	if session.RevokedAt != nil {
		at := *session.RevokedAt
		copied.RevokedAt = &at
	}
	if session.RevokeReason != nil {
		reason := *session.RevokeReason
		copied.RevokeReason = &reason
	}
	return copied
}

var _ port.SessionStore = (*SessionStore)(nil)
