package domain

import "time"

// Session is a time-bounded, revocable grant of an access profile to an
// authenticated subject. The profile pointer is shared with every other
// session at the same level and must be treated as read-only.
type Session struct {
	ID             string
	SubjectID      string
	Profile        *AccessProfile
	CreatedAt      time.Time
	LastActivityAt time.Time
	ExpiresAt      time.Time
	RevokedAt      *time.Time
	RevokeReason   *string
}

// IsLive reports whether the session is still valid at the supplied moment:
// not revoked and not past its expiry.
func (s Session) IsLive(at time.Time) bool {
	if s.RevokedAt != nil {
		return false
	}
	return at.Before(s.ExpiresAt)
}

// Touch advances last-activity metadata.
func (s *Session) Touch(at time.Time) {
	s.LastActivityAt = at
}

// Revoke marks the session terminal. Returns true when the session changed
// state, false when it was already revoked.
func (s *Session) Revoke(at time.Time, reason string) bool {
	if s.RevokedAt != nil {
		return false
	}
	s.RevokedAt = &at
	s.RevokeReason = &reason
	return true
}

// ActivityKind classifies entries in a session's recent-activity window.
type ActivityKind string

const (
	ActivityRequest           ActivityKind = "request"
	ActivityAuthFailure       ActivityKind = "auth_failure"
	ActivityLevelEscalation   ActivityKind = "level_escalation"
	ActivityRestrictedAttempt ActivityKind = "restricted_attempt"
)

// ActivityEvent is a single observation in a session's activity stream.
type ActivityEvent struct {
	SessionID string
	Kind      ActivityKind
	At        time.Time
	Detail    map[string]string
}
