package domain

import "time"

// AccessGrantedEvent records a successful grant for the audit pipeline.
type AccessGrantedEvent struct {
	EventID   string
	SessionID string
	SubjectID string
	Level     AccessLevel
	GrantedAt time.Time
	Detail    map[string]any
}

// AccessDeniedEvent records a refused grant. Authorization failures are
// always published regardless of the requested profile's audit level.
type AccessDeniedEvent struct {
	EventID   string
	SubjectID string
	Level     AccessLevel
	Reason    string
	DeniedAt  time.Time
}

// AccessRevokedEvent records a session revocation and its reason.
type AccessRevokedEvent struct {
	EventID   string
	SessionID string
	SubjectID string
	Reason    string
	RevokedBy string
	RevokedAt time.Time
}

// AlertRaisedEvent mirrors an alert onto the audit pipeline.
type AlertRaisedEvent struct {
	EventID  string
	AlertID  string
	RuleID   string
	Source   string
	Severity Severity
	Message  string
	RaisedAt time.Time
}

// AuditRecord is the persisted form of a security event in the append-only
// audit trail.
type AuditRecord struct {
	ID        string
	Kind      string
	SubjectID string
	SessionID string
	Detail    map[string]any
	At        time.Time
}
