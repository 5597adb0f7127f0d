package port

import (
	"context"
	"time"

	"github.com/hectoraparici0/cyberaegis/internal/core/domain"
)

// SessionStore owns the session lifecycle. Implementations must serialize
// mutations; returned sessions are immutable snapshots.
type SessionStore interface {
	Create(ctx context.Context, session domain.Session) error
	// Get returns the session iff it is live at the moment of the call.
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	// Touch advances last-activity; silently does nothing for sessions that
	// are unknown or no longer live.
	Touch(ctx context.Context, sessionID string, at time.Time) error
	Revoke(ctx context.Context, sessionID, reason string, at time.Time) error
	// SweepExpired removes every session whose expiry has passed, returning
	// how many were dropped.
	SweepExpired(ctx context.Context, now time.Time) (int, error)
	ListLive(ctx context.Context, now time.Time) ([]domain.Session, error)
}

// MetricStore retains observations per metric name inside a bounded window.
type MetricStore interface {
	Record(ctx context.Context, metric domain.Metric) error
	Latest(ctx context.Context, name string) (*domain.Metric, error)
	Range(ctx context.Context, name string, start, end time.Time) ([]domain.Metric, error)
}

// AlertStore owns emitted alerts and their acknowledgement state.
type AlertStore interface {
	Add(ctx context.Context, alert domain.Alert) (*domain.Alert, error)
	Acknowledge(ctx context.Context, alertID string) error
	Query(ctx context.Context, filter domain.AlertFilter) ([]domain.Alert, error)
}

// ActivityLog keeps the bounded recent-activity window consumed by the risk
// scorer.
type ActivityLog interface {
	RecordActivity(ctx context.Context, event domain.ActivityEvent) error
	RecentActivity(ctx context.Context, sessionID string, window time.Duration, reference time.Time) ([]domain.ActivityEvent, error)
}
