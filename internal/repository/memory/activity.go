package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hectoraparici0/cyberaegis/internal/core/domain"
	"github.com/hectoraparici0/cyberaegis/internal/core/port"
)

// ActivityLog keeps a bounded recent-activity window per session for the
// risk scorer. Entries older than the window are trimmed on insert, same
// amortized discipline as the metric store.
type ActivityLog struct {
	mu     sync.RWMutex
	window time.Duration
	events map[string][]domain.ActivityEvent
}

// NewActivityLog builds a log retaining the supplied window of activity.
func NewActivityLog(window time.Duration) *ActivityLog {
	if window <= 0 {
		window = time.Hour
	}
	return &ActivityLog{
		window: window,
		events: make(map[string][]domain.ActivityEvent),
	}
}

// RecordActivity appends the event and drops entries outside the window.
func (l *ActivityLog) RecordActivity(_ context.Context, event domain.ActivityEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().UTC().Add(-l.window)
	history := l.events[event.SessionID]

	kept := history[:0]
	for _, e := range history {
		if e.At.After(cutoff) {
			kept = append(kept, e)
		}
	}
	kept = append(kept, event)
	l.events[event.SessionID] = kept

	return nil
}

// RecentActivity returns events for the session inside the window ending at
// reference time, oldest first.
func (l *ActivityLog) RecentActivity(_ context.Context, sessionID string, window time.Duration, reference time.Time) ([]domain.ActivityEvent, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	cutoff := reference.Add(-window)
	result := make([]domain.ActivityEvent, 0)
	for _, e := range l.events[sessionID] {
		if e.At.Before(cutoff) || e.At.After(reference) {
			continue
		}
		result = append(result, e)
	}
	return result, nil
}

var _ port.ActivityLog = (*ActivityLog)(nil)
