package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hectoraparici0/cyberaegis/internal/core/domain"
	"github.com/hectoraparici0/cyberaegis/internal/core/port"
	"github.com/hectoraparici0/cyberaegis/internal/repository"
)

// MetricStore retains per-name observation sequences inside a bounded time
// window. Retention is enforced on every insert rather than by a timer so
// the store never grows unbounded between collector ticks.
type MetricStore struct {
	mu        sync.RWMutex
	retention time.Duration
	series    map[string][]domain.Metric
}

// NewMetricStore builds a store with the supplied retention window.
func NewMetricStore(retention time.Duration) *MetricStore {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return &MetricStore{
		retention: retention,
		series:    make(map[string][]domain.Metric),
	}
}

// Record appends the observation and trims entries that fell out of the
// retention window. The sequence is kept in insert order; an out-of-order
// timestamp is accepted as-is.
func (s *MetricStore) Record(_ context.Context, metric domain.Metric) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(-s.retention)
	history := s.series[metric.Name]

	kept := history[:0]
	for _, m := range history {
		if m.Timestamp.After(cutoff) {
			kept = append(kept, m)
		}
	}
	kept = append(kept, metric)
	s.series[metric.Name] = kept

	return nil
}

// Latest returns the most recently appended observation for the name.
func (s *MetricStore) Latest(_ context.Context, name string) (*domain.Metric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.series[name]
	if len(history) == 0 {
		return nil, repository.ErrNotFound
	}

	latest := history[len(history)-1]
	return &latest, nil
}

// Range returns observations with timestamps inside [start, end], ascending.
// An empty result is not an error.
func (s *MetricStore) Range(_ context.Context, name string, start, end time.Time) ([]domain.Metric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.series[name]
	result := make([]domain.Metric, 0)
	for _, m := range history {
		if m.Timestamp.Before(start) || m.Timestamp.After(end) {
			continue
		}
		result = append(result, m)
	}
	return result, nil
}

var _ port.MetricStore = (*MetricStore)(nil)
