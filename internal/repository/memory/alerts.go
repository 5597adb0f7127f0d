package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hectoraparici0/cyberaegis/internal/core/domain"
	"github.com/hectoraparici0/cyberaegis/internal/core/port"
	"github.com/hectoraparici0/cyberaegis/internal/repository"
)

// AlertStore owns the emitted alert set and its acknowledgement state.
type AlertStore struct {
	mu     sync.RWMutex
	alerts map[string]*domain.Alert
}

// NewAlertStore builds an empty alert store.
func NewAlertStore() *AlertStore {
	return &AlertStore{alerts: make(map[string]*domain.Alert)}
}

// Add assigns an id, forces acknowledged=false, appends, and returns the
// stored copy.
func (s *AlertStore) Add(_ context.Context, alert domain.Alert) (*domain.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	alert.ID = uuid.NewString()
	alert.Acknowledged = false
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}

	stored := alert
	s.alerts[alert.ID] = &stored

	result := stored
	return &result, nil
}

// Acknowledge flips acknowledged to true. Idempotent; unknown ids return
// ErrNotFound.
func (s *AlertStore) Acknowledge(_ context.Context, alertID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	alert, ok := s.alerts[alertID]
	if !ok {
		return repository.ErrNotFound
	}

	alert.Acknowledged = true
	return nil
}

// Query returns alerts matching the filter, ordered by creation time
// ascending.
func (s *AlertStore) Query(_ context.Context, filter domain.AlertFilter) ([]domain.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Alert, 0)
	for _, alert := range s.alerts {
		if !filter.Matches(*alert) {
			continue
		}
		result = append(result, *alert)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

var _ port.AlertStore = (*AlertStore)(nil)
