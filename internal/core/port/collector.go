package port

import (
	"context"

	"github.com/hectoraparici0/cyberaegis/internal/core/domain"
)

// MetricCollector yields named numeric observations when polled by the
// collection tick. The name identifies the collector in audit and error logs.
type MetricCollector interface {
	Name() string
	Collect(ctx context.Context) ([]domain.Metric, error)
}

// ContextProvider supplies external behavior signals for a session, used by
// the risk scorer.
type ContextProvider interface {
	ContextFor(ctx context.Context, sessionID string) (domain.SessionContext, error)
}
