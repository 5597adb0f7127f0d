package collectors

import (
	"context"
	"runtime"
	"time"

	"github.com/hectoraparici0/cyberaegis/internal/core/domain"
	"github.com/hectoraparici0/cyberaegis/internal/core/port"
)

// RuntimeCollector samples Go runtime statistics from the host process.
type RuntimeCollector struct {
	now func() time.Time
}

var _ port.MetricCollector = (*RuntimeCollector)(nil)

func NewRuntimeCollector() *RuntimeCollector {
	return &RuntimeCollector{now: time.Now}
}

// WithClock overrides the time source.
func (c *RuntimeCollector) WithClock(now func() time.Time) *RuntimeCollector {
	c.now = now
	return c
}

func (c *RuntimeCollector) Name() string {
	return "runtime"
}

func (c *RuntimeCollector) Collect(_ context.Context) ([]domain.Metric, error) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	at := c.now()
	tags := map[string]string{"collector": c.Name()}

	return []domain.Metric{
		{
			Name:      "runtime_heap_alloc_bytes",
			Value:     float64(ms.HeapAlloc),
			Unit:      "bytes",
			Timestamp: at,
			Tags:      tags,
		},
		{
			Name:      "runtime_goroutines",
			Value:     float64(runtime.NumGoroutine()),
			Unit:      "count",
			Timestamp: at,
			Tags:      tags,
		},
		{
			Name:      "runtime_gc_pause_total_ms",
			Value:     float64(ms.PauseTotalNs) / float64(time.Millisecond),
			Unit:      "milliseconds",
			Timestamp: at,
			Tags:      tags,
		},
	}, nil
}
