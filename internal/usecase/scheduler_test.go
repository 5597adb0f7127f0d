package usecase

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/hectoraparici0/cyberaegis/internal/core/domain"
	"github.com/hectoraparici0/cyberaegis/internal/core/port"
	"github.com/hectoraparici0/cyberaegis/internal/repository/memory"
)

func TestSchedulerRunsTasksUntilCancelled(t *testing.T) {
	sessions := memory.NewSessionStore()
	collector := &stubCollector{name: "stub", metrics: []domain.Metric{
		{Name: "heartbeat", Value: 1, Timestamp: time.Now()},
	}}

	metrics := memory.NewMetricStore(time.Hour)
	alerts := memory.NewAlertStore()
	events := &recordingPublisher{}
	monitor := NewMonitorService(metrics, alerts, []port.MetricCollector{collector}, events, nil)

	risk := NewRiskService(RiskServiceDeps{
		Sessions:  sessions,
		Activity:  memory.NewActivityLog(time.Hour),
		Contexts:  staticContext{},
		Alerts:    alerts,
		Publisher: events,
		Weights:   defaultWeights(),
		Window:    time.Hour,
		Threshold: 0.8,
	})

	scheduler := NewScheduler(monitor, risk, sessions, nil, SchedulerIntervals{
		Collect:  10 * time.Millisecond,
		Evaluate: 10 * time.Millisecond,
		Sweep:    10 * time.Millisecond,
		Scan:     10 * time.Millisecond,
	}, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	scheduler.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := metrics.Latest(context.Background(), "heartbeat"); err == nil {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	scheduler.Wait()

	if _, err := metrics.Latest(context.Background(), "heartbeat"); err != nil {
		t.Fatalf("collection tick never recorded the heartbeat metric: %v", err)
	}
}
