package usecase

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hectoraparici0/cyberaegis/internal/core/port"
	"github.com/hectoraparici0/cyberaegis/internal/infra/telemetry"
)

// Scheduler drives the periodic tasks: metric collection, rule evaluation,
// session sweep, and risk scan. Each task runs on its own ticker so one
// slow tick cannot delay the others; all stop together when the context is
// cancelled.
type Scheduler struct {
	monitor  *MonitorService
	risk     *RiskService
	sessions port.SessionStore
	metrics  *telemetry.CoreMetrics
	logger   *zap.Logger

	collectEvery  time.Duration
	evaluateEvery time.Duration
	sweepEvery    time.Duration
	scanEvery     time.Duration

	wg sync.WaitGroup
}

// SchedulerIntervals carries the four tick cadences. Non-positive values
// fall back to defaults.
type SchedulerIntervals struct {
	Collect  time.Duration
	Evaluate time.Duration
	Sweep    time.Duration
	Scan     time.Duration
}

func NewScheduler(
	monitor *MonitorService,
	risk *RiskService,
	sessions port.SessionStore,
	metrics *telemetry.CoreMetrics,
	intervals SchedulerIntervals,
	log *zap.Logger,
) *Scheduler {
	if intervals.Collect <= 0 {
		intervals.Collect = 60 * time.Second
	}
	if intervals.Evaluate <= 0 {
		intervals.Evaluate = 30 * time.Second
	}
	if intervals.Sweep <= 0 {
		intervals.Sweep = 60 * time.Second
	}
	if intervals.Scan <= 0 {
		intervals.Scan = time.Second
	}
	return &Scheduler{
		monitor:       monitor,
		risk:          risk,
		sessions:      sessions,
		metrics:       metrics,
		logger:        log,
		collectEvery:  intervals.Collect,
		evaluateEvery: intervals.Evaluate,
		sweepEvery:    intervals.Sweep,
		scanEvery:     intervals.Scan,
	}
}

// Start launches the periodic tasks. They run until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.spawn(ctx, "metric_collection", s.collectEvery, s.monitor.Collect)
	s.spawn(ctx, "rule_evaluation", s.evaluateEvery, s.monitor.Evaluate)
	s.spawn(ctx, "session_sweep", s.sweepEvery, s.sweep)
	s.spawn(ctx, "risk_scan", s.scanEvery, s.risk.Scan)
}

// Wait blocks until every task has exited.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) spawn(ctx context.Context, name string, every time.Duration, tick func(context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(every)
		defer ticker.Stop()

		s.logger.Info("Scheduled task started",
			zap.String("task", name),
			zap.Duration("interval", every))

		for {
			select {
			case <-ctx.Done():
				s.logger.Info("Scheduled task stopped", zap.String("task", name))
				return
			case <-ticker.C:
				tick(ctx)
			}
		}
	}()
}

func (s *Scheduler) sweep(ctx context.Context) {
	removed, err := s.sessions.SweepExpired(ctx, time.Now())
	if err != nil {
		s.logger.Error("Session sweep failed", zap.Error(err))
		return
	}
	if removed > 0 {
		if s.metrics != nil {
			s.metrics.SessionsSwept.Add(float64(removed))
		}
		s.logger.Info("Expired sessions swept", zap.Int("removed", removed))
	}
}
