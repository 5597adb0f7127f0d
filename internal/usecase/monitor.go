package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hectoraparici0/cyberaegis/internal/core/domain"
	"github.com/hectoraparici0/cyberaegis/internal/core/port"
	"github.com/hectoraparici0/cyberaegis/internal/infra/logger"
	"github.com/hectoraparici0/cyberaegis/internal/infra/telemetry"
	"github.com/hectoraparici0/cyberaegis/internal/repository"
)

// MonitorService owns metric ingestion and threshold-rule evaluation. Rules
// are kept in insertion order and evaluated independently; one broken rule
// never stops the rest of the tick.
type MonitorService struct {
	metricStore port.MetricStore
	alertStore  port.AlertStore
	collectors  []port.MetricCollector
	publisher   port.EventPublisher
	metrics     *telemetry.CoreMetrics

	mu    sync.RWMutex
	rules []domain.AlertRule

	now func() time.Time
}

func NewMonitorService(
	metricStore port.MetricStore,
	alertStore port.AlertStore,
	collectors []port.MetricCollector,
	publisher port.EventPublisher,
	metrics *telemetry.CoreMetrics,
) *MonitorService {
	return &MonitorService{
		metricStore: metricStore,
		alertStore:  alertStore,
		collectors:  collectors,
		publisher:   publisher,
		metrics:     metrics,
		now:         time.Now,
	}
}

// WithClock overrides the time source.
func (s *MonitorService) WithClock(now func() time.Time) *MonitorService {
	s.now = now
	return s
}

// AddRule validates the definition, assigns an id, and registers the rule.
func (s *MonitorService) AddRule(_ context.Context, rule domain.AlertRule) (*domain.AlertRule, error) {
	if err := rule.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRuleDefinition, err)
	}

	rule.ID = uuid.NewString()

	s.mu.Lock()
	s.rules = append(s.rules, rule)
	s.mu.Unlock()

	return &rule, nil
}

// Rules returns a snapshot of the registered rules in insertion order.
func (s *MonitorService) Rules(_ context.Context) []domain.AlertRule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.AlertRule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Collect polls every registered collector and records what it yields. A
// failing collector is logged and skipped; the others still run.
func (s *MonitorService) Collect(ctx context.Context) {
	log := logger.WithContext(ctx)

	for _, collector := range s.collectors {
		observations, err := collector.Collect(ctx)
		if err != nil {
			if s.metrics != nil {
				s.metrics.CollectorFailures.WithLabelValues(collector.Name()).Inc()
			}
			log.Error("Collector failed",
				zap.String("collector", collector.Name()),
				zap.Error(err))
			continue
		}
		for _, metric := range observations {
			if err := s.metricStore.Record(ctx, metric); err != nil {
				log.Error("Failed to record metric",
					zap.String("metric", metric.Name),
					zap.Error(err))
			}
		}
	}
}

// Record ingests a single externally-pushed observation.
func (s *MonitorService) Record(ctx context.Context, metric domain.Metric) error {
	if metric.Name == "" {
		return fmt.Errorf("metric name is required")
	}
	if metric.Timestamp.IsZero() {
		metric.Timestamp = s.now()
	}
	return s.metricStore.Record(ctx, metric)
}

// Evaluate runs every rule against the latest value of its metric. A metric
// with no data is skipped without error. Satisfied rules fire on every call
// while the condition holds; suppression belongs to the notification layer.
func (s *MonitorService) Evaluate(ctx context.Context) {
	log := logger.WithContext(ctx)

	for _, rule := range s.Rules(ctx) {
		latest, err := s.metricStore.Latest(ctx, rule.MetricName)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			log.Error("Failed to read latest metric",
				zap.String("metric", rule.MetricName),
				zap.Error(err))
			continue
		}

		if !rule.Comparator.Apply(latest.Value, rule.Threshold) {
			continue
		}

		message := fmt.Sprintf("%s is %g (%s %g)",
			rule.MetricName, latest.Value, rule.Comparator, rule.Threshold)

		if err := s.raise(ctx, rule, message); err != nil {
			log.Error("Failed to raise alert",
				zap.String("rule_id", rule.ID),
				zap.Error(err))
		}
	}
}

func (s *MonitorService) raise(ctx context.Context, rule domain.AlertRule, message string) error {
	now := s.now()
	stored, err := s.alertStore.Add(ctx, domain.Alert{
		RuleID:    rule.ID,
		Source:    "rule",
		Severity:  rule.Severity,
		Message:   message,
		CreatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("store alert: %w", err)
	}

	if s.metrics != nil {
		s.metrics.AlertsFired.WithLabelValues(string(stored.Severity), stored.Source).Inc()
	}

	event := domain.AlertRaisedEvent{
		EventID:  uuid.NewString(),
		AlertID:  stored.ID,
		RuleID:   stored.RuleID,
		Source:   stored.Source,
		Severity: stored.Severity,
		Message:  stored.Message,
		RaisedAt: now,
	}
	if err := s.publisher.PublishAlertRaised(ctx, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish alert raised event", zap.Error(err))
	}

	return nil
}

// Metrics returns observations for a name inside an inclusive time range.
func (s *MonitorService) Metrics(ctx context.Context, name string, start, end time.Time) ([]domain.Metric, error) {
	if name == "" {
		return nil, fmt.Errorf("metric name is required")
	}
	if end.Before(start) {
		return nil, fmt.Errorf("range end precedes start")
	}
	return s.metricStore.Range(ctx, name, start, end)
}

// AcknowledgeAlert marks an alert acknowledged. Acknowledging twice is not
// an error; an unknown id is.
func (s *MonitorService) AcknowledgeAlert(ctx context.Context, alertID string) error {
	if err := s.alertStore.Acknowledge(ctx, alertID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrAlertNotFound
		}
		return fmt.Errorf("acknowledge alert: %w", err)
	}
	return nil
}

// QueryAlerts returns alerts matching the filter, oldest first.
func (s *MonitorService) QueryAlerts(ctx context.Context, filter domain.AlertFilter) ([]domain.Alert, error) {
	return s.alertStore.Query(ctx, filter)
}
