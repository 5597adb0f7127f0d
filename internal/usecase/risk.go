package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hectoraparici0/cyberaegis/internal/core/domain"
	"github.com/hectoraparici0/cyberaegis/internal/core/port"
	"github.com/hectoraparici0/cyberaegis/internal/infra/config"
	"github.com/hectoraparici0/cyberaegis/internal/infra/logger"
	"github.com/hectoraparici0/cyberaegis/internal/infra/telemetry"
)

// Saturation caps per factor. A factor contributes its full weight once the
// observed count reaches the cap, so the score stays monotonic in every
// input and bounded by the weight sum.
const (
	authFailureCap       = 3
	escalationCap        = 2
	restrictedAttemptCap = 3
	requestVelocityCap   = 120
)

// RiskService scores recent session behavior and contains sessions whose
// score crosses the escalation threshold.
type RiskService struct {
	sessions  port.SessionStore
	activity  port.ActivityLog
	contexts  port.ContextProvider
	alerts    port.AlertStore
	access    *AccessService
	publisher port.EventPublisher
	metrics   *telemetry.CoreMetrics

	weights   config.RiskWeights
	window    time.Duration
	threshold float64
	now       func() time.Time
}

// RiskServiceDeps bundles the collaborators for NewRiskService.
type RiskServiceDeps struct {
	Sessions  port.SessionStore
	Activity  port.ActivityLog
	Contexts  port.ContextProvider
	Alerts    port.AlertStore
	Access    *AccessService
	Publisher port.EventPublisher
	Metrics   *telemetry.CoreMetrics
	Weights   config.RiskWeights
	Window    time.Duration
	Threshold float64
}

func NewRiskService(deps RiskServiceDeps) *RiskService {
	window := deps.Window
	if window <= 0 {
		window = 15 * time.Minute
	}
	threshold := deps.Threshold
	if threshold <= 0 {
		threshold = 0.8
	}
	return &RiskService{
		sessions:  deps.Sessions,
		activity:  deps.Activity,
		contexts:  deps.Contexts,
		alerts:    deps.Alerts,
		access:    deps.Access,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
		weights:   deps.Weights,
		window:    window,
		threshold: threshold,
		now:       time.Now,
	}
}

// WithClock overrides the time source.
func (s *RiskService) WithClock(now func() time.Time) *RiskService {
	s.now = now
	return s
}

type factorContribution struct {
	name   string
	amount float64
}

// Score computes the risk assessment for one session from its bounded
// activity window and the external behavior context. Deterministic for
// identical inputs; adding any suspicious observation never lowers the
// score.
func (s *RiskService) Score(ctx context.Context, session domain.Session) (domain.RiskAssessment, error) {
	reference := s.now()

	sessionEvents, err := s.activity.RecentActivity(ctx, session.ID, s.window, reference)
	if err != nil {
		return domain.RiskAssessment{}, fmt.Errorf("read session activity: %w", err)
	}
	subjectEvents, err := s.activity.RecentActivity(ctx, session.SubjectID, s.window, reference)
	if err != nil {
		return domain.RiskAssessment{}, fmt.Errorf("read subject activity: %w", err)
	}

	var authFailures, escalations, restricted, requests int
	for _, event := range append(sessionEvents, subjectEvents...) {
		switch event.Kind {
		case domain.ActivityAuthFailure:
			authFailures++
		case domain.ActivityLevelEscalation:
			escalations++
		case domain.ActivityRestrictedAttempt:
			restricted++
		case domain.ActivityRequest:
			requests++
		}
	}

	behavior, err := s.contexts.ContextFor(ctx, session.ID)
	if err != nil {
		return domain.RiskAssessment{}, fmt.Errorf("read session context: %w", err)
	}

	contributions := []factorContribution{
		{"auth_failures", s.weights.AuthFailure * saturate(authFailures, authFailureCap)},
		{"level_escalation_attempts", s.weights.LevelEscalation * saturate(escalations, escalationCap)},
		{"restricted_feature_attempts", s.weights.RestrictedAttempt * saturate(restricted, restrictedAttemptCap)},
		{"request_velocity", s.weights.RequestVelocity * saturate(requests, requestVelocityCap)},
	}
	if behavior.LocationAnomaly {
		contributions = append(contributions, factorContribution{"location_anomaly", s.weights.LocationAnomaly})
	}
	if behavior.DeviceAnomaly {
		contributions = append(contributions, factorContribution{"device_anomaly", s.weights.DeviceAnomaly})
	}

	score := 0.0
	var factors []string
	active := contributions[:0]
	for _, c := range contributions {
		if c.amount > 0 {
			score += c.amount
			active = append(active, c)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		if active[i].amount != active[j].amount {
			return active[i].amount > active[j].amount
		}
		return active[i].name < active[j].name
	})
	for _, c := range active {
		factors = append(factors, c.name)
	}

	if score > 1 {
		score = 1
	}

	return domain.RiskAssessment{
		SessionID:           session.ID,
		Score:               score,
		ContributingFactors: factors,
		Timestamp:           reference,
	}, nil
}

// Scan assesses every live session. One session's failure never stops the
// rest of the pass.
func (s *RiskService) Scan(ctx context.Context) {
	log := logger.WithContext(ctx)

	live, err := s.sessions.ListLive(ctx, s.now())
	if err != nil {
		log.Error("Failed to list live sessions", zap.Error(err))
		return
	}

	for _, session := range live {
		assessment, err := s.Score(ctx, session)
		if err != nil {
			log.Error("Failed to score session",
				zap.String("session_id", session.ID),
				zap.Error(err))
			continue
		}
		if assessment.Score < s.threshold {
			continue
		}
		s.escalate(ctx, session, assessment)
	}
}

// escalate records the CRITICAL alert and, for classified-or-above
// sessions, revokes the grant. A containment failure is not allowed to pass
// silently: the original alert stays recorded and the failure raises a
// second CRITICAL alert.
func (s *RiskService) escalate(ctx context.Context, session domain.Session, assessment domain.RiskAssessment) {
	log := logger.WithContext(ctx)

	if s.metrics != nil {
		s.metrics.RiskEscalations.Inc()
	}

	message := fmt.Sprintf("suspicious activity on session %s: risk score %.2f (factors: %v)",
		session.ID, assessment.Score, assessment.ContributingFactors)
	s.raiseBehaviorAlert(ctx, message)

	log.Warn("Session risk escalated",
		zap.String("session_id", session.ID),
		zap.Float64("score", assessment.Score),
		zap.Strings("factors", assessment.ContributingFactors))

	if session.Profile == nil || !session.Profile.Level.AtLeast(domain.LevelClassified) {
		return
	}

	if err := s.access.RevokeAccess(ctx, session.ID, "automatic_containment", "risk-scanner"); err != nil {
		log.Error("Containment revoke failed",
			zap.String("session_id", session.ID),
			zap.Error(err))
		s.raiseBehaviorAlert(ctx, fmt.Sprintf(
			"containment failed for session %s: revoke error: %v", session.ID, err))
	}
}

func (s *RiskService) raiseBehaviorAlert(ctx context.Context, message string) {
	now := s.now()
	stored, err := s.alerts.Add(ctx, domain.Alert{
		Source:    domain.AlertSourceBehavior,
		Severity:  domain.SeverityCritical,
		Message:   message,
		CreatedAt: now,
	})
	if err != nil {
		logger.WithContext(ctx).Error("Failed to store behavior alert", zap.Error(err))
		return
	}

	if s.metrics != nil {
		s.metrics.AlertsFired.WithLabelValues(string(stored.Severity), stored.Source).Inc()
	}

	event := domain.AlertRaisedEvent{
		EventID:  uuid.NewString(),
		AlertID:  stored.ID,
		Source:   stored.Source,
		Severity: stored.Severity,
		Message:  stored.Message,
		RaisedAt: now,
	}
	if err := s.publisher.PublishAlertRaised(ctx, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish alert raised event", zap.Error(err))
	}
}

func saturate(count, limit int) float64 {
	if count <= 0 {
		return 0
	}
	if count >= limit {
		return 1
	}
	return float64(count) / float64(limit)
}
