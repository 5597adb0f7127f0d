package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hectoraparici0/cyberaegis/internal/core/domain"
	"github.com/hectoraparici0/cyberaegis/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, subjectID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("subject_id", subjectID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishAccessGranted logs aegis.access.granted events.
func (p *StubPublisher) PublishAccessGranted(_ context.Context, event domain.AccessGrantedEvent) error {
	payload := map[string]any{
		"session_id": event.SessionID,
		"subject_id": event.SubjectID,
		"level":      event.Level.String(),
		"granted_at": event.GrantedAt,
		"detail":     event.Detail,
	}
	p.logEvent("aegis.access.granted", event.SubjectID, event.GrantedAt, payload)
	return nil
}

// PublishAccessDenied logs aegis.access.denied events.
func (p *StubPublisher) PublishAccessDenied(_ context.Context, event domain.AccessDeniedEvent) error {
	payload := map[string]any{
		"subject_id": event.SubjectID,
		"level":      event.Level.String(),
		"reason":     event.Reason,
		"denied_at":  event.DeniedAt,
	}
	p.logEvent("aegis.access.denied", event.SubjectID, event.DeniedAt, payload)
	return nil
}

// PublishAccessRevoked logs aegis.access.revoked events.
func (p *StubPublisher) PublishAccessRevoked(_ context.Context, event domain.AccessRevokedEvent) error {
	payload := map[string]any{
		"session_id": event.SessionID,
		"subject_id": event.SubjectID,
		"reason":     event.Reason,
		"revoked_by": event.RevokedBy,
		"revoked_at": event.RevokedAt,
	}
	p.logEvent("aegis.access.revoked", event.SubjectID, event.RevokedAt, payload)
	return nil
}

// PublishAlertRaised logs aegis.alert.raised events.
func (p *StubPublisher) PublishAlertRaised(_ context.Context, event domain.AlertRaisedEvent) error {
	payload := map[string]any{
		"alert_id":  event.AlertID,
		"rule_id":   event.RuleID,
		"source":    event.Source,
		"severity":  string(event.Severity),
		"message":   event.Message,
		"raised_at": event.RaisedAt,
	}
	p.logEvent("aegis.alert.raised", "", event.RaisedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
