package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hectoraparici0/cyberaegis/internal/core/domain"
	"github.com/hectoraparici0/cyberaegis/internal/core/port"
	"github.com/hectoraparici0/cyberaegis/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	SubjectID string           `json:"subject_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, subjectID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		SubjectID: subjectID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishAccessGranted publishes aegis.access.granted events.
func (p *EventPublisher) PublishAccessGranted(ctx context.Context, event domain.AccessGrantedEvent) error {
	payload := struct {
		SessionID string         `json:"session_id"`
		SubjectID string         `json:"subject_id"`
		Level     string         `json:"level"`
		GrantedAt time.Time      `json:"granted_at"`
		Detail    map[string]any `json:"detail,omitempty"`
	}{
		SessionID: event.SessionID,
		SubjectID: event.SubjectID,
		Level:     event.Level.String(),
		GrantedAt: event.GrantedAt.UTC(),
		Detail:    event.Detail,
	}

	return p.publish(ctx, event.EventID, "aegis.access.granted", event.SubjectID, event.GrantedAt, payload)
}

// PublishAccessDenied publishes aegis.access.denied events.
func (p *EventPublisher) PublishAccessDenied(ctx context.Context, event domain.AccessDeniedEvent) error {
	payload := struct {
		SubjectID string    `json:"subject_id"`
		Level     string    `json:"level"`
		Reason    string    `json:"reason"`
		DeniedAt  time.Time `json:"denied_at"`
	}{
		SubjectID: event.SubjectID,
		Level:     event.Level.String(),
		Reason:    event.Reason,
		DeniedAt:  event.DeniedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "aegis.access.denied", event.SubjectID, event.DeniedAt, payload)
}

// PublishAccessRevoked publishes aegis.access.revoked events.
func (p *EventPublisher) PublishAccessRevoked(ctx context.Context, event domain.AccessRevokedEvent) error {
	payload := struct {
		SessionID string    `json:"session_id"`
		SubjectID string    `json:"subject_id"`
		Reason    string    `json:"reason"`
		RevokedBy string    `json:"revoked_by"`
		RevokedAt time.Time `json:"revoked_at"`
	}{
		SessionID: event.SessionID,
		SubjectID: event.SubjectID,
		Reason:    event.Reason,
		RevokedBy: event.RevokedBy,
		RevokedAt: event.RevokedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "aegis.access.revoked", event.SubjectID, event.RevokedAt, payload)
}

// PublishAlertRaised publishes aegis.alert.raised events.
func (p *EventPublisher) PublishAlertRaised(ctx context.Context, event domain.AlertRaisedEvent) error {
	payload := struct {
		AlertID  string    `json:"alert_id"`
		RuleID   string    `json:"rule_id,omitempty"`
		Source   string    `json:"source,omitempty"`
		Severity string    `json:"severity"`
		Message  string    `json:"message"`
		RaisedAt time.Time `json:"raised_at"`
	}{
		AlertID:  event.AlertID,
		RuleID:   event.RuleID,
		Source:   event.Source,
		Severity: string(event.Severity),
		Message:  event.Message,
		RaisedAt: event.RaisedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "aegis.alert.raised", "", event.RaisedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
