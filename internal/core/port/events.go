package port

import (
	"context"

	"github.com/hectoraparici0/cyberaegis/internal/core/domain"
)

// EventPublisher emits audit events onto the platform event bus.
type EventPublisher interface {
	PublishAccessGranted(ctx context.Context, event domain.AccessGrantedEvent) error
	PublishAccessDenied(ctx context.Context, event domain.AccessDeniedEvent) error
	PublishAccessRevoked(ctx context.Context, event domain.AccessRevokedEvent) error
	PublishAlertRaised(ctx context.Context, event domain.AlertRaisedEvent) error
}

// AuditTrail appends security events to durable storage. Optional: a nil
// trail disables persistence without changing core behavior.
type AuditTrail interface {
	Append(ctx context.Context, record domain.AuditRecord) error
}
