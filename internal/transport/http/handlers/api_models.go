package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hectoraparici0/cyberaegis/internal/core/domain"
)

// ErrorResponse represents a generic error payload with request ID for debugging.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// NewErrorResponse creates an error response carrying the correlation id.
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	requestID, _ := c.Get("request_id")
	requestIDStr, _ := requestID.(string)

	return ErrorResponse{
		Error:     errorMsg,
		RequestID: requestIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// GrantRequest defines the payload for the access grant endpoint.
type GrantRequest struct {
	SubjectID string `json:"subject_id" binding:"required"`
	Secret    string `json:"secret"`
	MFACode   string `json:"mfa_code"`
	MasterKey string `json:"master_key"`
	Level     string `json:"level" binding:"required"`
}

// ProfilePayload summarizes the capability profile attached to a session.
type ProfilePayload struct {
	Level        string   `json:"level"`
	Permissions  []string `json:"permissions"`
	Features     []string `json:"features"`
	Restrictions []string `json:"restrictions"`
	AuditLevel   string   `json:"audit_level"`
}

// SessionPayload describes a session view in API responses.
type SessionPayload struct {
	ID             string         `json:"id"`
	SubjectID      string         `json:"subject_id"`
	Profile        ProfilePayload `json:"profile"`
	CreatedAt      time.Time      `json:"created_at"`
	LastActivityAt time.Time      `json:"last_activity_at"`
	ExpiresAt      time.Time      `json:"expires_at"`
}

// GrantResponse is returned for a successful grant.
type GrantResponse struct {
	Session   SessionPayload `json:"session"`
	Token     string         `json:"token,omitempty"`
	TokenType string         `json:"token_type,omitempty"`
}

// RevokeRequest contains the session revocation payload.
type RevokeRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Reason    string `json:"reason"`
}

// RevokeResponse acknowledges a revocation.
type RevokeResponse struct {
	Revoked bool `json:"revoked"`
}

// AlertRuleRequest defines the payload for registering a threshold rule.
type AlertRuleRequest struct {
	MetricName string  `json:"metric_name" binding:"required"`
	Comparator string  `json:"comparator" binding:"required"`
	Threshold  float64 `json:"threshold"`
	Severity   string  `json:"severity" binding:"required"`
}

// AlertRulePayload summarizes a registered rule.
type AlertRulePayload struct {
	ID         string  `json:"id"`
	MetricName string  `json:"metric_name"`
	Comparator string  `json:"comparator"`
	Threshold  float64 `json:"threshold"`
	Severity   string  `json:"severity"`
}

// AlertPayload describes an alert view in API responses.
type AlertPayload struct {
	ID           string    `json:"id"`
	RuleID       string    `json:"rule_id,omitempty"`
	Source       string    `json:"source"`
	Severity     string    `json:"severity"`
	Message      string    `json:"message"`
	CreatedAt    time.Time `json:"created_at"`
	Acknowledged bool      `json:"acknowledged"`
}

// AlertListResponse wraps a filtered alert query.
type AlertListResponse struct {
	Alerts []AlertPayload `json:"alerts"`
	Total  int            `json:"total"`
}

// MetricPayload describes a single observation.
type MetricPayload struct {
	Name      string            `json:"name"`
	Value     float64           `json:"value"`
	Unit      string            `json:"unit,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Tags      map[string]string `json:"tags,omitempty"`
}

// MetricListResponse wraps a metric range query.
type MetricListResponse struct {
	Name    string          `json:"name"`
	Metrics []MetricPayload `json:"metrics"`
	Total   int             `json:"total"`
}

// MetricRecordRequest defines the payload for pushing an observation.
type MetricRecordRequest struct {
	Name      string            `json:"name" binding:"required"`
	Value     float64           `json:"value"`
	Unit      string            `json:"unit"`
	Timestamp *time.Time        `json:"timestamp,omitempty"`
	Tags      map[string]string `json:"tags,omitempty"`
}

// HealthResponse describes the service health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadyResponse describes readiness probe results with dependency checks.
type ReadyResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

func newProfilePayload(profile *domain.AccessProfile) ProfilePayload {
	if profile == nil {
		return ProfilePayload{}
	}
	return ProfilePayload{
		Level:        profile.Level.String(),
		Permissions:  profile.Permissions,
		Features:     profile.Features,
		Restrictions: profile.Restrictions,
		AuditLevel:   string(profile.AuditLevel),
	}
}

func newSessionPayload(session domain.Session) SessionPayload {
	return SessionPayload{
		ID:             session.ID,
		SubjectID:      session.SubjectID,
		Profile:        newProfilePayload(session.Profile),
		CreatedAt:      session.CreatedAt,
		LastActivityAt: session.LastActivityAt,
		ExpiresAt:      session.ExpiresAt,
	}
}

func newAlertPayload(alert domain.Alert) AlertPayload {
	return AlertPayload{
		ID:           alert.ID,
		RuleID:       alert.RuleID,
		Source:       alert.Source,
		Severity:     string(alert.Severity),
		Message:      alert.Message,
		CreatedAt:    alert.CreatedAt,
		Acknowledged: alert.Acknowledged,
	}
}

func newMetricPayload(metric domain.Metric) MetricPayload {
	return MetricPayload{
		Name:      metric.Name,
		Value:     metric.Value,
		Unit:      metric.Unit,
		Timestamp: metric.Timestamp,
		Tags:      metric.Tags,
	}
}
