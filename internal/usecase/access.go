package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hectoraparici0/cyberaegis/internal/core/domain"
	"github.com/hectoraparici0/cyberaegis/internal/core/port"
	"github.com/hectoraparici0/cyberaegis/internal/infra/logger"
	"github.com/hectoraparici0/cyberaegis/internal/infra/security"
	"github.com/hectoraparici0/cyberaegis/internal/infra/telemetry"
	"github.com/hectoraparici0/cyberaegis/internal/repository"
)

const sessionIDBytes = 32

// GrantRequest carries the credential and the tier a caller wants a session
// at.
type GrantRequest struct {
	Credential port.Credential
	Level      domain.AccessLevel
}

// GrantResult is the session plus the bearer token bound to it.
type GrantResult struct {
	Session domain.Session
	Token   string
}

// AccessService grants and revokes tiered sessions. The master path is
// checked before any normal credential verification so a wrong master key
// never leaks whether the accompanying credential was valid.
type AccessService struct {
	sessions      port.SessionStore
	profiles      *ProfileRegistry
	authenticator port.Authenticator
	masterKeys    port.MasterKeyVerifier
	publisher     port.EventPublisher
	trail         port.AuditTrail
	activity      port.ActivityLog
	bearer        *security.BearerIssuer
	metrics       *telemetry.CoreMetrics

	sessionTTL  time.Duration
	authTimeout time.Duration
	now         func() time.Time
}

// AccessServiceDeps bundles the collaborators for NewAccessService. Trail
// and bearer may be nil; those concerns are then skipped.
type AccessServiceDeps struct {
	Sessions      port.SessionStore
	Profiles      *ProfileRegistry
	Authenticator port.Authenticator
	MasterKeys    port.MasterKeyVerifier
	Publisher     port.EventPublisher
	Trail         port.AuditTrail
	Activity      port.ActivityLog
	Bearer        *security.BearerIssuer
	Metrics       *telemetry.CoreMetrics
	SessionTTL    time.Duration
	AuthTimeout   time.Duration
}

func NewAccessService(deps AccessServiceDeps) *AccessService {
	ttl := deps.SessionTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	timeout := deps.AuthTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &AccessService{
		sessions:      deps.Sessions,
		profiles:      deps.Profiles,
		authenticator: deps.Authenticator,
		masterKeys:    deps.MasterKeys,
		publisher:     deps.Publisher,
		trail:         deps.Trail,
		activity:      deps.Activity,
		bearer:        deps.Bearer,
		metrics:       deps.Metrics,
		sessionTTL:    ttl,
		authTimeout:   timeout,
		now:           time.Now,
	}
}

// WithClock overrides the time source.
func (s *AccessService) WithClock(now func() time.Time) *AccessService {
	s.now = now
	return s
}

// GrantAccess authenticates the credential and creates exactly one session
// on success. No failure path leaves a partial session behind.
func (s *AccessService) GrantAccess(ctx context.Context, req GrantRequest) (*GrantResult, error) {
	log := logger.WithContext(ctx)

	if !req.Level.Valid() {
		return nil, fmt.Errorf("%w: %d", domain.ErrUnknownAccessLevel, int(req.Level))
	}

	profile, err := s.profiles.ProfileFor(req.Level)
	if err != nil {
		return nil, err
	}

	if req.Level == domain.LevelMaster {
		if !s.masterKeys.Verify(req.Credential.MasterKey) {
			s.deny(ctx, req, "master_key_rejected")
			log.Warn("Master access attempt rejected",
				zap.String("subject_id", req.Credential.SubjectID))
			return nil, domain.ErrUnauthorizedMasterAccess
		}
	}

	identity, err := s.verifyCredential(ctx, req)
	if err != nil {
		return nil, err
	}

	if identity.MaxLevel < int(req.Level) && req.Level != domain.LevelMaster {
		s.recordActivity(ctx, req.Credential.SubjectID, domain.ActivityLevelEscalation, map[string]string{
			"requested_level": req.Level.String(),
		})
		s.deny(ctx, req, "level_not_provisioned")
		return nil, domain.ErrLevelNotProvisioned
	}

	now := s.now()
	id, err := security.GenerateSecureToken(sessionIDBytes)
	if err != nil {
		return nil, fmt.Errorf("allocate session id: %w", err)
	}

	session := domain.Session{
		ID:             id,
		SubjectID:      identity.SubjectID,
		Profile:        profile,
		CreatedAt:      now,
		LastActivityAt: now,
		ExpiresAt:      now.Add(s.sessionTTL),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		// An id collision means the random source is broken. Unrecoverable.
		if errors.Is(err, repository.ErrDuplicateID) {
			return nil, fmt.Errorf("session id collision, refusing to continue: %w", err)
		}
		return nil, fmt.Errorf("create session: %w", err)
	}

	token := ""
	if s.bearer != nil {
		token, err = s.bearer.Issue(session.ID, session.SubjectID, profile.Level.String(), now)
		if err != nil {
			// The session exists but no token can be handed out; undo the
			// grant so failure paths never leave a partial session.
			_ = s.sessions.Revoke(ctx, session.ID, "token_issue_failed", now)
			return nil, fmt.Errorf("issue bearer token: %w", err)
		}
	}

	s.audit(ctx, profile, domain.AuditRecord{
		ID:        uuid.NewString(),
		Kind:      "access.granted",
		SubjectID: session.SubjectID,
		SessionID: session.ID,
		Detail:    map[string]any{"level": profile.Level.String()},
		At:        now,
	})

	if profile.AuditLevel != domain.AuditBasic {
		event := domain.AccessGrantedEvent{
			EventID:   uuid.NewString(),
			SessionID: session.ID,
			SubjectID: session.SubjectID,
			Level:     profile.Level,
			GrantedAt: now,
		}
		if err := s.publisher.PublishAccessGranted(ctx, event); err != nil {
			log.Error("Failed to publish access granted event", zap.Error(err))
		}
	}

	if s.metrics != nil {
		s.metrics.GrantsTotal.WithLabelValues(profile.Level.String(), "granted").Inc()
	}
	log.Info("Access granted",
		zap.String("subject_id", session.SubjectID),
		zap.String("level", profile.Level.String()))

	return &GrantResult{Session: session, Token: token}, nil
}

// verifyCredential runs the external authenticator and second factor under
// the configured timeout. A deadline hit surfaces as ErrAuthTimeout, never
// as invalid credentials.
func (s *AccessService) verifyCredential(ctx context.Context, req GrantRequest) (port.Identity, error) {
	authCtx, cancel := context.WithTimeout(ctx, s.authTimeout)
	defer cancel()

	identity, err := s.authenticator.Authenticate(authCtx, req.Credential)
	if err != nil {
		if isTimeout(authCtx, err) {
			s.deny(ctx, req, "auth_timeout")
			return port.Identity{}, domain.ErrAuthTimeout
		}
		s.recordActivity(ctx, req.Credential.SubjectID, domain.ActivityAuthFailure, nil)
		s.deny(ctx, req, "invalid_credentials")
		return port.Identity{}, domain.ErrInvalidCredentials
	}

	if identity.MFARequired {
		if req.Credential.MFACode == "" {
			s.deny(ctx, req, "mfa_required")
			return port.Identity{}, domain.ErrMFARequired
		}
		ok, err := s.authenticator.VerifySecondFactor(authCtx, identity.SubjectID, req.Credential.MFACode)
		if err != nil {
			if isTimeout(authCtx, err) {
				s.deny(ctx, req, "auth_timeout")
				return port.Identity{}, domain.ErrAuthTimeout
			}
			return port.Identity{}, fmt.Errorf("verify second factor: %w", err)
		}
		if !ok {
			s.recordActivity(ctx, req.Credential.SubjectID, domain.ActivityAuthFailure, map[string]string{"stage": "mfa"})
			s.deny(ctx, req, "invalid_mfa_code")
			return port.Identity{}, domain.ErrInvalidMFACode
		}
	}

	return identity, nil
}

// RevokeAccess terminates a session. Unknown sessions are a success so the
// call stays idempotent.
func (s *AccessService) RevokeAccess(ctx context.Context, sessionID, reason, revokedBy string) error {
	log := logger.WithContext(ctx)
	now := s.now()

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("lookup session: %w", err)
	}

	if err := s.sessions.Revoke(ctx, sessionID, reason, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("revoke session: %w", err)
	}

	subjectID := ""
	if session != nil {
		subjectID = session.SubjectID
	}

	s.auditAlways(ctx, domain.AuditRecord{
		ID:        uuid.NewString(),
		Kind:      "access.revoked",
		SubjectID: subjectID,
		SessionID: sessionID,
		Detail:    map[string]any{"reason": reason, "revoked_by": revokedBy},
		At:        now,
	})

	event := domain.AccessRevokedEvent{
		EventID:   uuid.NewString(),
		SessionID: sessionID,
		SubjectID: subjectID,
		Reason:    reason,
		RevokedBy: revokedBy,
		RevokedAt: now,
	}
	if err := s.publisher.PublishAccessRevoked(ctx, event); err != nil {
		log.Error("Failed to publish access revoked event", zap.Error(err))
	}

	if s.metrics != nil {
		s.metrics.Revocations.Inc()
	}
	log.Info("Access revoked",
		zap.String("session_id", sessionID),
		zap.String("reason", reason))

	return nil
}

// Session returns the live session for an id.
func (s *AccessService) Session(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

// TouchSession advances a live session's activity timestamp and records the
// request in its activity stream.
func (s *AccessService) TouchSession(ctx context.Context, sessionID string) {
	now := s.now()
	_ = s.sessions.Touch(ctx, sessionID, now)
	s.recordActivity(ctx, sessionID, domain.ActivityRequest, nil)
}

// RecordRestrictedAttempt notes that a session tried to use a capability its
// profile restricts. The risk scorer weighs these.
func (s *AccessService) RecordRestrictedAttempt(ctx context.Context, sessionID, capability string) {
	s.recordActivity(ctx, sessionID, domain.ActivityRestrictedAttempt, map[string]string{
		"capability": capability,
	})
}

// deny publishes a denial event. Authorization failures are always
// published, independent of any profile audit level.
func (s *AccessService) deny(ctx context.Context, req GrantRequest, reason string) {
	now := s.now()

	if s.metrics != nil {
		s.metrics.GrantsTotal.WithLabelValues(req.Level.String(), "denied").Inc()
	}

	s.auditAlways(ctx, domain.AuditRecord{
		ID:        uuid.NewString(),
		Kind:      "access.denied",
		SubjectID: req.Credential.SubjectID,
		Detail:    map[string]any{"level": req.Level.String(), "reason": reason},
		At:        now,
	})

	event := domain.AccessDeniedEvent{
		EventID:   uuid.NewString(),
		SubjectID: req.Credential.SubjectID,
		Level:     req.Level,
		Reason:    reason,
		DeniedAt:  now,
	}
	if err := s.publisher.PublishAccessDenied(ctx, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish access denied event", zap.Error(err))
	}
}

func (s *AccessService) recordActivity(ctx context.Context, streamID string, kind domain.ActivityKind, detail map[string]string) {
	if s.activity == nil || streamID == "" {
		return
	}
	event := domain.ActivityEvent{
		SessionID: streamID,
		Kind:      kind,
		At:        s.now(),
		Detail:    detail,
	}
	if err := s.activity.RecordActivity(ctx, event); err != nil {
		logger.WithContext(ctx).Warn("Failed to record activity event", zap.Error(err))
	}
}

// audit writes to the durable trail when the profile's audit level asks for
// it. Basic profiles still get grant records; request-level detail is only
// kept for detailed and full.
func (s *AccessService) audit(ctx context.Context, profile *domain.AccessProfile, record domain.AuditRecord) {
	if s.trail == nil {
		return
	}
	if profile != nil && profile.AuditLevel == domain.AuditBasic && record.Kind != "access.granted" {
		return
	}
	if err := s.trail.Append(ctx, record); err != nil {
		logger.WithContext(ctx).Error("Failed to append audit record",
			zap.String("kind", record.Kind), zap.Error(err))
	}
}

// auditAlways writes to the durable trail regardless of audit level.
// Denials and revocations are never filtered.
func (s *AccessService) auditAlways(ctx context.Context, record domain.AuditRecord) {
	if s.trail == nil {
		return
	}
	if err := s.trail.Append(ctx, record); err != nil {
		logger.WithContext(ctx).Error("Failed to append audit record",
			zap.String("kind", record.Kind), zap.Error(err))
	}
}

func isTimeout(ctx context.Context, err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded)
}
