package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/hectoraparici0/cyberaegis/internal/core/domain"
	"github.com/hectoraparici0/cyberaegis/internal/core/port"
)

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu      sync.Mutex
	granted []domain.AccessGrantedEvent
	denied  []domain.AccessDeniedEvent
	revoked []domain.AccessRevokedEvent
	raised  []domain.AlertRaisedEvent
}

func (p *recordingPublisher) PublishAccessGranted(_ context.Context, event domain.AccessGrantedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.granted = append(p.granted, event)
	return nil
}

func (p *recordingPublisher) PublishAccessDenied(_ context.Context, event domain.AccessDeniedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.denied = append(p.denied, event)
	return nil
}

func (p *recordingPublisher) PublishAccessRevoked(_ context.Context, event domain.AccessRevokedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.revoked = append(p.revoked, event)
	return nil
}

func (p *recordingPublisher) PublishAlertRaised(_ context.Context, event domain.AlertRaisedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.raised = append(p.raised, event)
	return nil
}

var _ port.EventPublisher = (*recordingPublisher)(nil)

// scriptedAuthenticator answers from a fixed subject table.
type scriptedAuthenticator struct {
	subjects map[string]scriptedSubject
	err      error
}

type scriptedSubject struct {
	secret      string
	mfaRequired bool
	mfaCode     string
	maxLevel    domain.AccessLevel
}

func (a *scriptedAuthenticator) Authenticate(_ context.Context, cred port.Credential) (port.Identity, error) {
	if a.err != nil {
		return port.Identity{}, a.err
	}
	subject, ok := a.subjects[cred.SubjectID]
	if !ok || subject.secret != cred.Secret {
		return port.Identity{}, errors.New("authentication failed")
	}
	return port.Identity{
		SubjectID:   cred.SubjectID,
		MFARequired: subject.mfaRequired,
		MaxLevel:    int(subject.maxLevel),
	}, nil
}

func (a *scriptedAuthenticator) VerifySecondFactor(_ context.Context, subjectID, code string) (bool, error) {
	subject, ok := a.subjects[subjectID]
	if !ok {
		return false, errors.New("unknown subject")
	}
	return subject.mfaCode == code, nil
}

var _ port.Authenticator = (*scriptedAuthenticator)(nil)

// blockingAuthenticator never answers before the context expires.
type blockingAuthenticator struct{}

func (blockingAuthenticator) Authenticate(ctx context.Context, _ port.Credential) (port.Identity, error) {
	<-ctx.Done()
	return port.Identity{}, ctx.Err()
}

func (blockingAuthenticator) VerifySecondFactor(ctx context.Context, _, _ string) (bool, error) {
	<-ctx.Done()
	return false, ctx.Err()
}

// staticMasterKeys accepts exactly one key.
type staticMasterKeys struct {
	key string
}

func (v staticMasterKeys) Verify(candidate string) bool {
	return candidate != "" && candidate == v.key
}

// staticContext answers with a fixed context for every session.
type staticContext struct {
	ctx domain.SessionContext
}

func (s staticContext) ContextFor(context.Context, string) (domain.SessionContext, error) {
	return s.ctx, nil
}
