package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hectoraparici0/cyberaegis/internal/core/domain"
	"github.com/hectoraparici0/cyberaegis/internal/core/port"
	"github.com/hectoraparici0/cyberaegis/internal/repository/memory"
)

type accessFixture struct {
	service  *AccessService
	sessions *memory.SessionStore
	events   *recordingPublisher
}

func newAccessFixture(t *testing.T, auth port.Authenticator) accessFixture {
	t.Helper()

	profiles, err := NewProfileRegistry()
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}

	sessions := memory.NewSessionStore()
	events := &recordingPublisher{}

	service := NewAccessService(AccessServiceDeps{
		Sessions:      sessions,
		Profiles:      profiles,
		Authenticator: auth,
		MasterKeys:    staticMasterKeys{key: "master-secret"},
		Publisher:     events,
		Activity:      memory.NewActivityLog(time.Hour),
		SessionTTL:    24 * time.Hour,
		AuthTimeout:   time.Second,
	})

	return accessFixture{service: service, sessions: sessions, events: events}
}

func TestGrantBasicAccess(t *testing.T) {
	auth := &scriptedAuthenticator{subjects: map[string]scriptedSubject{
		"alice": {secret: "correct-horse", maxLevel: domain.LevelEnterprise},
	}}
	f := newAccessFixture(t, auth)

	result, err := f.service.GrantAccess(context.Background(), GrantRequest{
		Credential: port.Credential{SubjectID: "alice", Secret: "correct-horse"},
		Level:      domain.LevelBasic,
	})
	if err != nil {
		t.Fatalf("grant: %v", err)
	}

	if result.Session.ID == "" {
		t.Fatal("expected session id")
	}
	if !result.Session.Profile.HasRestriction("no_advanced_features") {
		t.Fatalf("basic session must carry no_advanced_features, got %v",
			result.Session.Profile.Restrictions)
	}

	live, err := f.sessions.ListLive(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("list live: %v", err)
	}
	if len(live) != 1 {
		t.Fatalf("expected exactly one session, got %d", len(live))
	}
}

func TestGrantInvalidCredentials(t *testing.T) {
	auth := &scriptedAuthenticator{subjects: map[string]scriptedSubject{
		"alice": {secret: "correct-horse", maxLevel: domain.LevelBasic},
	}}
	f := newAccessFixture(t, auth)

	_, err := f.service.GrantAccess(context.Background(), GrantRequest{
		Credential: port.Credential{SubjectID: "alice", Secret: "wrong"},
		Level:      domain.LevelBasic,
	})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	live, _ := f.sessions.ListLive(context.Background(), time.Now())
	if len(live) != 0 {
		t.Fatalf("no session must survive a failed grant, got %d", len(live))
	}
	if len(f.events.denied) != 1 {
		t.Fatalf("expected one denial event, got %d", len(f.events.denied))
	}
}

func TestGrantMasterWithWrongKey(t *testing.T) {
	auth := &scriptedAuthenticator{subjects: map[string]scriptedSubject{
		"root": {secret: "s3cret", maxLevel: domain.LevelMaster},
	}}
	f := newAccessFixture(t, auth)

	_, err := f.service.GrantAccess(context.Background(), GrantRequest{
		Credential: port.Credential{SubjectID: "root", Secret: "s3cret", MasterKey: "wrong-key"},
		Level:      domain.LevelMaster,
	})
	if !errors.Is(err, domain.ErrUnauthorizedMasterAccess) {
		t.Fatalf("expected ErrUnauthorizedMasterAccess, got %v", err)
	}

	live, _ := f.sessions.ListLive(context.Background(), time.Now())
	if len(live) != 0 {
		t.Fatalf("no session must exist after a rejected master grant, got %d", len(live))
	}
}

func TestGrantMasterWithCorrectKey(t *testing.T) {
	auth := &scriptedAuthenticator{subjects: map[string]scriptedSubject{
		"root": {secret: "s3cret", maxLevel: domain.LevelMaster},
	}}
	f := newAccessFixture(t, auth)

	result, err := f.service.GrantAccess(context.Background(), GrantRequest{
		Credential: port.Credential{SubjectID: "root", Secret: "s3cret", MasterKey: "master-secret"},
		Level:      domain.LevelMaster,
	})
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	if result.Session.Profile.Level != domain.LevelMaster {
		t.Fatalf("expected master level, got %s", result.Session.Profile.Level)
	}
	if len(result.Session.Profile.Restrictions) != 0 {
		t.Fatalf("master session must be unrestricted, got %v", result.Session.Profile.Restrictions)
	}
}

func TestGrantMFAFlows(t *testing.T) {
	auth := &scriptedAuthenticator{subjects: map[string]scriptedSubject{
		"bob": {secret: "pw", mfaRequired: true, mfaCode: "123456", maxLevel: domain.LevelBusiness},
	}}
	f := newAccessFixture(t, auth)
	ctx := context.Background()

	_, err := f.service.GrantAccess(ctx, GrantRequest{
		Credential: port.Credential{SubjectID: "bob", Secret: "pw"},
		Level:      domain.LevelProfessional,
	})
	if !errors.Is(err, domain.ErrMFARequired) {
		t.Fatalf("expected ErrMFARequired without a code, got %v", err)
	}

	_, err = f.service.GrantAccess(ctx, GrantRequest{
		Credential: port.Credential{SubjectID: "bob", Secret: "pw", MFACode: "000000"},
		Level:      domain.LevelProfessional,
	})
	if !errors.Is(err, domain.ErrInvalidMFACode) {
		t.Fatalf("expected ErrInvalidMFACode for wrong code, got %v", err)
	}

	result, err := f.service.GrantAccess(ctx, GrantRequest{
		Credential: port.Credential{SubjectID: "bob", Secret: "pw", MFACode: "123456"},
		Level:      domain.LevelProfessional,
	})
	if err != nil {
		t.Fatalf("grant with valid code: %v", err)
	}
	if result.Session.Profile.Level != domain.LevelProfessional {
		t.Fatalf("expected professional level, got %s", result.Session.Profile.Level)
	}
}

func TestGrantAuthTimeout(t *testing.T) {
	f := newAccessFixture(t, blockingAuthenticator{})
	f.service.authTimeout = 20 * time.Millisecond

	_, err := f.service.GrantAccess(context.Background(), GrantRequest{
		Credential: port.Credential{SubjectID: "alice", Secret: "pw"},
		Level:      domain.LevelBasic,
	})
	if !errors.Is(err, domain.ErrAuthTimeout) {
		t.Fatalf("expected ErrAuthTimeout, got %v", err)
	}

	live, _ := f.sessions.ListLive(context.Background(), time.Now())
	if len(live) != 0 {
		t.Fatalf("no session must exist after a timeout, got %d", len(live))
	}
}

func TestGrantAboveProvisionedLevel(t *testing.T) {
	auth := &scriptedAuthenticator{subjects: map[string]scriptedSubject{
		"alice": {secret: "pw", maxLevel: domain.LevelProfessional},
	}}
	f := newAccessFixture(t, auth)

	_, err := f.service.GrantAccess(context.Background(), GrantRequest{
		Credential: port.Credential{SubjectID: "alice", Secret: "pw"},
		Level:      domain.LevelGovernment,
	})
	if !errors.Is(err, domain.ErrLevelNotProvisioned) {
		t.Fatalf("expected ErrLevelNotProvisioned, got %v", err)
	}
}

func TestRevokeAccessIsIdempotent(t *testing.T) {
	auth := &scriptedAuthenticator{subjects: map[string]scriptedSubject{
		"alice": {secret: "pw", maxLevel: domain.LevelEnterprise},
	}}
	f := newAccessFixture(t, auth)
	ctx := context.Background()

	result, err := f.service.GrantAccess(ctx, GrantRequest{
		Credential: port.Credential{SubjectID: "alice", Secret: "pw"},
		Level:      domain.LevelBasic,
	})
	if err != nil {
		t.Fatalf("grant: %v", err)
	}

	if err := f.service.RevokeAccess(ctx, result.Session.ID, "test", "tester"); err != nil {
		t.Fatalf("first revoke: %v", err)
	}
	if err := f.service.RevokeAccess(ctx, result.Session.ID, "test", "tester"); err != nil {
		t.Fatalf("second revoke must not error: %v", err)
	}
	if err := f.service.RevokeAccess(ctx, "never-existed", "test", "tester"); err != nil {
		t.Fatalf("revoking an unknown session must not error: %v", err)
	}

	if _, err := f.service.Session(ctx, result.Session.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after revoke, got %v", err)
	}
}
