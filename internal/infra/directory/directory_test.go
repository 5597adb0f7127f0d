package directory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"

	"github.com/hectoraparici0/cyberaegis/internal/core/domain"
	"github.com/hectoraparici0/cyberaegis/internal/core/port"
	"github.com/hectoraparici0/cyberaegis/internal/infra/security"
)

const strongPassword = "Tr0ub4dour&3xtra!"

func TestProvisionAndAuthenticate(t *testing.T) {
	dir := New(security.DefaultPasswordValidator())

	if err := dir.Provision("alice", strongPassword, domain.LevelEnterprise, ""); err != nil {
		t.Fatalf("provision: %v", err)
	}

	identity, err := dir.Authenticate(context.Background(), port.Credential{
		SubjectID: "alice",
		Secret:    strongPassword,
	})
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if identity.SubjectID != "alice" {
		t.Fatalf("subject id = %q, want alice", identity.SubjectID)
	}
	if identity.MFARequired {
		t.Fatal("MFA should not be required without a TOTP secret")
	}
	if identity.MaxLevel != int(domain.LevelEnterprise) {
		t.Fatalf("max level = %d, want %d", identity.MaxLevel, domain.LevelEnterprise)
	}
}

func TestAuthenticateFailuresAreIndistinguishable(t *testing.T) {
	dir := New(nil)
	if err := dir.Provision("alice", strongPassword, domain.LevelBasic, ""); err != nil {
		t.Fatalf("provision: %v", err)
	}

	_, wrongSecret := dir.Authenticate(context.Background(), port.Credential{
		SubjectID: "alice",
		Secret:    "not-the-password",
	})
	_, unknownSubject := dir.Authenticate(context.Background(), port.Credential{
		SubjectID: "nobody",
		Secret:    strongPassword,
	})

	if !errors.Is(wrongSecret, ErrAuthenticationFailed) {
		t.Fatalf("wrong secret error = %v, want ErrAuthenticationFailed", wrongSecret)
	}
	if !errors.Is(unknownSubject, ErrAuthenticationFailed) {
		t.Fatalf("unknown subject error = %v, want ErrAuthenticationFailed", unknownSubject)
	}
}

func TestProvisionRejectsWeakPasswords(t *testing.T) {
	dir := New(security.DefaultPasswordValidator())

	for _, password := range []string{"", "short", "alllowercaseletters", "password123456"} {
		if err := dir.Provision("bob", password, domain.LevelBasic, ""); err == nil {
			t.Fatalf("password %q should have been rejected", password)
		}
	}
}

func TestProvisionRejectsDuplicates(t *testing.T) {
	dir := New(nil)
	if err := dir.Provision("alice", strongPassword, domain.LevelBasic, ""); err != nil {
		t.Fatalf("provision: %v", err)
	}
	if err := dir.Provision("alice", strongPassword, domain.LevelBasic, ""); !errors.Is(err, ErrSubjectExists) {
		t.Fatalf("duplicate provision error = %v, want ErrSubjectExists", err)
	}
}

func TestVerifySecondFactor(t *testing.T) {
	key, err := totp.Generate(totp.GenerateOpts{Issuer: "aegis-test", AccountName: "alice"})
	if err != nil {
		t.Fatalf("generate totp key: %v", err)
	}

	dir := New(nil)
	if err := dir.Provision("alice", strongPassword, domain.LevelGovernment, key.Secret()); err != nil {
		t.Fatalf("provision: %v", err)
	}

	identity, err := dir.Authenticate(context.Background(), port.Credential{
		SubjectID: "alice",
		Secret:    strongPassword,
	})
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if !identity.MFARequired {
		t.Fatal("MFA should be required when a TOTP secret is set")
	}

	code, err := totp.GenerateCode(key.Secret(), time.Now())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	ok, err := dir.VerifySecondFactor(context.Background(), "alice", code)
	if err != nil {
		t.Fatalf("verify second factor: %v", err)
	}
	if !ok {
		t.Fatal("a freshly generated code should validate")
	}

	ok, err = dir.VerifySecondFactor(context.Background(), "alice", "000000")
	if err != nil {
		t.Fatalf("verify second factor: %v", err)
	}
	if ok {
		t.Fatal("a bogus code should not validate")
	}

	if _, err := dir.VerifySecondFactor(context.Background(), "nobody", code); !errors.Is(err, ErrSubjectNotFound) {
		t.Fatalf("unknown subject error = %v, want ErrSubjectNotFound", err)
	}
}
