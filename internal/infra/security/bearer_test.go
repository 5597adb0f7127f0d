package security

import (
	"errors"
	"testing"
	"time"
)

func TestBearerIssuerRoundTrip(t *testing.T) {
	issuer, err := NewBearerIssuer("test-secret", "aegis-core", 15*time.Minute)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}

	token, err := issuer.Issue("sess-1", "alice", "business", time.Now())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.SessionID != "sess-1" || claims.SubjectID != "alice" || claims.Level != "business" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestBearerIssuerRejectsExpiredToken(t *testing.T) {
	issuer, err := NewBearerIssuer("test-secret", "aegis-core", time.Minute)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}

	token, err := issuer.Issue("sess-1", "alice", "basic", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := issuer.Parse(token); !errors.Is(err, ErrExpiredBearerToken) {
		t.Fatalf("expected ErrExpiredBearerToken, got %v", err)
	}
}

func TestBearerIssuerRejectsForeignSignature(t *testing.T) {
	issuer, err := NewBearerIssuer("test-secret", "aegis-core", time.Minute)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	other, err := NewBearerIssuer("different-secret", "aegis-core", time.Minute)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}

	token, err := other.Issue("sess-1", "alice", "basic", time.Now())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := issuer.Parse(token); !errors.Is(err, ErrInvalidBearerToken) {
		t.Fatalf("expected ErrInvalidBearerToken, got %v", err)
	}
}

func TestBearerIssuerRejectsGarbage(t *testing.T) {
	issuer, err := NewBearerIssuer("test-secret", "aegis-core", time.Minute)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}

	for _, token := range []string{"", "   ", "not.a.jwt"} {
		if _, err := issuer.Parse(token); !errors.Is(err, ErrInvalidBearerToken) {
			t.Fatalf("expected ErrInvalidBearerToken for %q, got %v", token, err)
		}
	}
}

func TestNewBearerIssuerRequiresSecret(t *testing.T) {
	if _, err := NewBearerIssuer("", "aegis-core", time.Minute); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
