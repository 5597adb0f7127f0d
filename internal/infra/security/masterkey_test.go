package security

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func digestFor(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

func TestMasterKeyVerifier(t *testing.T) {
	verifier, err := NewMasterKeyVerifier(digestFor("master-secret"))
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}

	if !verifier.Verify("master-secret") {
		t.Fatal("expected the provisioned key to verify")
	}
	if verifier.Verify("wrong-key") {
		t.Fatal("expected a wrong key to fail")
	}
	if verifier.Verify("") {
		t.Fatal("expected an empty key to fail")
	}
}

func TestNewMasterKeyVerifierRejectsBadDigests(t *testing.T) {
	cases := []string{
		"",
		"not-hex",
		"abcd", // wrong length
	}
	for _, digest := range cases {
		if _, err := NewMasterKeyVerifier(digest); err == nil {
			t.Fatalf("expected error for digest %q", digest)
		}
	}
}

func TestDenyAllMasterKeys(t *testing.T) {
	if (DenyAllMasterKeys{}).Verify("anything") {
		t.Fatal("deny-all verifier must reject every candidate")
	}
}
