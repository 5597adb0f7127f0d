package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/hectoraparici0/cyberaegis/internal/core/port"
)

// MasterKeyVerifier compares candidate keys against the digest of the
// provisioned master secret. The digest comparison runs in constant time so
// verification latency leaks nothing about the secret.
type MasterKeyVerifier struct {
	digest []byte
}

// NewMasterKeyVerifier accepts the hex SHA-256 digest of the master secret.
// An empty or malformed digest fails at startup.
func NewMasterKeyVerifier(hexDigest string) (*MasterKeyVerifier, error) {
	if hexDigest == "" {
		return nil, fmt.Errorf("master key digest is required")
	}

	digest, err := hex.DecodeString(hexDigest)
	if err != nil {
		return nil, fmt.Errorf("decode master key digest: %w", err)
	}
	if len(digest) != sha256.Size {
		return nil, fmt.Errorf("master key digest must be %d bytes", sha256.Size)
	}

	return &MasterKeyVerifier{digest: digest}, nil
}

// Verify reports whether the candidate key matches the provisioned secret.
func (v *MasterKeyVerifier) Verify(candidate string) bool {
	if candidate == "" {
		return false
	}

	sum := sha256.Sum256([]byte(candidate))
	return subtle.ConstantTimeCompare(sum[:], v.digest) == 1
}

var _ port.MasterKeyVerifier = (*MasterKeyVerifier)(nil)

// DenyAllMasterKeys rejects every candidate. Used when no master digest is
// provisioned so the master path stays closed rather than open.
type DenyAllMasterKeys struct{}

func (DenyAllMasterKeys) Verify(string) bool { return false }

var _ port.MasterKeyVerifier = DenyAllMasterKeys{}
