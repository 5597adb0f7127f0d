package port

import "context"

// Credential carries the subject identity reference and secret material
// presented on a grant request.
type Credential struct {
	SubjectID string
	Secret    string
	MFACode   string
	MasterKey string
}

// Identity is the authenticated view of a subject returned by the external
// authenticator.
type Identity struct {
	SubjectID   string
	MFARequired bool
	MaxLevel    int
}

// Authenticator verifies credentials against an external identity source.
// Implementations must not distinguish unknown subjects from wrong secrets
// in their error responses.
type Authenticator interface {
	Authenticate(ctx context.Context, cred Credential) (Identity, error)
	VerifySecondFactor(ctx context.Context, subjectID, code string) (bool, error)
}

// MasterKeyVerifier checks a candidate master key against the provisioned
// master secret. The comparison is expected to be constant time.
type MasterKeyVerifier interface {
	Verify(candidate string) bool
}
