package directory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pquerna/otp/totp"

	"github.com/hectoraparici0/cyberaegis/internal/core/domain"
	"github.com/hectoraparici0/cyberaegis/internal/core/port"
	"github.com/hectoraparici0/cyberaegis/internal/infra/security"
)

var (
	// ErrSubjectNotFound indicates the subject does not exist. Never exposed
	// through Authenticate; grant callers only ever see a generic failure.
	ErrSubjectNotFound = errors.New("directory: subject not found")
	// ErrSubjectExists indicates a provisioning conflict.
	ErrSubjectExists = errors.New("directory: subject already exists")
	// ErrAuthenticationFailed is the single failure the Authenticate path
	// returns for unknown subjects and wrong secrets alike.
	ErrAuthenticationFailed = errors.New("directory: authentication failed")
)

// SubjectRecord is a provisioned identity in the directory.
type SubjectRecord struct {
	ID           string
	PasswordHash string
	MFAEnabled   bool
	TOTPSecret   string
	MaxLevel     domain.AccessLevel
}

// Directory is an in-memory subject store implementing the Authenticator
// port. Production deployments would swap in an external IdP behind the same
// port; the verification semantics here match what the controller expects.
type Directory struct {
	mu        sync.RWMutex
	subjects  map[string]SubjectRecord
	validator *security.PasswordValidator
}

// New builds an empty directory using the supplied provisioning policy.
func New(validator *security.PasswordValidator) *Directory {
	if validator == nil {
		validator = security.DefaultPasswordValidator()
	}
	return &Directory{
		subjects:  make(map[string]SubjectRecord),
		validator: validator,
	}
}

// Provision adds a subject after enforcing the password policy.
func (d *Directory) Provision(subjectID, password string, maxLevel domain.AccessLevel, totpSecret string) error {
	if subjectID == "" {
		return fmt.Errorf("subject id is required")
	}
	if err := d.validator.Validate(password); err != nil {
		return fmt.Errorf("password policy: %w", err)
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.subjects[subjectID]; exists {
		return ErrSubjectExists
	}

	d.subjects[subjectID] = SubjectRecord{
		ID:           subjectID,
		PasswordHash: hash,
		MFAEnabled:   totpSecret != "",
		TOTPSecret:   totpSecret,
		MaxLevel:     maxLevel,
	}
	return nil
}

// Authenticate verifies the credential. Unknown subjects and wrong secrets
// produce the same error so callers cannot enumerate the directory.
func (d *Directory) Authenticate(ctx context.Context, cred port.Credential) (port.Identity, error) {
	if err := ctx.Err(); err != nil {
		return port.Identity{}, err
	}

	d.mu.RLock()
	record, ok := d.subjects[cred.SubjectID]
	d.mu.RUnlock()

	if !ok {
		// Burn a verification against a placeholder hash so timing does not
		// reveal whether the subject exists.
		_, _ = security.VerifyPassword(cred.Secret, placeholderHash())
		return port.Identity{}, ErrAuthenticationFailed
	}

	match, err := security.VerifyPassword(cred.Secret, record.PasswordHash)
	if err != nil {
		return port.Identity{}, fmt.Errorf("verify password: %w", err)
	}
	if !match {
		return port.Identity{}, ErrAuthenticationFailed
	}

	return port.Identity{
		SubjectID:   record.ID,
		MFARequired: record.MFAEnabled,
		MaxLevel:    int(record.MaxLevel),
	}, nil
}

// VerifySecondFactor checks a TOTP code for the subject.
func (d *Directory) VerifySecondFactor(ctx context.Context, subjectID, code string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	d.mu.RLock()
	record, ok := d.subjects[subjectID]
	d.mu.RUnlock()

	if !ok {
		return false, ErrSubjectNotFound
	}
	if !record.MFAEnabled || record.TOTPSecret == "" {
		return false, nil
	}

	return totp.Validate(code, record.TOTPSecret), nil
}

var (
	placeholderOnce sync.Once
	placeholder     string
)

func placeholderHash() string {
	placeholderOnce.Do(func() {
		placeholder, _ = security.HashPassword("aegis-placeholder-credential")
	})
	return placeholder
}

var _ port.Authenticator = (*Directory)(nil)
