package domain

import "errors"

// Sentinel errors surfaced by the access and monitoring services. Transport
// layers map these onto wire responses; callers match with errors.Is.
var (
	ErrInvalidCredentials       = errors.New("invalid credentials")
	ErrMFARequired              = errors.New("second factor required")
	ErrInvalidMFACode           = errors.New("invalid second factor code")
	ErrUnauthorizedMasterAccess = errors.New("unauthorized master access attempt")
	ErrAuthTimeout              = errors.New("authentication timed out")
	ErrInvalidRuleDefinition    = errors.New("invalid alert rule definition")
	ErrAlertNotFound            = errors.New("alert not found")
	ErrSessionNotFound          = errors.New("session not found")
	ErrUnknownAccessLevel       = errors.New("unknown access level")
	ErrLevelNotProvisioned      = errors.New("requested level exceeds provisioned maximum")
)
