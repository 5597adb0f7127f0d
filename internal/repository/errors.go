package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicateID signals an identifier collision on insert. For
	// crypto-random session IDs this indicates broken randomness and is
	// treated as fatal by callers.
	ErrDuplicateID = errors.New("repository: duplicate id")
)
