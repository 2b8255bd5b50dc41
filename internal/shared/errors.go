package shared

import "errors"

var (
	// ErrNotFound indicates the referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a uniqueness violation.
	ErrConflict = errors.New("conflict")
	// ErrInvalidReference indicates a foreign key target is absent.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrInvalidCredentials indicates login failure. All login failure
	// modes collapse into this one error so callers cannot enumerate them.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated indicates a missing, malformed or expired token.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden indicates the actor lacks a required capability.
	ErrForbidden = errors.New("forbidden")
)
