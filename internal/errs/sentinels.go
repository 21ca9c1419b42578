// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrValidation indicates malformed or missing input (empty title, unknown enum value, negative limit).
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates a failed role or project-membership check.
	ErrForbidden = errors.New("forbidden")

	// ErrPrecondition indicates a state-dependent rule was violated
	// (non-empty column deleted without a migration target, cross-board move).
	ErrPrecondition = errors.New("precondition failed")

	// ErrConflict indicates position-shift contention; safe to retry.
	ErrConflict = errors.New("conflict")
)
