package app

import "errors"

var (
	// ErrInvalid marks input rejected by validation.
	ErrInvalid = errors.New("invalid input")
	// ErrDuplicateEmail indicates the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrProtectedRecord indicates an attempt to remove the primary
	// administrator.
	ErrProtectedRecord = errors.New("cannot remove the primary administrator")
)
