package domain

import "errors"

// Common domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Access errors
var (
	// ErrSchoolMismatch is returned when a caller's stored profile does
	// not belong to the school named in the request.
	ErrSchoolMismatch  = errors.New("profile does not belong to this school")
	ErrProfileNotFound = errors.New("profile not found")
)
