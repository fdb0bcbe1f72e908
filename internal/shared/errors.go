package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicateEmail is returned when the email unique constraint rejects a write.
	ErrDuplicateEmail = errors.New("email already taken")
	// ErrValidation is wrapped by every ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthenticated indicates a missing or invalid bearer token.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden indicates the identity lacks the required role.
	ErrForbidden = errors.New("forbidden")
)
