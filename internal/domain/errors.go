package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound                = errors.New("not found")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrInvalidInput            = errors.New("invalid input")
	ErrDuplicateEmail          = errors.New("email already exists")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrRegistrationUnavailable = errors.New("registration not available in demo mode")
	ErrDemoReadOnly            = errors.New("profile changes not available in demo mode")
	ErrNetwork                 = errors.New("backend unreachable")
	ErrSessionExpired          = errors.New("session expired")
	ErrMalformedSession        = errors.New("malformed stored session")
)

// BackendError carries a non-success backend response that has no more
// specific sentinel.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend responded with status %d", e.Status)
	}
	return fmt.Sprintf("backend responded with status %d: %s", e.Status, e.Message)
}
