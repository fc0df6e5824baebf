package services

import (
	"errors"
	"fmt"
)

// FieldError is used to indicate an error with a specific input field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

type ValidationError struct {
	Message string
	Fields  []FieldError
}

func newValidationError(msg string, flds ...FieldError) error {
	return &ValidationError{Message: msg, Fields: flds}
}

func (e *ValidationError) Error() string { return e.Message }

// AuthorizationError never carries the role check that failed; Action only
// names the attempted operation for logs.
type AuthorizationError struct {
	Action string
}

func (e *AuthorizationError) Error() string {
	return "permission denied: " + e.Action
}

type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

type InvalidStateError struct {
	Message string
}

func (e *InvalidStateError) Error() string { return e.Message }

type DuplicateError struct {
	Message string
}

func (e *DuplicateError) Error() string { return e.Message }

// ConcurrencyError means a competing write changed the tuition post between
// read and commit.
type ConcurrencyError struct {
	PostID string
}

func (e *ConcurrencyError) Error() string {
	return "tuition " + e.PostID + " was modified concurrently"
}

// UnavailableError wraps an infrastructure failure. Nothing was committed and
// the call is safe to retry.
type UnavailableError struct {
	Err error
}

func (e *UnavailableError) Error() string {
	return "store unavailable: " + e.Err.Error()
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// isDomainError reports whether err already belongs to the service taxonomy.
func isDomainError(err error) bool {
	var (
		ve *ValidationError
		ae *AuthorizationError
		ne *NotFoundError
		ie *InvalidStateError
		de *DuplicateError
		ce *ConcurrencyError
		ue *UnavailableError
		xe *AuthenticationError
	)
	return errors.As(err, &ve) || errors.As(err, &ae) || errors.As(err, &ne) ||
		errors.As(err, &ie) || errors.As(err, &de) || errors.As(err, &ce) || errors.As(err, &ue) ||
		errors.As(err, &xe)
}

func storeError(err error) error {
	if err == nil || isDomainError(err) {
		return err
	}
	return &UnavailableError{Err: err}
}

// AuthenticationError means the caller could not be identified.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string { return e.Message }
