package model

import (
	"errors"
	"fmt"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Kind classifies a domain error so callers can branch on outcome
// instead of matching message strings.
type Kind string

const (
	// KindNotFound means a patient, test, cart or order referenced by id
	// does not exist. Never retried.
	KindNotFound Kind = "NOT_FOUND"

	// KindUnavailable means a remote dependency could not be reached or
	// timed out. The result is indeterminate and the caller may retry.
	KindUnavailable Kind = "SERVICE_UNAVAILABLE"

	// KindInvalid means a domain guard was violated, e.g. placing an order
	// from an empty cart. Requires caller-side correction.
	KindInvalid Kind = "INVALID_OPERATION"

	// KindDatabase wraps a local persistence failure.
	KindDatabase Kind = "DATABASE_ERROR"
)

// DomainError is the single error type propagated out of the service layer.
type DomainError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NotFound creates a NOT_FOUND domain error naming the missing resource.
func NotFound(format string, args ...any) *DomainError {
	return &DomainError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Unavailable creates a SERVICE_UNAVAILABLE domain error wrapping the
// underlying transport failure.
func Unavailable(err error, format string, args ...any) *DomainError {
	return &DomainError{Kind: KindUnavailable, Message: fmt.Sprintf(format, args...), Err: err}
}

// Invalid creates an INVALID_OPERATION domain error.
func Invalid(format string, args ...any) *DomainError {
	return &DomainError{Kind: KindInvalid, Message: fmt.Sprintf(format, args...)}
}

// Database wraps a persistence failure as a DATABASE_ERROR.
func Database(err error, format string, args ...any) *DomainError {
	return &DomainError{Kind: KindDatabase, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the Kind from an error chain. Unclassified errors are
// reported as KindDatabase so they surface as internal failures.
func KindOf(err error) Kind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindDatabase
}

// IsNotFound reports whether err is a NOT_FOUND domain error.
func IsNotFound(err error) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Kind == KindNotFound
}

// IsUnavailable reports whether err is a SERVICE_UNAVAILABLE domain error.
func IsUnavailable(err error) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Kind == KindUnavailable
}
