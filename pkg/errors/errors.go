package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target carries the same code, so clones and wraps of a
// predefined error still match it with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound            = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrValidation          = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInvalidTransition   = New("INVALID_TRANSITION", http.StatusConflict, "invalid state transition")
	ErrSessionConflict     = New("SESSION_CONFLICT", http.StatusConflict, "another session is in progress")
	ErrUniquenessViolation = New("UNIQUENESS_VIOLATION", http.StatusConflict, "duplicate value")
	ErrReferenceInUse      = New("REFERENCE_IN_USE", http.StatusConflict, "resource is still referenced")
	ErrPersistenceFailure  = New("PERSISTENCE_FAILURE", http.StatusInsufficientStorage, "failed to persist snapshot")
	ErrCorruptSnapshot     = New("CORRUPT_SNAPSHOT", http.StatusInternalServerError, "stored snapshot is unreadable")
	ErrInvalidCredentials  = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid credentials")
	ErrInactiveAccount     = New("INACTIVE_ACCOUNT", http.StatusForbidden, "account is not active")
	ErrInternal            = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// SessionConflictError reports the week that blocks a session start.
type SessionConflictError struct {
	ClassID    int64
	ActiveWeek int
}

// Error implements the error interface.
func (e *SessionConflictError) Error() string {
	return fmt.Sprintf("class %d already has week %d in progress", e.ClassID, e.ActiveWeek)
}

// Unwrap lets errors.Is match ErrSessionConflict.
func (e *SessionConflictError) Unwrap() error {
	return ErrSessionConflict
}

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var conflict *SessionConflictError
	if errors.As(err, &conflict) {
		return Wrap(conflict, ErrSessionConflict.Code, ErrSessionConflict.Status, conflict.Error())
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
