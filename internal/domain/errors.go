package domain

import (
	"errors"
	"fmt"
)

// Error is the classified failure surfaced to callers of the service layer.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

const (
	ErrCodeValidation      = "VALIDATION"
	ErrCodeUnauthenticated = "UNAUTHENTICATED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeConflict        = "CONFLICT"
	ErrCodeInternal        = "INTERNAL"
)

func NewValidationError(format string, args ...any) error {
	return &Error{Code: ErrCodeValidation, Message: fmt.Sprintf(format, args...)}
}

func NewAuthenticationError(msg string) error {
	return &Error{Code: ErrCodeUnauthenticated, Message: msg}
}

func NewAuthorizationError(msg string) error {
	return &Error{Code: ErrCodeForbidden, Message: msg}
}

func NewNotFoundError(format string, args ...any) error {
	return &Error{Code: ErrCodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewConflictError(format string, args ...any) error {
	return &Error{Code: ErrCodeConflict, Message: fmt.Sprintf(format, args...)}
}

func NewInternalError(msg string, err error) error {
	return &Error{Code: ErrCodeInternal, Message: msg, Err: err}
}

// CodeOf classifies err. Anything that is not a *Error is internal.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ErrCodeInternal
}

// MessageOf returns the caller-safe message for err.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) && de.Code != ErrCodeInternal {
		return de.Message
	}
	return "internal server error"
}

func IsNotFound(err error) bool   { return CodeOf(err) == ErrCodeNotFound }
func IsConflict(err error) bool   { return CodeOf(err) == ErrCodeConflict }
func IsValidation(err error) bool { return CodeOf(err) == ErrCodeValidation }
func IsForbidden(err error) bool  { return CodeOf(err) == ErrCodeForbidden }
