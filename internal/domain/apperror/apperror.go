package apperror

import (
	"errors"
	"fmt"
)

// Kind is the closed set of failure categories that may cross the HTTP boundary.
type Kind string

const (
	KindValidation            Kind = "ValidationError"
	KindDuplicateEmail        Kind = "DuplicateEmail"
	KindInvalidCredentials    Kind = "InvalidCredentials"
	KindUnauthenticated       Kind = "Unauthenticated"
	KindForbidden             Kind = "Forbidden"
	KindNotFound              Kind = "NotFound"
	KindInvalidOrExpiredToken Kind = "InvalidOrExpiredToken"
	KindWeakPassword          Kind = "WeakPassword"
	KindInternal              Kind = "InternalError"
)

// Error carries a Kind, a caller-safe message and optionally the underlying cause.
// Only Kind, Message and Details are ever rendered to clients.
type Error struct {
	Kind    Kind
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind, so errors.Is(err, ErrNotFound)
// works regardless of message or cause.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrValidation            = New(KindValidation, "invalid payload")
	ErrDuplicateEmail        = New(KindDuplicateEmail, "a user with this email already exists")
	ErrInvalidCredentials    = New(KindInvalidCredentials, "invalid credentials")
	ErrUnauthenticated       = New(KindUnauthenticated, "not authenticated")
	ErrForbidden             = New(KindForbidden, "not authorized")
	ErrNotFound              = New(KindNotFound, "not found")
	ErrInvalidOrExpiredToken = New(KindInvalidOrExpiredToken, "invalid or expired password reset token")
	ErrWeakPassword          = New(KindWeakPassword, "password is too short")
	ErrInternal              = New(KindInternal, "internal server error")
)

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches cause to a new Error of the given kind.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// Validation builds a ValidationError with optional field details.
func Validation(message string, details any) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

func NotFound(what string) *Error {
	return New(KindNotFound, what+" not found")
}

// Internal wraps an unexpected failure; the cause is for server logs only.
func Internal(cause error) *Error {
	return Wrap(KindInternal, "internal server error", cause)
}

// KindOf reports the Kind of err, treating anything unrecognised as internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// From returns err as an *Error, converting unknown errors into InternalError.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}
