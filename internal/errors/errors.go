// Package errors provides the domain error taxonomy shared by every
// component boundary in StoryStream: NotFound, Unsupported, Corrupted,
// AlreadyExists, Transient, Permanent, Conflict, and Cancelled.
//
// Usage:
//
//	// In a component - return a typed error.
//	if exists {
//	    return errors.AlreadyExists("book already imported")
//	}
//
//	// At a boundary - check with errors.Is / errors.As.
//	var domainErr *errors.Error
//	if errors.As(err, &domainErr) {
//	    switch domainErr.Code {
//	    case errors.CodeTransient:
//	        // retry
//	    case errors.CodePermanent:
//	        // give up
//	    }
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application. These map 1:1 onto the
// error kinds enumerated in spec.md §7.
const (
	CodeNotFound      Code = "NOT_FOUND"
	CodeUnsupported   Code = "UNSUPPORTED"
	CodeCorrupted     Code = "CORRUPTED"
	CodeAlreadyExists Code = "ALREADY_EXISTS"
	CodeTransient     Code = "TRANSIENT"
	CodePermanent     Code = "PERMANENT"
	CodeConflict      Code = "CONFLICT"
	CodeCancelled     Code = "CANCELLED"
	CodeValidation    Code = "VALIDATION"
	CodeInternal      Code = "INTERNAL"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAlreadyExists, CodeConflict:
		return http.StatusConflict
	case CodeUnsupported, CodeValidation:
		return http.StatusBadRequest
	case CodeCorrupted:
		return http.StatusUnprocessableEntity
	case CodeCancelled:
		return 499 // client closed request
	case CodeTransient:
		return http.StatusServiceUnavailable
	case CodePermanent:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether an error of this code should be retried by a
// caller such as the download manager's attempt loop.
func (c Code) Retryable() bool {
	return c == CodeTransient
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error. Matches if target is an
// *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// Retryable reports whether this error should be retried.
func (e *Error) Retryable() bool {
	return e.Code.Retryable()
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: details, cause: e.cause}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: e.Details, cause: err}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound      = &Error{Code: CodeNotFound, Message: "not found"}
	ErrUnsupported   = &Error{Code: CodeUnsupported, Message: "unsupported"}
	ErrCorrupted     = &Error{Code: CodeCorrupted, Message: "corrupted"}
	ErrAlreadyExists = &Error{Code: CodeAlreadyExists, Message: "already exists"}
	ErrTransient     = &Error{Code: CodeTransient, Message: "transient failure"}
	ErrPermanent     = &Error{Code: CodePermanent, Message: "permanent failure"}
	ErrConflict      = &Error{Code: CodeConflict, Message: "conflict"}
	ErrCancelled     = &Error{Code: CodeCancelled, Message: "cancelled"}
	ErrValidation    = &Error{Code: CodeValidation, Message: "validation error"}
	ErrInternal      = &Error{Code: CodeInternal, Message: "internal error"}
)

// Constructor functions for creating errors with custom messages.

func NotFound(msg string) *Error { return &Error{Code: CodeNotFound, Message: msg} }
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func Unsupported(msg string) *Error { return &Error{Code: CodeUnsupported, Message: msg} }
func Unsupportedf(format string, args ...any) *Error {
	return &Error{Code: CodeUnsupported, Message: fmt.Sprintf(format, args...)}
}

func Corrupted(msg string) *Error { return &Error{Code: CodeCorrupted, Message: msg} }
func Corruptedf(format string, args ...any) *Error {
	return &Error{Code: CodeCorrupted, Message: fmt.Sprintf(format, args...)}
}

func AlreadyExists(msg string) *Error { return &Error{Code: CodeAlreadyExists, Message: msg} }
func AlreadyExistsf(format string, args ...any) *Error {
	return &Error{Code: CodeAlreadyExists, Message: fmt.Sprintf(format, args...)}
}

func Transient(msg string) *Error { return &Error{Code: CodeTransient, Message: msg} }
func Transientf(format string, args ...any) *Error {
	return &Error{Code: CodeTransient, Message: fmt.Sprintf(format, args...)}
}

func Permanent(msg string) *Error { return &Error{Code: CodePermanent, Message: msg} }
func Permanentf(format string, args ...any) *Error {
	return &Error{Code: CodePermanent, Message: fmt.Sprintf(format, args...)}
}

func Conflict(msg string) *Error { return &Error{Code: CodeConflict, Message: msg} }
func Conflictf(format string, args ...any) *Error {
	return &Error{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

func Cancelled(msg string) *Error { return &Error{Code: CodeCancelled, Message: msg} }

func Validation(msg string) *Error { return &Error{Code: CodeValidation, Message: msg} }
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

func Internal(msg string) *Error { return &Error{Code: CodeInternal, Message: msg} }
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
