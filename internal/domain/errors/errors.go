// Package errors defines the application error taxonomy. Every failure the
// core can surface falls into one of three kinds: invalid input rejected
// before the store is touched, an invariant violation that left state
// unchanged, or an unavailable backend whose operation may be retried by the
// caller.
package errors

import (
	"net/http"

	"github.com/pkg/errors"
)

// Kind classifies an application error for callers that branch on the
// taxonomy rather than on individual error values.
type Kind string

const (
	// KindValidation marks malformed input, rejected synchronously.
	KindValidation Kind = "validation"
	// KindInvariant marks a rejected mutation; original state is unchanged.
	KindInvariant Kind = "invariant"
	// KindNotFound marks a reference to an entity that does not exist.
	KindNotFound Kind = "not_found"
	// KindBackend marks a failed gateway call; reads are safe to retry,
	// writes are retried only by an explicit caller decision.
	KindBackend Kind = "backend"
)

// AppError is the interface implemented by all application-specific errors.
type AppError interface {
	error
	Kind() Kind
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is the value type behind the predefined errors below.
type BaseError struct {
	kind      Kind
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error.
func NewBaseError(kind Kind, httpCode int, errorCode, message string) *BaseError {
	return &BaseError{
		kind:      kind,
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
	}
}

// Error implements the error interface.
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message.
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// Kind returns the taxonomy class of the error.
func (e *BaseError) Kind() Kind {
	return e.kind
}

// HTTPCode returns the HTTP status code.
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code.
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message.
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information.
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails returns a copy of the error carrying detailed information.
func (e *BaseError) WithDetails(details string) *BaseError {
	clone := *e
	clone.details = details

	return &clone
}

// Predefined error values.
var (
	// Validation errors.
	ErrValidationFailed = NewBaseError(
		KindValidation,
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"input validation failed",
	)

	ErrInvalidCoordinate = NewBaseError(
		KindValidation,
		http.StatusBadRequest,
		"INVALID_COORDINATE",
		"coordinate is out of range",
	)

	// Missing references.
	ErrUserNotFound = NewBaseError(
		KindNotFound,
		http.StatusNotFound,
		"USER_NOT_FOUND",
		"user not found",
	)

	ErrListingNotFound = NewBaseError(
		KindNotFound,
		http.StatusNotFound,
		"LISTING_NOT_FOUND",
		"listing not found",
	)

	ErrRequestNotFound = NewBaseError(
		KindNotFound,
		http.StatusNotFound,
		"REQUEST_NOT_FOUND",
		"borrow request not found",
	)

	// Invariant violations.
	ErrListingUnavailable = NewBaseError(
		KindInvariant,
		http.StatusConflict,
		"LISTING_UNAVAILABLE",
		"listing is not available for borrowing",
	)

	ErrRequestConflict = NewBaseError(
		KindInvariant,
		http.StatusConflict,
		"REQUEST_CONFLICT",
		"listing already has an active borrow request",
	)

	ErrInvalidTransition = NewBaseError(
		KindInvariant,
		http.StatusConflict,
		"INVALID_TRANSITION",
		"request status does not permit this transition",
	)

	ErrNotParticipant = NewBaseError(
		KindInvariant,
		http.StatusForbidden,
		"NOT_PARTICIPANT",
		"actor is not a party to this request",
	)

	// Backend failures.
	ErrBackendUnavailable = NewBaseError(
		KindBackend,
		http.StatusServiceUnavailable,
		"BACKEND_UNAVAILABLE",
		"backend is unavailable",
	)
)

// backendExecuteError wraps a transport or storage failure while keeping the
// AppError contract, so delivery code maps it uniformly.
type backendExecuteError struct {
	err     error
	details string
}

// NewBackendError wraps a gateway failure as a retryable backend error.
func NewBackendError(err error, details string) AppError {
	return &backendExecuteError{
		err:     err,
		details: details,
	}
}

func (e *backendExecuteError) Error() string {
	return errors.Wrap(e.err, "backend call failed").Error()
}

func (e *backendExecuteError) Kind() Kind {
	return KindBackend
}

func (e *backendExecuteError) HTTPCode() int {
	return http.StatusServiceUnavailable
}

func (e *backendExecuteError) ErrorCode() string {
	return "BACKEND_UNAVAILABLE"
}

func (e *backendExecuteError) Message() string {
	return "backend is unavailable"
}

func (e *backendExecuteError) Details() string {
	return e.details
}

func (e *backendExecuteError) Unwrap() error {
	return e.err
}

// IsKind reports whether err (or anything it wraps) is an AppError of the
// given kind.
func IsKind(err error, kind Kind) bool {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.Kind() == kind
	}

	return false
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return IsKind(err, KindValidation) }

// IsInvariantViolation reports whether err is an invariant violation.
func IsInvariantViolation(err error) bool { return IsKind(err, KindInvariant) }

// IsNotFound reports whether err is a missing-reference error.
func IsNotFound(err error) bool { return IsKind(err, KindNotFound) }

// IsBackendUnavailable reports whether err is a backend failure.
func IsBackendUnavailable(err error) bool { return IsKind(err, KindBackend) }
