package user

import (
	"fmt"
	"net/http"
)

// DomainError is a structured, self-describing domain error used across the
// user module. It carries RFC7807-friendly metadata so a shared formatter can
// convert any domain error into a Problem response without enumerating error
// types.
type DomainError struct {
	// Code is a stable, machine-readable business code (e.g., "ErrInvalidCredentials").
	Code string

	// HTTPStatus is the HTTP status suggested for this error.
	HTTPStatus int

	// Title is a short human summary; if empty the formatter defaults to
	// StatusText(HTTPStatus).
	Title string

	// Message is a human-readable message. It must never contain internal
	// identifiers, token hashes, or stack traces.
	Message string

	// Detail is a user-friendly explanation for clients. If empty, Message is used.
	Detail string

	// TypeURI is an RFC7807 type URI, e.g. "urn:problem:user/err-invalid-credentials".
	TypeURI string

	// Context is an optional extension payload for clients.
	Context any

	// cause is the underlying error that triggered this one, if any.
	cause error
}

// Error satisfies the standard Go error interface.
func (e *DomainError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Message
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

// Unwrap provides compatibility for errors.Is and errors.As, exposing the
// underlying error chain.
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is enables errors.Is comparisons based on the stable Code rather than
// pointer identity, so copies created via WithCause still match their
// sentinel counterpart.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause returns a copy of the DomainError wrapping the provided cause.
func (e *DomainError) WithCause(err error) *DomainError {
	if err == nil {
		return e
	}
	cp := *e
	cp.cause = err
	return &cp
}

// --- RFC7807 mapping accessors (satisfy httpx.DomainProblem) ---

func (e *DomainError) ProblemCode() string { return e.Code }
func (e *DomainError) ProblemStatus() int {
	if e.HTTPStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.HTTPStatus
}
func (e *DomainError) ProblemTitle() string { return e.Title }
func (e *DomainError) ProblemDetail() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Message
}
func (e *DomainError) ProblemTypeURI() string { return e.TypeURI }
func (e *DomainError) ProblemContext() any    { return e.Context }

// --- Pre-defined Domain Errors ---

var (
	ErrNotFound = &DomainError{
		Code:       "ErrNotFound",
		HTTPStatus: http.StatusNotFound,
		Title:      "Not Found",
		Message:    "user not found",
		TypeURI:    "urn:problem:user/err-not-found",
	}

	// ErrInvalidCredentials is returned for both unknown email and wrong
	// password, with identical wording, so responses cannot be used to
	// enumerate accounts.
	ErrInvalidCredentials = &DomainError{
		Code:       "ErrInvalidCredentials",
		HTTPStatus: http.StatusUnauthorized,
		Title:      "Unauthorized",
		Message:    "invalid credentials",
		TypeURI:    "urn:problem:user/err-invalid-credentials",
	}

	ErrUnauthenticated = &DomainError{
		Code:       "ErrUnauthenticated",
		HTTPStatus: http.StatusUnauthorized,
		Title:      "Unauthorized",
		Message:    "invalid token",
		TypeURI:    "urn:problem:user/err-unauthenticated",
	}

	ErrSuspended = &DomainError{
		Code:       "ErrSuspended",
		HTTPStatus: http.StatusForbidden,
		Title:      "Forbidden",
		Message:    "user is suspended",
		TypeURI:    "urn:problem:user/err-suspended",
	}

	ErrForbidden = &DomainError{
		Code:       "ErrForbidden",
		HTTPStatus: http.StatusForbidden,
		Title:      "Forbidden",
		Message:    "forbidden",
		TypeURI:    "urn:problem:user/err-forbidden",
	}

	ErrEmailNotVerified = &DomainError{
		Code:       "ErrEmailNotVerified",
		HTTPStatus: http.StatusForbidden,
		Title:      "Forbidden",
		Message:    "email not verified",
		TypeURI:    "urn:problem:user/err-email-not-verified",
	}

	// ErrEmailExists surfaces precisely: email existence is already
	// discoverable through the registration flow in this design.
	ErrEmailExists = &DomainError{
		Code:       "ErrEmailExists",
		HTTPStatus: http.StatusBadRequest,
		Title:      "Bad Request",
		Message:    "user already exists",
		TypeURI:    "urn:problem:user/err-email-exists",
	}

	// ErrInvalidOrExpiredToken does not distinguish wrong, expired, or
	// already-used tokens.
	ErrInvalidOrExpiredToken = &DomainError{
		Code:       "ErrInvalidOrExpiredToken",
		HTTPStatus: http.StatusBadRequest,
		Title:      "Bad Request",
		Message:    "invalid or expired token",
		TypeURI:    "urn:problem:user/err-invalid-or-expired-token",
	}

	ErrAlreadyVerified = &DomainError{
		Code:       "ErrAlreadyVerified",
		HTTPStatus: http.StatusBadRequest,
		Title:      "Bad Request",
		Message:    "email already verified",
		TypeURI:    "urn:problem:user/err-already-verified",
	}

	// ErrEmailDeliveryUnavailable reflects operator misconfiguration, not
	// caller fault, hence the 5xx class.
	ErrEmailDeliveryUnavailable = &DomainError{
		Code:       "ErrEmailDeliveryUnavailable",
		HTTPStatus: http.StatusServiceUnavailable,
		Title:      "Service Unavailable",
		Message:    "email configuration is required to register accounts",
		TypeURI:    "urn:problem:user/err-email-delivery-unavailable",
	}

	ErrSelfDelete = &DomainError{
		Code:       "ErrSelfDelete",
		HTTPStatus: http.StatusBadRequest,
		Title:      "Bad Request",
		Message:    "cannot delete your own account",
		TypeURI:    "urn:problem:user/err-self-delete",
	}

	ErrInternal = &DomainError{
		Code:       "ErrInternal",
		HTTPStatus: http.StatusInternalServerError,
		Title:      "Internal Server Error",
		Message:    "internal server error",
		TypeURI:    "urn:problem:user/err-internal",
	}
)
