// Package apperr defines the typed error taxonomy shared by services and
// handlers. Every lifecycle failure carries a Kind and an HTTP status hint;
// the HTTP layer renders them without inspecting error text.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind string

const (
	// KindValidation is malformed or missing input.
	KindValidation Kind = "validation"
	// KindInvalidCredentials is an email/password mismatch at login. The
	// message must not reveal which of the two was wrong.
	KindInvalidCredentials Kind = "invalid_credentials"
	// KindSessionInvalid is a session that is absent, revoked, or expired.
	KindSessionInvalid Kind = "session_invalid"
	// KindSecretMismatch is a structurally valid refresh token whose secret
	// does not match the session's stored hash. Strongest signal of token
	// compromise or reuse of a rotated-out token. Rendered externally as
	// session_invalid.
	KindSecretMismatch Kind = "secret_mismatch"
	// KindMalformedToken is a refresh credential that cannot be decoded.
	// Rendered externally as session_invalid.
	KindMalformedToken Kind = "malformed_token"
	// KindConflict is a lost race on a unique resource (email, the active
	// session slot).
	KindConflict Kind = "conflict"
	// KindNotFound is a missing resource on a lookup path.
	KindNotFound Kind = "not_found"
	// KindForbidden is an authenticated caller lacking permission.
	KindForbidden Kind = "forbidden"
	// KindInfrastructure is a collaborator timeout or unavailability. Never
	// an authorization decision.
	KindInfrastructure Kind = "infrastructure"
)

// Error is an application error with a kind and HTTP status hint.
type Error struct {
	Kind    Kind
	Message string
	Status  int
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// PublicMessage returns the message safe to render to an external caller.
// SecretMismatch and MalformedToken deliberately render the same message as
// SessionInvalid so the response does not leak which check failed.
func (e *Error) PublicMessage() string {
	switch e.Kind {
	case KindSecretMismatch, KindMalformedToken:
		return "session not found or revoked"
	case KindInfrastructure:
		return "service unavailable"
	}
	return e.Message
}

// New returns an Error with the given kind and message, using the kind's
// default HTTP status.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Status: defaultStatus(kind)}
}

// Wrap returns an Error that wraps cause, preserving it for errors.Is/As.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Status: defaultStatus(kind), cause: cause}
}

// Infra wraps a collaborator failure as an infrastructure error.
func Infra(cause error) *Error {
	return Wrap(KindInfrastructure, "infrastructure failure", cause)
}

func defaultStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindInvalidCredentials, KindSessionInvalid, KindSecretMismatch, KindMalformedToken:
		return http.StatusUnauthorized
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// KindOf returns the Kind of err if it is (or wraps) an *Error, or "" otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is an application error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
