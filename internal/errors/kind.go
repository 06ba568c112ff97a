package errors

import (
	"fmt"
	"net/http"
)

// Kind is the closed taxonomy of error categories a game request can fail
// with. Game-rule violations are always precondition_failed and are
// surfaced verbatim to the caller; they are never retried server-side.
type Kind string

const (
	KindInvalidRequest       Kind = "invalid_request"
	KindUnauthenticated      Kind = "unauthenticated"
	KindForbidden            Kind = "forbidden"
	KindNotFound             Kind = "not_found"
	KindPreconditionFailed   Kind = "precondition_failed"
	KindConflict             Kind = "conflict"
	KindRateLimited          Kind = "rate_limited"
	KindUpstreamUnavailable  Kind = "upstream_unavailable"
	KindInternal             Kind = "internal"
)

// GameError is the unified result type every Action-Layer, Attack-Engine,
// and Auth-Core function returns on failure: a single human-readable
// message plus a machine-readable Kind. Stack traces are never attached.
type GameError struct {
	Kind       Kind
	Message    string
	RetryAfter int // seconds; only meaningful for KindRateLimited
	cause      error
}

func (e *GameError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *GameError) Unwrap() error { return e.cause }

// HTTPStatus maps a Kind to the status codes listed in spec.md §6.
func (e *GameError) HTTPStatus() int {
	switch e.Kind {
	case KindInvalidRequest:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindPreconditionFailed:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindUpstreamUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// New creates a GameError of the given kind.
func New(kind Kind, message string) *GameError {
	return &GameError{Kind: kind, Message: message}
}

// Wrap attaches an underlying cause without leaking it to the caller-facing
// Message (the cause is only available via errors.Unwrap for logging).
func Wrap(kind Kind, message string, cause error) *GameError {
	return &GameError{Kind: kind, Message: message, cause: cause}
}

// Precondition builds a precondition_failed GameError — the kind used for
// every in-game rule violation: insufficient cash, license exhausted, in
// prison, tier locked, inactive, etc. (spec.md §7).
func Precondition(format string, args ...interface{}) *GameError {
	return New(KindPreconditionFailed, fmt.Sprintf(format, args...))
}

// NotFound builds a not_found GameError for a missing entity.
func NotFound(resource, id string) *GameError {
	return New(KindNotFound, fmt.Sprintf("%s %s not found", resource, id))
}

// Conflict builds a conflict GameError (duplicate name, double listing, ...).
func Conflict(format string, args ...interface{}) *GameError {
	return New(KindConflict, fmt.Sprintf(format, args...))
}

// RateLimited builds a rate_limited GameError carrying a retry-after hint.
func RateLimited(retryAfterSeconds int) *GameError {
	return &GameError{
		Kind:       KindRateLimited,
		Message:    "too many attempts, please slow down",
		RetryAfter: retryAfterSeconds,
	}
}

// Internal wraps an unexpected error as internal, never surfacing cause text.
func Internal(cause error) *GameError {
	return Wrap(KindInternal, "internal error", cause)
}

// AsGameError unwraps err into a *GameError if possible, otherwise wraps it
// as internal. Handlers use this to normalize any error before responding.
func AsGameError(err error) *GameError {
	if err == nil {
		return nil
	}
	if ge, ok := err.(*GameError); ok {
		return ge
	}
	return Internal(err)
}
