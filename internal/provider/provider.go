// Package provider implements the outbound client for the generative
// reasoning backend (an Ollama-compatible text-generation endpoint).
// The client makes a single bounded call per assessment; retry and
// fallback policy belong to the caller.
package provider

import (
	"errors"
	"fmt"
)

// Sentinel failure classes. Callers match with errors.Is; the concrete
// *Error also carries the short reason string for activation events.
var (
	ErrUnreachable = errors.New("provider unreachable")
	ErrTimeout     = errors.New("provider timeout")
	ErrHTTP        = errors.New("provider http error")
)

// Error classifies a failed provider call.
type Error struct {
	Reason string // "timeout", "unreachable", "http_<status>"
	Status int    // non-zero only for HTTP-status failures
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("provider %s", e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// FailureReason satisfies assessment.ReasonError.
func (e *Error) FailureReason() string { return e.Reason }

// Is maps the classified reason back onto the sentinel errors.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrTimeout:
		return e.Reason == "timeout"
	case ErrUnreachable:
		return e.Reason == "unreachable"
	case ErrHTTP:
		return e.Status != 0
	default:
		return false
	}
}

func timeoutError(err error) *Error {
	return &Error{Reason: "timeout", Err: err}
}

func unreachableError(err error) *Error {
	return &Error{Reason: "unreachable", Err: err}
}

func httpError(status int) *Error {
	return &Error{Reason: fmt.Sprintf("http_%d", status), Status: status}
}
