// Package dErrors provides coded domain errors.
//
// Services return these so transports can map failures to responses without
// string matching. Stores do not use this package directly; they return
// sentinels (pkg/platform/sentinel) which services translate into codes.
package dErrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	// CodeNotFound: a referenced entity does not exist for the given owner.
	CodeNotFound Code = "not_found"
	// CodeConflict: a uniqueness constraint (tag/group name) was violated.
	CodeConflict Code = "conflict"
	// CodeContention: the owner lock could not be acquired or the store
	// reported a write conflict; the whole operation is safe to retry.
	CodeContention Code = "contention"
	// CodeUnavailable: the underlying store failed transiently; nothing was
	// committed.
	CodeUnavailable Code = "unavailable"
	// CodeInvalidInput: malformed input at a trust boundary (bad UUID etc).
	CodeInvalidInput Code = "invalid_input"
	// CodeValidation: a request payload failed validation.
	CodeValidation Code = "validation"
	// CodeInvariantViolation: an aggregate invariant would be broken.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeBadRequest: the request could not be parsed.
	CodeBadRequest Code = "bad_request"
	// CodeTimeout: the operation was cancelled or timed out.
	CodeTimeout Code = "timeout"
	// CodeInternal: unexpected failure; details stay server-side.
	CodeInternal Code = "internal"
)

// Error is a domain error carrying a classification code.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a domain error with the given code and message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a domain error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap annotates err with a code and message, preserving the cause chain.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// GetCode extracts the code from err, or CodeInternal if err carries none.
func GetCode(err error) Code {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}

// GetMessage extracts the domain message from err, without the cause chain.
func GetMessage(err error) string {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return "unexpected error"
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// Is is a readable alias for HasCode in handler-level branching.
func Is(err error, code Code) bool { return HasCode(err, code) }
