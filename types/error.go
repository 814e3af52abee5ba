package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unified error code across the framework.
type ErrorCode string

// Orchestration error codes.
const (
	// ErrValidation covers setup-time failures: duplicate or unknown actor
	// names, an unregistered speaker in a resumed transcript. Fatal before
	// any turn runs.
	ErrValidation ErrorCode = "VALIDATION"
	// ErrNavigation covers mid-run handoff targets that resolve to nothing
	// registered. Fatal; the session ends with a partial transcript.
	ErrNavigation ErrorCode = "NAVIGATION"
	// ErrToolExecution covers failed tool calls. Non-fatal; captured as a
	// transcript entry.
	ErrToolExecution ErrorCode = "TOOL_EXECUTION"
	// ErrResolutionAmbiguity covers conflicting fallbacks. Non-fatal; the
	// swarm-level default applies.
	ErrResolutionAmbiguity ErrorCode = "RESOLUTION_AMBIGUITY"
	// ErrEvaluation covers condition evaluator failures.
	ErrEvaluation ErrorCode = "EVALUATION"
	// ErrPersistence covers session store failures.
	ErrPersistence ErrorCode = "PERSISTENCE"
	// ErrInternal covers everything else.
	ErrInternal ErrorCode = "INTERNAL"
)

// Error represents a structured error with code, message, and cause.
type Error struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable"`
	Cause     error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewErrorf creates a new Error with a formatted message.
func NewErrorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// GetErrorCode extracts the error code from an error, unwrapping as needed.
func GetErrorCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return GetErrorCode(err) == code
}
