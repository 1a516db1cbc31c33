// Package errors carries a typed error code alongside each error so the
// HTTP layer can map failures to status codes and the worker can tell a
// missing indicator from a query failure.
//
// Codes are grouped by category, one hundred per group: validation (1xx),
// data/resource (2xx), indicator (3xx), market data (4xx), worker (5xx),
// notification (6xx). See error_code.go for the full set.
//
//	err := errors.Newf(errors.ErrCodeDataNotFound, "no subscription %s", id)
//	err := errors.Wrap(cause, errors.ErrCodeQueryFailed, "failed to execute query")
//	if errors.HasCode(err, errors.ErrCodeDataNotFound) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error is an error with a code and an optional wrapped cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New returns an Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf is New with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap annotates cause with a code and message. The cause stays reachable
// through Unwrap.
func Wrap(cause error, code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(cause error, code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target. Re-exported
// so callers need only this package.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target. Re-exported
// so callers need only this package.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode returns the code of the first *Error in err's chain, or
// ErrCodeUnknown when the chain carries none.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ErrCodeUnknown
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}
