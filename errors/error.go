// Package errors defines the error taxonomy shared by the observer packages.
//
// Errors carry an ErrorType describing the class of failure and an optional
// ErrorCode narrowing it down. Sentinel values built from a bare type match
// every error of that type through errors.Is.
package errors

import (
	"errors"
	"fmt"
)

// promote standard library errors package functions.
var (
	Is   = errors.Is
	As   = errors.As
	Join = errors.Join
)

type (
	// ErrorType classifies an error.
	ErrorType string
	// ErrorCode narrows an ErrorType down to a specific failure.
	ErrorCode int
)

// Available error types.
const (
	// ErrorTypeInvalid is used when a caller violates an argument contract.
	ErrorTypeInvalid ErrorType = "invalid"
	// ErrorTypeNotFound is used when a lookup target does not exist.
	ErrorTypeNotFound ErrorType = "not-found"
	// ErrorTypeConflict is used when a name is already claimed by something
	// of a different kind.
	ErrorTypeConflict ErrorType = "conflict"
)

// Error object.
type Error struct {
	Type    ErrorType
	Code    ErrorCode
	Details string
}

// New returns an *Error of the given type and code.
func New(typ ErrorType, code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Type:    typ,
		Code:    code,
		Details: fmt.Sprintf(format, args...),
	}
}

func (e *Error) Error() string {
	if e.Details == "" {
		return string(e.Type)
	}

	return fmt.Sprintf("%s: %s", e.Type, e.Details)
}

// Is reports whether target is an *Error of the same type. A target with a
// non-zero Code must match the code as well.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}

	if t.Type != e.Type {
		return false
	}

	return t.Code == 0 || t.Code == e.Code
}

// IsErrorType checks if the error is of the given type.
func IsErrorType(err error, typ ErrorType) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == typ
	}

	return false
}

// IsErrorCode checks if the error is of the given code.
func IsErrorCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}

	return false
}
