package query

import (
	"errors"
	"fmt"
)

// Error is returned by builder operations that reject their input.
//
// Error categories:
//   - INVALID_ARGUMENT: malformed option input, invalid moderation status,
//     a reference that is not a wikilog page, item or info
//   - UNKNOWN_OPTION: reading an option that is neither declared nor set
//   - UNRESOLVED_REFERENCE: category/author text that cannot be
//     canonicalized; setters recover from it by leaving the filter unset
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Op is the builder operation that failed (e.g. "SetModStatus").
	Op string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes builder errors.
type ErrorCode string

const (
	ErrCodeInvalidArgument     ErrorCode = "INVALID_ARGUMENT"
	ErrCodeUnknownOption       ErrorCode = "UNKNOWN_OPTION"
	ErrCodeUnresolvedReference ErrorCode = "UNRESOLVED_REFERENCE"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

func invalidArgument(op, format string, args ...any) *Error {
	return &Error{Code: ErrCodeInvalidArgument, Op: op, Message: fmt.Sprintf(format, args...)}
}

func unresolved(op, format string, args ...any) *Error {
	return &Error{Code: ErrCodeUnresolvedReference, Op: op, Message: fmt.Sprintf(format, args...)}
}

func hasCode(err error, code ErrorCode) bool {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Code == code
	}
	return false
}

// IsInvalidArgument reports whether err is an INVALID_ARGUMENT error.
// Uses errors.As to handle wrapped errors.
func IsInvalidArgument(err error) bool {
	return hasCode(err, ErrCodeInvalidArgument)
}

// IsUnknownOption reports whether err is an UNKNOWN_OPTION error.
func IsUnknownOption(err error) bool {
	return hasCode(err, ErrCodeUnknownOption)
}

// IsUnresolved reports whether err is an UNRESOLVED_REFERENCE error.
func IsUnresolved(err error) bool {
	return hasCode(err, ErrCodeUnresolvedReference)
}
