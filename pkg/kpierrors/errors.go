// Package kpierrors provides coded errors shared by the pipeline and the
// dashboard so transport layers can translate failures without string
// matching.
package kpierrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error for logging and HTTP translation.
type Code string

const (
	CodeNotFound Code = "not_found"
	CodeBadInput Code = "bad_input"
	CodeInternal Code = "internal"
)

// Error is a coded error that optionally wraps a cause.
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

// New creates a coded error without a cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code == code
	}
	return false
}

// ToHTTPStatus maps a code to an HTTP status for error envelopes.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeBadInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
