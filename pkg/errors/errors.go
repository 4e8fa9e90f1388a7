// Package errors provides structured error types for questgraph.
//
// Errors carry a machine-readable [Code] next to the human-readable message
// so the CLI can map failures to exit behaviour and short user messages
// without string matching.
//
// # Error Codes
//
//   - INVALID_*: input validation failures (flags, config, language tags)
//   - *NOT_FOUND: unknown quests or data packs
//   - DATA_SHAPE: a raw data row is missing or malformed
//   - LAYOUT_FAILED: a layout engine could not position the graph
//   - INTERNAL_ERROR: unexpected failures
//
// Cancellation is never wrapped into an *Error. context.Canceled travels
// unchanged so callers can test it with the standard errors.Is.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeQuestNotFound, "quest %d not in catalog", id)
//	if errors.Is(err, errors.ErrCodeQuestNotFound) {
//	    // ...
//	}
//
//	err = errors.Wrap(errors.ErrCodeLayoutFailed, cause, "graphviz layout")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidLanguage Code = "INVALID_LANGUAGE"
	ErrCodeInvalidEngine   Code = "INVALID_ENGINE"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"

	// Resource not found errors
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodeQuestNotFound Code = "QUEST_NOT_FOUND"
	ErrCodeFileNotFound  Code = "FILE_NOT_FOUND"

	// Data and processing errors
	ErrCodeDataShape    Code = "DATA_SHAPE"
	ErrCodeLayoutFailed Code = "LAYOUT_FAILED"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// ShapeError records a single data-shape problem found while deriving a
// quest's facts. It is logged and skipped, never returned past the catalog.
type ShapeError struct {
	Quest uint32 // Quest row the fact belongs to
	Field string // Derived field, e.g. "reward_item"
	Ref   uint32 // Referenced row id that could not be resolved
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("quest %d: %s references missing row %d", e.Quest, e.Field, e.Ref)
}

// Code returns the error code for this error type.
func (e *ShapeError) Code() Code {
	return ErrCodeDataShape
}
