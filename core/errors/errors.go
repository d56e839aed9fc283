// Package errors provides coded, key-attributed errors for the configuration pipeline.
//
// Overview:
//   - Responsibility: Classify configuration failures and carry the offending key
//   - Key Types: Code type for error classification, E struct for structured errors
//   - Concurrency Model: All functions are safe for concurrent use
//   - Error Semantics: Compatible with standard library wrapping (errors.Is/As)
//   - Performance Notes: One allocation per error, no formatting until Error() is called
//
// Usage:
//
//	err := errors.Build(errors.CodeMissingValue).WithOp("argx.Resolve").WithKey("tag").Err()
//	if errors.IsCode(err, errors.CodeMissingValue) { ... }
//	key := errors.KeyOf(err)
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents an error classification code.
type Code string

// Argument resolution codes.
const (
	// CodeKeyNotFound reports a key the store enumerated but cannot retrieve.
	CodeKeyNotFound Code = "KEY_NOT_FOUND"
	// CodeMissingTypeInfo reports a recognized key without a declared type.
	CodeMissingTypeInfo Code = "MISSING_TYPE_INFO"
	// CodeUnsupportedShape reports a shape hint outside {String, Array}.
	CodeUnsupportedShape Code = "UNSUPPORTED_SHAPE"
	// CodeMissingValue reports a typed key with no raw value behind it.
	CodeMissingValue Code = "MISSING_VALUE"
)

// Pipeline codes.
const (
	CodeNotFound        Code = "NOT_FOUND"
	CodeTypeMismatch    Code = "TYPE_MISMATCH"
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeInternal        Code = "INTERNAL"
	CodeUnavailable     Code = "UNAVAILABLE"
)

// E represents a structured error with code, operation, key, message, and details.
type E struct {
	Code    Code   // Error classification code
	Op      string // Operation that failed
	Key     string // Configuration key involved (may be empty)
	Err     error  // Underlying error (may be nil)
	Msg     string // Human-readable message
	Details []any  // Additional structured details
}

// Error implements the error interface.
func (e *E) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	if e.Key != "" {
		fmt.Fprintf(&b, ": key %q", e.Key)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error for error unwrapping.
func (e *E) Unwrap() error {
	return e.Err
}

// New creates a new structured error with the given code and message.
func New(code Code, msg string) error {
	return &E{
		Code: code,
		Msg:  msg,
	}
}

// Wrap creates a new structured error wrapping an existing error.
// The operation name helps identify where the error occurred.
func Wrap(code Code, op string, err error) error {
	return &E{
		Code: code,
		Op:   op,
		Err:  err,
	}
}

// Wrapf creates a new structured error wrapping an existing error with formatted message.
func Wrapf(code Code, op string, err error, format string, args ...any) error {
	return &E{
		Code: code,
		Op:   op,
		Err:  err,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// CodeOf extracts the error code from an error.
// Returns empty string if the error doesn't have a code.
func CodeOf(err error) Code {
	var e *E
	if err != nil && errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// KeyOf returns the first configuration key found along the error chain.
func KeyOf(err error) string {
	for err != nil {
		var e *E
		if !errors.As(err, &e) {
			return ""
		}
		if e.Key != "" {
			return e.Key
		}
		err = e.Err
	}
	return ""
}

// IsCode checks if an error has a specific code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// As is a thin alias for the standard library's errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Is is a thin alias for the standard library's errors.Is.
func Is(err error, target error) bool {
	return errors.Is(err, target)
}

// Builder provides a fluent interface for constructing errors.
type Builder struct {
	code    Code
	op      string
	key     string
	err     error
	msg     string
	details []any
}

// Build constructs a new error with the builder's configuration.
func Build(code Code) *Builder {
	return &Builder{code: code}
}

// WithOp sets the operation that failed.
func (b *Builder) WithOp(op string) *Builder {
	b.op = op
	return b
}

// WithKey sets the configuration key the error refers to.
func (b *Builder) WithKey(key string) *Builder {
	b.key = key
	return b
}

// WithErr wraps an underlying error.
func (b *Builder) WithErr(err error) *Builder {
	b.err = err
	return b
}

// WithMsg sets a human-readable message.
func (b *Builder) WithMsg(msg string) *Builder {
	b.msg = msg
	return b
}

// WithMsgf sets a formatted human-readable message.
func (b *Builder) WithMsgf(format string, args ...any) *Builder {
	b.msg = fmt.Sprintf(format, args...)
	return b
}

// WithDetails adds structured details to the error.
func (b *Builder) WithDetails(details ...any) *Builder {
	b.details = append(b.details, details...)
	return b
}

// Err builds and returns the error.
func (b *Builder) Err() error {
	return &E{
		Code:    b.code,
		Op:      b.op,
		Key:     b.key,
		Err:     b.err,
		Msg:     b.msg,
		Details: b.details,
	}
}
