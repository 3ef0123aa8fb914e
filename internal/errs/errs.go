// Package errs classifies the errors produced while compiling requests into
// graph queries.  Every error returned by the compiler packages wraps an *Error
// so that callers (e.g. the HTTP handler) can decide how to report it.
package errs

import (
	"errors"
	"fmt"
)

// Kind is an "enumeration" of the error classes
type Kind int

const (
	Config     Kind = iota // malformed schema, found once at load time
	Validation             // a value failed its declared cast or date format
	Mismatch               // a key or token is not declared in the schema
	Syntax                 // unbalanced brackets etc in the selection text
)

// String returns the name of the kind as used in error extensions and metric labels
func (k Kind) String() string {
	switch k {
	case Config:
		return "SCHEMA_CONFIG"
	case Validation:
		return "VALIDATION"
	case Mismatch:
		return "SCHEMA_MISMATCH"
	case Syntax:
		return "SYNTAX"
	}
	return "UNKNOWN"
}

// Error is a classified error
type Error struct {
	Kind Kind
	Msg  string
	Err  error // underlying cause (if any)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a classified error with a formatted message
func New(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap creates a classified error that retains the underlying cause
func Wrap(kind Kind, err error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Is reports whether err (or anything it wraps) is a classified error of the given kind
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf returns the kind of a classified error, ok is false for other errors
func KindOf(err error) (kind Kind, ok bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return
}
