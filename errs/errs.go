// Package errs carries the error taxonomy every client-facing failure maps
// to. Each error has a stable machine-readable Kind and wraps its cause, so
// callers classify with KindOf and still unwrap with errors.Is/As.
package errs

import (
	"errors"
	"fmt"
)

// Kind is a stable machine-readable error classification.
type Kind string

const (
	KindNotFound    Kind = "not_found"
	KindReference   Kind = "reference"
	KindValidation  Kind = "validation"
	KindDecryption  Kind = "decryption"
	KindFetch       Kind = "fetch"
	KindPersistence Kind = "persistence"
	KindConflict    Kind = "conflict"
)

// Error is a classified error with a human-readable message.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the outermost classified error in err's chain,
// or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err's chain contains a classified error of kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
