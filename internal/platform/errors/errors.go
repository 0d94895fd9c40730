package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure by the layer that produced it.
type Kind string

const (
	KindConfig    Kind = "config"
	KindTransport Kind = "transport"
	KindDomain    Kind = "domain"
	KindStorage   Kind = "storage"
	KindInference Kind = "inference"
	KindExport    Kind = "export"
	KindBootstrap Kind = "bootstrap"
	KindUnknown   Kind = "unknown"
)

// Error carries the failing operation and its kind alongside the cause.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Kind, e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Kind, e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds an error without an underlying cause.
func New(kind Kind, op, message string) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
	}
}

// Wrap attaches kind and operation context to err. Already-typed errors pass
// through unchanged so the innermost classification wins. Returns nil for a
// nil cause.
func Wrap(kind Kind, op, message string, err error) *Error {
	if err == nil {
		return nil
	}

	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}

	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
		Cause:   err,
	}
}

// KindOf extracts the kind of the first typed error in the chain, or
// KindUnknown when none is present.
func KindOf(err error) Kind {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind
	}
	return KindUnknown
}

// IsKind reports whether the first typed error in the chain has the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
