// Package errs defines the typed error kinds produced by the chain
// packages so that callers (HTTP handlers, websocket handlers, tests)
// can branch on failure category without parsing error strings.
package errs

import (
	"errors"
	"fmt"
)

// Kind identifies the category of a chain error.
type Kind string

// Error kinds produced across the chain packages.
const (
	InvalidDigest       Kind = "InvalidDigest"
	InvalidKey          Kind = "InvalidKey"
	CryptoError         Kind = "CryptoError"
	InvalidTransaction  Kind = "InvalidTransaction"
	DuplicateInput      Kind = "DuplicateInput"
	InvalidBlock        Kind = "InvalidBlock"
	InvalidGenesis      Kind = "InvalidGenesis"
	InvalidDifficulty   Kind = "InvalidDifficulty"
	InvalidChain        Kind = "InvalidChain"
	NotFound            Kind = "NotFound"
	BadRequest          Kind = "BadRequest"
	TransportError      Kind = "TransportError"
)

// Error wraps a Kind with a human-readable reason. It is the only error
// type this module constructs; callers use errors.As to recover the Kind.
type Error struct {
	Kind   Kind
	Reason string
}

// New constructs an Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// Is reports whether target is an *Error with the same Kind, so callers
// can write errors.Is(err, errs.New(errs.NotFound, "")).
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

// As extracts the Kind of err, if err is (or wraps) an *Error.
func As(err error) (Kind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return "", false
	}
	return e.Kind, true
}
