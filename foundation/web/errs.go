package web

import "errors"

// TrustedError wraps an error with an HTTP status code, for errors a
// handler expects to see from time to time (bad input, not found,
// business-rule violations) as opposed to true internal failures.
type TrustedError struct {
	Err    error
	Status int
}

// NewTrustedError wraps err with an HTTP status code. Handlers use
// this for expected, user-facing failures.
func NewTrustedError(err error, status int) error {
	return &TrustedError{Err: err, Status: status}
}

// Error implements the error interface using the wrapped error's
// message.
func (te *TrustedError) Error() string {
	return te.Err.Error()
}

// IsTrustedError reports whether err is (or wraps) a TrustedError.
func IsTrustedError(err error) bool {
	var te *TrustedError
	return errors.As(err, &te)
}

// GetTrustedError extracts the TrustedError wrapped by err, if any.
func GetTrustedError(err error) *TrustedError {
	var te *TrustedError
	if !errors.As(err, &te) {
		return nil
	}
	return te
}
