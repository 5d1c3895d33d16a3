package pkg

import (
	"fmt"
	"strings"
)

// Error represents a chain of errors, innermost first.
type Error []error

// ErrReadInput is returned when reading project input fails.
//
// This error should be wrapped with the underlying I/O error
// to preserve the error chain.
var ErrReadInput = MakeErrorf("failed to read input")

// ErrWriteOutput is returned when writing build output fails.
var ErrWriteOutput = MakeErrorf("failed to write output")

// ErrConfig is returned when a configuration file cannot be decoded.
var ErrConfig = MakeErrorf("invalid configuration")

// MakeError constructs an Error from the given errors.
// The errors are stored in the order they are provided:
// the first argument is the innermost error in the chain.
// Nil errors are skipped.
func MakeError(errs ...error) Error {
	var e Error

	for _, err := range errs {
		if err != nil {
			e = append(e, err)
		}
	}

	return e
}

// MakeErrorf constructs an Error from a formatted error message.
func MakeErrorf(format string, args ...any) Error {
	return MakeError(fmt.Errorf(format, args...))
}

// Error returns a concatenated string representation of all errors
// in the error chain, separated by ": ", from innermost to outermost.
func (e Error) Error() string {
	var sb strings.Builder

	for i, err := range e {
		if i > 0 {
			sb.WriteString(": ")
		}

		sb.WriteString(err.Error())
	}

	return sb.String()
}

// Wrap appends one or more errors to the receiver and returns the result.
func (e Error) Wrap(err ...error) Error {
	return append(e[:len(e):len(e)], err...)
}

// Wrapf appends a formatted error to the receiver and returns the result.
func (e Error) Wrapf(format string, args ...any) Error {
	return e.Wrap(fmt.Errorf(format, args...))
}

// Unwrap returns the slice of errors contained in the receiver.
func (e Error) Unwrap() []error {
	return e
}

// Errors is a set of independent failures, such as one error per page.
type Errors []error

// Join returns an [Errors] holding each non-nil error, or nil if there are
// none.
func Join(errs ...error) error {
	var e Errors

	for _, err := range errs {
		if err != nil {
			e = append(e, err)
		}
	}

	if len(e) == 0 {
		return nil
	}

	return e
}

// Error joins each contained error message with "; ".
func (e Errors) Error() string {
	part := make([]string, 0, len(e))

	for _, err := range e {
		part = append(part, err.Error())
	}

	return strings.Join(part, "; ")
}

// Unwrap returns the contained errors for errors.Is and errors.As.
func (e Errors) Unwrap() []error { return e }
