package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values). Compare with [errors.Is]; values
// derived with [Error.With] or [Error.Wrap] still match their sentinel.
var (
	ErrUnterminatedTag = NewError("unterminated tag")
	ErrUnmatchedBlock  = NewError("unmatched block")
	ErrUnexpectedEnd   = NewError("unexpected end")
	ErrArgumentOrder   = NewError("positional argument after named argument")
	ErrUnknownFunction = NewError("unknown function")
	ErrElseWithoutIf   = NewError("else without conditional")
	ErrSyntax          = NewError("syntax error")
	ErrInvalidPath     = NewError("invalid variable path")
	ErrInvalidValue    = NewError("invalid value")
	ErrReadInput       = NewError("cannot read template")
)

// Error represents an error with optional structured logging attributes and
// an optional source location.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	origin *Error // sentinel this error derives from
	msg    string
	err    error       // Wrapped error (for errors.Unwrap)
	attrs  []slog.Attr // Attributes for structured logging
	source string      // file the error refers to
	pos    Position
	hasPos bool
}

// NewError creates a new sentinel Error with a message.
func NewError(msg string) *Error {
	e := &Error{msg: msg}
	e.origin = e

	return e
}

// WrapError wraps a standard error into an Error.
// If err already is (or wraps) an *Error, that value is returned.
func WrapError(err error) *Error {
	var ee *Error
	if errors.As(err, &ee) {
		return ee
	}

	e := &Error{err: err}
	e.origin = e

	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<source>:<line>:<col>: <msg> (<attrs>): <err>"
	//   2. "<msg> (<attrs>): <err>"
	//   3. "<msg>"
	//   4. "<err>"
	part := make([]string, 0, 3)

	if loc := e.location(); loc != "" {
		part = append(part, loc)
	}

	if head := e.Detailed(); head != "" {
		part = append(part, head)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

func (e *Error) location() string {
	switch {
	case e.source != "" && e.hasPos:
		return e.source + ":" + e.pos.String()
	case e.source != "":
		return e.source
	case e.hasPos:
		return e.pos.String()
	default:
		return ""
	}
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e.origin != nil && e.origin == t.origin
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+5)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	if e.source != "" {
		attrs = append(attrs, slog.String("path", e.source))
	}

	if e.hasPos {
		attrs = append(attrs, e.pos.Attrs()...)
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

func (e *Error) clone() *Error {
	c := *e
	c.attrs = e.attrs[:len(e.attrs):len(e.attrs)]

	return &c
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	c := e.clone()
	c.err = err

	return c
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	c := e.clone()
	c.attrs = append(c.attrs, attrs...)

	return c
}

// WithPosition records where in the source the error occurred.
func (e *Error) WithPosition(pos Position) *Error {
	c := e.clone()
	c.pos = pos
	c.hasPos = true

	return c
}

// WithSource records the file the error refers to. An existing source is
// kept, so the innermost file wins when errors cross template boundaries.
func (e *Error) WithSource(path string) *Error {
	if e.source != "" {
		return e
	}

	c := e.clone()
	c.source = path

	return c
}

// Message returns the error message without location or cause.
func (e *Error) Message() string { return e.msg }

// Source returns the file the error refers to, if known.
func (e *Error) Source() string { return e.source }

// Position returns the source location, if known.
func (e *Error) Position() (Position, bool) { return e.pos, e.hasPos }

// Details renders the attributes as "(key=value ...)", skipping empty
// values, or returns "" when there are none.
func (e *Error) Details() string {
	part := make([]string, 0, len(e.attrs))

	for _, a := range e.attrs {
		v := a.Value.Resolve().String()
		if v == "" {
			continue
		}

		if strings.ContainsAny(v, " \t\n\"=()") {
			v = strconv.Quote(v)
		}

		part = append(part, a.Key+"="+v)
	}

	if len(part) == 0 {
		return ""
	}

	return "(" + strings.Join(part, " ") + ")"
}

// Detailed returns the message followed by [Error.Details].
func (e *Error) Detailed() string {
	d := e.Details()

	switch {
	case d == "":
		return e.msg
	case e.msg == "":
		return d
	default:
		return e.msg + " " + d
	}
}

// Attr returns the value of the first attribute with the given key.
func (e *Error) Attr(key string) (slog.Value, bool) {
	for _, a := range e.attrs {
		if a.Key == key {
			return a.Value, true
		}
	}

	return slog.Value{}, false
}
