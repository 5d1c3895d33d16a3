package site

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/ardnew/stuart/lang"
)

// Severity ranks a [Diagnostic].
type Severity int

// Severities.
const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}

	return "warning"
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Location is where a diagnostic points in the content tree.
type Location struct {
	Path   string `json:"path,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

func (l Location) String() string {
	switch {
	case l.Path != "" && l.Line > 0:
		return fmt.Sprintf("%s:%d:%d", l.Path, l.Line, l.Column)
	case l.Line > 0:
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	default:
		return l.Path
	}
}

// Diagnostic is a problem found during a build that did not abort it.
type Diagnostic struct {
	Err      error    `json:"-"`
	Message  string   `json:"message"`
	Page     string   `json:"page,omitempty"`
	Location Location `json:"location"`
	Severity Severity `json:"severity"`
}

func (d Diagnostic) String() string {
	loc := d.Location.String()
	if loc == "" {
		return d.Severity.String() + ": " + d.Message
	}

	return loc + ": " + d.Severity.String() + ": " + d.Message
}

// LogValue implements slog.LogValuer.
func (d Diagnostic) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("severity", d.Severity.String()),
		slog.String("message", d.Message),
	}

	if d.Page != "" {
		attrs = append(attrs, slog.String("page", d.Page))
	}

	if loc := d.Location.String(); loc != "" {
		attrs = append(attrs, slog.String("location", loc))
	}

	return slog.GroupValue(attrs...)
}

// diagnose converts err into a diagnostic for page. Location comes from the
// outermost [lang.Error] that carries one.
func diagnose(sev Severity, page string, err error) Diagnostic {
	d := Diagnostic{Severity: sev, Page: page, Err: err, Message: err.Error()}

	var le *lang.Error
	if errors.As(err, &le) {
		d.Message = message(le)
		d.Location.Path = le.Source()

		if pos, ok := le.Position(); ok {
			d.Location.Line = pos.Line
			d.Location.Column = pos.Column
			d.Location.Offset = pos.Offset
		}
	}

	if d.Location.Path == "" {
		d.Location.Path = page
	}

	return d
}

// message renders e without its location prefix. The error's attributes
// follow the message, so a section mismatch names its sections.
func message(e *lang.Error) string {
	msg := e.Detailed()

	if cause := e.Unwrap(); cause != nil {
		if msg == "" {
			return cause.Error()
		}

		return msg + ": " + cause.Error()
	}

	return msg
}

// sortDiagnostics orders diagnostics by page, then location, and drops
// exact repeats, such as a broken template reported by each of its pages.
func sortDiagnostics(ds []Diagnostic) []Diagnostic {
	slices.SortStableFunc(ds, func(a, b Diagnostic) int {
		return cmp.Or(
			cmp.Compare(a.Location.Path, b.Location.Path),
			cmp.Compare(a.Location.Offset, b.Location.Offset),
			cmp.Compare(a.Message, b.Message),
			cmp.Compare(a.Page, b.Page),
		)
	})

	return slices.CompactFunc(ds, func(a, b Diagnostic) bool {
		return a.Location == b.Location && a.Message == b.Message && a.Severity == b.Severity
	})
}
