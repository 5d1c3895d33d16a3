package log

import (
	"iter"
	"log/slog"
	"strings"
)

// Level represents the severity of a log message.
type Level slog.Level

// Levels understood by every handler. Trace sits below slog's Debug.
const (
	LevelTrace Level = Level(slog.LevelDebug - 4)
	LevelDebug Level = Level(slog.LevelDebug)
	LevelInfo  Level = Level(slog.LevelInfo)
	LevelWarn  Level = Level(slog.LevelWarn)
	LevelError Level = Level(slog.LevelError)
)

// DefaultLevel is the level of a zero or default Logger.
const DefaultLevel = LevelInfo

// Format selects the encoding of log records.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// DefaultFormat is the format of a zero or default Logger.
const DefaultFormat = FormatText

// named pairs a value with the name used on the command line and in output.
type named[T comparable] struct {
	value T
	name  string
}

// levelNames and formatNames are in ascending order; the iterators and the
// parsers walk them directly.
var (
	levelNames = []named[Level]{
		{LevelTrace, "trace"},
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
	}

	formatNames = []named[Format]{
		{FormatText, "text"},
		{FormatJSON, "json"},
	}
)

func nameOf[T comparable](table []named[T], v T) (string, bool) {
	for _, e := range table {
		if e.value == v {
			return e.name, true
		}
	}

	return "", false
}

func lookup[T comparable](table []named[T], s string) (T, bool) {
	s = strings.ToLower(strings.TrimSpace(s))

	for _, e := range table {
		if e.name == s {
			return e.value, true
		}
	}

	var zero T

	return zero, false
}

func names[T comparable](table []named[T]) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, e := range table {
			if !yield(e.name) {
				return
			}
		}
	}
}

// String returns the lowercase name of the level. Levels between the named
// ones print as slog does, for example "warn+2".
func (l Level) String() string {
	if s, ok := nameOf(levelNames, l); ok {
		return s
	}

	return strings.ToLower(slog.Level(l).String())
}

// label is the uppercase form written into records.
func (l Level) label() string { return strings.ToUpper(l.String()) }

// Levels returns the names of the defined levels, lowest first.
func Levels() iter.Seq[string] { return names(levelNames) }

// ParseLevel parses a level name, case-insensitively. Besides the names in
// [Levels] it accepts slog's offset syntax such as "info+2".
// Unrecognized input yields [DefaultLevel].
func ParseLevel(s string) Level {
	if l, ok := lookup(levelNames, s); ok {
		return l
	}

	var l slog.Level

	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return DefaultLevel
	}

	return Level(l)
}

// String returns the name of the format, or "unknown".
func (f Format) String() string {
	if s, ok := nameOf(formatNames, f); ok {
		return s
	}

	return "unknown"
}

// Formats returns the names of the defined formats.
func Formats() iter.Seq[string] { return names(formatNames) }

// ParseFormat parses a format name, case-insensitively.
// Unrecognized input yields [DefaultFormat].
func ParseFormat(s string) Format {
	if f, ok := lookup(formatNames, s); ok {
		return f
	}

	return DefaultFormat
}
