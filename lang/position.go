package lang

import (
	"log/slog"
	"strconv"
)

// Position identifies a location in template source.
// Offset is a byte offset; Line and Column are 1-based, Column counts runes.
type Position struct {
	Offset int
	Line   int
	Column int
}

// String returns "line:column".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Attrs returns the position as structured logging attributes.
func (p Position) Attrs() []slog.Attr {
	return []slog.Attr{
		slog.Int("offset", p.Offset),
		slog.Int("line", p.Line),
		slog.Int("column", p.Column),
	}
}
