package log

import (
	"io"
	"log/slog"
	"time"
)

// Defaults for the boolean settings of a Logger.
const (
	DefaultCaller = false
	DefaultPretty = true
)

// config is the immutable state behind a Logger. Options return modified
// copies, so a Logger can be rebuilt from its own config.
type config struct {
	output     io.Writer
	formatTime FormatTime
	level      Level
	format     Format
	caller     bool
	pretty     bool
}

// Option modifies a Logger configuration.
type Option func(config) config

func (c config) with(opts ...Option) config {
	for _, opt := range opts {
		if opt != nil {
			c = opt(c)
		}
	}

	return c
}

func defaultConfig(w io.Writer) config {
	return config{}.with(WithDefaults(w))
}

// replaceAttr rewrites the built-in record attributes: the timestamp goes
// through formatTime, and levels print by name so trace is not "DEBUG-4".
func (c config) replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}

	switch v := a.Value.Any().(type) {
	case time.Time:
		if a.Key != slog.TimeKey {
			break
		}

		ts := c.formatTime(v)
		if ts == "" {
			return slog.Attr{}
		}

		a.Value = slog.StringValue(ts)

	case slog.Level:
		if a.Key == slog.LevelKey {
			a.Value = slog.StringValue(Level(v).label())
		}
	}

	return a
}

func (c config) handler() slog.Handler {
	opts := &slog.HandlerOptions{
		AddSource:   c.caller,
		Level:       slog.Level(c.level),
		ReplaceAttr: c.replaceAttr,
	}

	type key struct {
		format Format
		pretty bool
	}

	switch (key{c.format, c.pretty}) {
	case key{FormatText, true}:
		return newPrettyTextHandler(c.output, opts, c.formatTime)
	case key{FormatJSON, true}:
		return newPrettyJSONHandler(c.output, opts)
	case key{FormatText, false}:
		return slog.NewTextHandler(c.output, opts)
	case key{FormatJSON, false}:
		return slog.NewJSONHandler(c.output, opts)
	default:
		return slog.DiscardHandler
	}
}

func orDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}

	return w
}

// WithDefaults resets every setting to its default and writes to w.
// A nil w discards output.
func WithDefaults(w io.Writer) Option {
	return func(config) config {
		return config{
			output:     orDiscard(w),
			formatTime: timeFormatter(DefaultTimeLayout),
			level:      DefaultLevel,
			format:     DefaultFormat,
			caller:     DefaultCaller,
			pretty:     DefaultPretty,
		}
	}
}

// WithOutput sets the destination of log records. A nil w discards output.
func WithOutput(w io.Writer) Option {
	return func(c config) config { c.output = orDiscard(w); return c }
}

// WithLevel discards records below level.
func WithLevel(level Level) Option {
	return func(c config) config { c.level = level; return c }
}

// WithFormat sets the record encoding.
func WithFormat(format Format) Option {
	return func(c config) config { c.format = format; return c }
}

// WithTimeLayout sets how timestamps are written. The layout may name a
// [time] package layout ("RFC3339", "kitchen"), give a strftime pattern
// ("%Y-%m-%d %H:%M:%S"), or be a Go reference layout. An empty layout or
// "none" omits timestamps.
func WithTimeLayout(layout string) Option {
	return func(c config) config { c.formatTime = timeFormatter(layout); return c }
}

// WithCaller adds the source location of each logging call.
func WithCaller(enable bool) Option {
	return func(c config) config { c.caller = enable; return c }
}

// WithPretty styles output for terminals. Styling is dropped when the
// output is not a terminal.
func WithPretty(enable bool) Option {
	return func(c config) config { c.pretty = enable; return c }
}
