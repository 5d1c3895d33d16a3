// Package log is the structured logger shared by the parser, the renderer,
// the site builder and the command line.
//
// A [Logger] wraps a [log/slog] logger together with the configuration it
// was built from, so [Logger.Wrap] can derive a variant with one setting
// changed:
//
//	logger := log.Make(os.Stderr, log.WithLevel(log.LevelDebug))
//	quiet := logger.Wrap(log.WithLevel(log.LevelWarn))
//	logger.Info("page rendered", slog.String("path", "posts/a.html"))
//
// [LevelTrace] ranks below [LevelDebug]; the parser and renderer log every
// step at that level.
//
// Timestamps use [WithTimeLayout]: a [time] layout name such as
// "RFC3339" or "kitchen", a strftime pattern such as "%H:%M:%S" (the syntax
// of the dateformat template function), or a Go reference layout.
//
// Output is [FormatText] or [FormatJSON]. [WithPretty] colors text records
// with lipgloss and indents JSON records.
//
// The package logger behind [Info], [DebugContext] and the other package
// functions starts on stderr and is replaced by [Config]. A zero Logger
// discards everything, so library options can default to it.
package log
