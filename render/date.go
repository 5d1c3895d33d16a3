package render

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"

	"github.com/ardnew/stuart/lang"
)

// dateLayouts are the accepted textual date forms, tried in order.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	time.DateTime,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	"02 Jan 2006",
	"2 January 2006",
	time.RFC822Z,
	time.RFC822,
	time.RFC850,
	time.ANSIC,
}

// parseDate normalizes a date value. Numbers and digit-only strings are unix
// timestamps in seconds.
func parseDate(v lang.Value) (time.Time, error) {
	if n, ok := v.AsNumber(); ok {
		return time.Unix(int64(n), 0).UTC(), nil
	}

	s, ok := v.AsString()
	if !ok {
		return time.Time{}, ErrDateParse.With(slog.String("kind", v.Kind().String()))
	}

	s = strings.TrimSpace(s)

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(n, 0).UTC(), nil
	}

	return time.Time{}, ErrDateParse.With(slog.String("value", s))
}

// callDateFormat writes a date formatted with a strftime pattern.
func callDateFormat(_ context.Context, rc *Context, call *lang.Call) error {
	args, _, err := rc.Args(call)
	if err != nil {
		return err
	}

	if len(args) != 2 {
		return ErrArgument.With(slog.String("usage", "dateformat($date, format)"))
	}

	t, err := parseDate(args[0])
	if err != nil {
		return err
	}

	layout, ok := args[1].AsString()
	if !ok {
		return ErrArgument.With(slog.String("usage", "dateformat($date, format)"))
	}

	rc.Write(strftime.Format(layout, t))

	return nil
}
