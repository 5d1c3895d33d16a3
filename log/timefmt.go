package log

import (
	"strings"
	"time"

	"github.com/ncruces/go-strftime"
)

// FormatTime renders a record timestamp. An empty result omits it.
type FormatTime func(time.Time) string

// DefaultTimeLayout is the layout of a default Logger.
const DefaultTimeLayout = time.RFC3339

// layoutAliases maps the names accepted by [WithTimeLayout] to Go layouts.
// Keys are lowercase with punctuation removed.
var layoutAliases = map[string]string{
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"rfc822":      time.RFC822,
	"rfc1123":     time.RFC1123,
	"ansic":       time.ANSIC,
	"unixdate":    time.UnixDate,
	"kitchen":     time.Kitchen,
	"datetime":    time.DateTime,
	"dateonly":    time.DateOnly,
	"timeonly":    time.TimeOnly,
	"stamp":       time.Stamp,
	"stampmilli":  time.StampMilli,
	"ms":          time.StampMilli,
	"stampmicro":  time.StampMicro,
	"us":          time.StampMicro,
	"none":        "",
}

func aliasKey(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case 'a' <= r && r <= 'z', '0' <= r && r <= '9':
			return r
		default:
			return -1
		}
	}, strings.ToLower(s))
}

// timeFormatter returns the FormatTime for layout, which is one of:
//   - a name from layoutAliases, such as "RFC3339" or "kitchen"
//   - a strftime pattern containing '%', the same syntax dateformat uses
//     in templates
//   - a Go reference layout, used verbatim
//
// An empty or blank layout, or "none", disables timestamps.
func timeFormatter(layout string) FormatTime {
	if std, ok := layoutAliases[aliasKey(layout)]; ok {
		layout = std
	}

	switch {
	case strings.TrimSpace(layout) == "":
		return func(time.Time) string { return "" }

	case strings.ContainsRune(layout, '%'):
		return func(t time.Time) string { return strftime.Format(layout, t) }

	default:
		return func(t time.Time) string { return t.Format(layout) }
	}
}
