package render

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/ardnew/stuart/lang"
)

var markup = regexp.MustCompile(`<[^>]*>`)

// plainText strips HTML tags and collapses whitespace.
func plainText(s string) string {
	return strings.Join(strings.Fields(markup.ReplaceAllString(s, " ")), " ")
}

// excerpt returns the first n characters of the plain text of s, cut back to
// the last word boundary, with ellipsis appended when anything was dropped.
// A first word longer than n is cut mid-word.
func excerpt(s string, n int, ellipsis string) string {
	text := []rune(plainText(s))
	if len(text) <= n {
		return string(text)
	}

	cut := text[:n]
	if !unicode.IsSpace(text[n]) {
		for i := len(cut) - 1; i > 0; i-- {
			if unicode.IsSpace(cut[i]) {
				cut = cut[:i]

				break
			}
		}
	}

	return strings.TrimRightFunc(string(cut), unicode.IsSpace) + ellipsis
}

// timeToRead returns the minutes needed to read the plain text of s at wpm
// words per minute, at least 1.
func timeToRead(s string, wpm int) int {
	return max(1, len(strings.Fields(plainText(s)))/wpm)
}

func callExcerpt(_ context.Context, rc *Context, call *lang.Call) error {
	args, _, err := rc.Args(call)
	if err != nil {
		return err
	}

	if len(args) < 1 || len(args) > 2 {
		return ErrArgument.With(slog.String("usage", "excerpt($text, n)"))
	}

	n := DefaultExcerptLength

	if len(args) == 2 {
		f, ok := args[1].Numeric()
		if !ok || f < 1 {
			return ErrArgument.With(
				slog.String("usage", "excerpt($text, n)"),
				slog.String("n", args[1].String()),
			)
		}

		n = int(f)
	}

	rc.Write(excerpt(args[0].String(), n, rc.opts.ellipsis))

	return nil
}

func callTimeToRead(_ context.Context, rc *Context, call *lang.Call) error {
	args, _, err := rc.Args(call)
	if err != nil {
		return err
	}

	if len(args) != 1 {
		return ErrArgument.With(slog.String("usage", "timetoread($text)"))
	}

	rc.Write(strconv.Itoa(timeToRead(args[0].String(), rc.opts.wpm)))

	return nil
}
