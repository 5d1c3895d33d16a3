package lang

import (
	"errors"
	"log/slog"
	"testing"
)

func TestError_Details(t *testing.T) {
	base := NewError("section mismatch")

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"plain", base, "section mismatch"},
		{
			"attrs",
			base.With(slog.String("missing", "head"), slog.String("extra", "")),
			"section mismatch (missing=head)",
		},
		{
			"quoted",
			base.With(slog.String("usage", "for($item, source)")),
			`section mismatch (usage="for($item, source)")`,
		},
		{
			"located and wrapped",
			base.With(slog.Int("count", 2)).WithSource("a.html").
				WithPosition(Position{Line: 3, Column: 4}).Wrap(errors.New("boom")),
			"a.html:3:4: section mismatch (count=2): boom",
		},
		{"attrs only", WrapError(errors.New("boom")).With(slog.String("k", "v")), "(k=v): boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
