package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestMake_DefaultConfiguration(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf)

	if logger.Level() != LevelInfo {
		t.Errorf("expected default level info, got %v", logger.Level())
	}

	if logger.caller {
		t.Error("expected caller disabled by default")
	}

	if logger.Format() != FormatText {
		t.Errorf("expected default format text, got %v", logger.Format())
	}
}

func TestMake_WithLevel_FiltersMessages(t *testing.T) {
	tests := []struct {
		name   string
		level  Level
		log    func(Logger)
		logged bool
	}{
		{"debug at debug", LevelDebug, func(l Logger) { l.Debug("msg") }, true},
		{"info at error", LevelError, func(l Logger) { l.Info("msg") }, false},
		{"error at error", LevelError, func(l Logger) { l.Error("msg") }, true},
		{"trace at debug", LevelDebug, func(l Logger) { l.Trace("msg") }, false},
		{"trace at trace", LevelTrace, func(l Logger) { l.Trace("msg") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(Make(&buf, WithLevel(tt.level), WithPretty(false)))

			if got := strings.Contains(buf.String(), "msg"); got != tt.logged {
				t.Errorf("logged = %v, want %v (output %q)", got, tt.logged, buf.String())
			}
		})
	}
}

func TestMake_WithFormat_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf, WithFormat(FormatJSON), WithPretty(false))
	logger.Info("test message", slog.String("key", "value"))

	var result map[string]any
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}

	if result["msg"] != "test message" {
		t.Errorf("expected msg=test message, got %v", result["msg"])
	}

	if result["key"] != "value" {
		t.Errorf("expected key=value, got %v", result["key"])
	}

	if result["level"] != "INFO" {
		t.Errorf("expected level INFO, got %v", result["level"])
	}
}

func TestMake_TraceLevelName(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf, WithLevel(LevelTrace), WithFormat(FormatJSON), WithPretty(false))
	logger.Trace("step")

	if !strings.Contains(buf.String(), `"level":"TRACE"`) {
		t.Errorf("expected TRACE level name, got %s", buf.String())
	}
}

func TestMake_WithTimeLayout(t *testing.T) {
	tests := []struct {
		name   string
		layout string
		hasKey bool
	}{
		{"rfc3339", "RFC3339", true},
		{"none", "none", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := Make(&buf, WithTimeLayout(tt.layout), WithFormat(FormatJSON), WithPretty(false))
			logger.Info("test")

			var result map[string]any
			if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
				t.Fatalf("failed to parse JSON output: %v", err)
			}

			if _, ok := result["time"]; ok != tt.hasKey {
				t.Errorf("time present = %v, want %v", ok, tt.hasKey)
			}
		})
	}
}

func TestMake_WithCaller(t *testing.T) {
	var buf bytes.Buffer
	Make(&buf, WithCaller(true), WithFormat(FormatJSON), WithPretty(false)).Info("here")

	if !strings.Contains(buf.String(), "log_test.go") {
		t.Errorf("expected caller to be this file, got %s", buf.String())
	}
}

func TestLogger_ZeroValueDiscards(t *testing.T) {
	var logger Logger

	// Must not panic.
	logger.Info("nothing")
	logger.With(slog.String("k", "v")).Error("nothing")

	if logger.Level() != DefaultLevel {
		t.Errorf("zero logger level = %v, want %v", logger.Level(), DefaultLevel)
	}
}

func TestLogger_With_AddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf, WithFormat(FormatJSON), WithPretty(false)).
		With(slog.String("page", "index.html"))
	logger.Info("rendered")

	if !strings.Contains(buf.String(), `"page":"index.html"`) {
		t.Errorf("expected attribute in output, got %s", buf.String())
	}
}

func TestPrettyText_Attributes(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf, WithTimeLayout("none")).
		With(slog.String("component", "site"))
	logger.Warn("slow page", slog.Group("page", slog.String("path", "a b.html")), slog.Int("ms", 12))

	got := buf.String()
	for _, want := range []string{"WARN", "slow page", "component=site", `page.path="a b.html"`, "ms=12"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in output %q", want, got)
		}
	}
}

func TestPrettyJSON_Indented(t *testing.T) {
	var buf bytes.Buffer
	Make(&buf, WithFormat(FormatJSON)).Info("indented")

	if !strings.Contains(buf.String(), "\n  \"msg\": \"indented\"") {
		t.Errorf("expected indented JSON, got %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{"debug", LevelDebug},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"bogus", DefaultLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat(" JSON ") != FormatJSON {
		t.Error("expected json")
	}

	if ParseFormat("xml") != DefaultFormat {
		t.Error("expected default format for unknown input")
	}
}

func TestTimeFormatter(t *testing.T) {
	at := time.Date(2024, time.March, 9, 14, 5, 0, 0, time.UTC)

	tests := []struct {
		layout string
		want   string
	}{
		{"RFC3339", "2024-03-09T14:05:00Z"},
		{"rfc-3339", "2024-03-09T14:05:00Z"},
		{"Kitchen", "2:05PM"},
		{"DateOnly", "2024-03-09"},
		{"%Y/%m/%d %H:%M", "2024/03/09 14:05"},
		{"2006.01.02", "2024.03.09"},
		{"none", ""},
		{"  ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.layout, func(t *testing.T) {
			if got := timeFormatter(tt.layout)(at); got != tt.want {
				t.Errorf("timeFormatter(%q) = %q, want %q", tt.layout, got, tt.want)
			}
		})
	}
}

func TestLevel_String(t *testing.T) {
	if got := slices.Collect(Levels()); !slices.Equal(got, []string{"trace", "debug", "info", "warn", "error"}) {
		t.Errorf("Levels = %v", got)
	}

	if got := (LevelWarn + 2).String(); got != "warn+2" {
		t.Errorf("offset level = %q", got)
	}

	if got := ParseLevel("info+2"); got != LevelInfo+2 {
		t.Errorf("ParseLevel(info+2) = %v", got)
	}

	if got := Format(7).String(); got != "unknown" {
		t.Errorf("Format(7) = %q", got)
	}
}
