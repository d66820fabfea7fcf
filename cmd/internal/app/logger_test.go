package app

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want slog.Level
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "unknown", want: slog.LevelInfo},
		{in: "", want: slog.LevelInfo},
	}

	for _, tc := range cases {
		got := parseLogLevel(tc.in)
		if got != tc.want {
			t.Fatalf("parseLogLevel(%q)=%v want=%v", tc.in, got, tc.want)
		}
	}
}

func TestNewLogger_Formats(t *testing.T) {
	var jsonBuf bytes.Buffer
	newLoggerTo(&jsonBuf, "info", "json", false).Info("server.start", "addr", ":8000")
	if !strings.HasPrefix(jsonBuf.String(), "{") || !strings.Contains(jsonBuf.String(), `"msg":"server.start"`) {
		t.Fatalf("expected JSON line, got %q", jsonBuf.String())
	}

	var prettyBuf bytes.Buffer
	newLoggerTo(&prettyBuf, "info", "pretty", false).Info("server.start", "addr", ":8000")
	if !strings.Contains(prettyBuf.String(), "msg=server.start") || !strings.Contains(prettyBuf.String(), "addr=:8000") {
		t.Fatalf("expected pretty line, got %q", prettyBuf.String())
	}

	var quiet bytes.Buffer
	newLoggerTo(&quiet, "error", "json", false).Info("dropped")
	if quiet.Len() != 0 {
		t.Fatalf("info must be filtered at error level, got %q", quiet.String())
	}
}
