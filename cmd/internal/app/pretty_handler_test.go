package app

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestStripANSI(t *testing.T) {
	t.Parallel()

	in := ansiBlue + "INFO" + ansiReset + " plain " + ansiRed + "ERR" + ansiReset
	got := stripANSI(in)
	want := "INFO plain ERR"
	if got != want {
		t.Fatalf("stripANSI()=%q want=%q", got, want)
	}
}

func TestLevelTag(t *testing.T) {
	t.Parallel()

	cases := []struct {
		level slog.Level
		want  string
	}{
		{level: slog.LevelDebug, want: "[DEBUG]"},
		{level: slog.LevelInfo, want: "[INFO]"},
		{level: slog.LevelWarn, want: "[WARN]"},
		{level: slog.LevelError, want: "[ERROR]"},
	}

	for _, tc := range cases {
		if got := levelTag(tc.level, false); got != tc.want {
			t.Fatalf("levelTag(%v)=%q want=%q", tc.level, got, tc.want)
		}
		colored := levelTag(tc.level, true)
		if stripANSI(colored) != tc.want {
			t.Fatalf("levelTag(%v, color)=%q; stripped want %q", tc.level, colored, tc.want)
		}
	}
}

func TestQuoteIfNeeded(t *testing.T) {
	t.Parallel()

	if got := quoteIfNeeded("plain"); got != "plain" {
		t.Fatalf("quoteIfNeeded(plain)=%q", got)
	}
	if got := quoteIfNeeded("two words"); got != `"two words"` {
		t.Fatalf("quoteIfNeeded(two words)=%q", got)
	}
	if got := quoteIfNeeded(""); got != `""` {
		t.Fatalf("quoteIfNeeded(empty)=%q", got)
	}
}

func TestPrettyHandler_RendersRecord(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	h := newPrettyHandler(&sb, &slog.HandlerOptions{Level: slog.LevelDebug}, false)

	r := slog.NewRecord(time.Date(2026, 3, 1, 12, 30, 45, 0, time.UTC), slog.LevelInfo, "http.request", 0)
	r.AddAttrs(
		slog.String("method", "post"),
		slog.Int("status", 201),
		slog.Int64("duration_ms", 12),
		slog.String("path", "/auth/login"),
	)

	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	out := sb.String()
	for _, want := range []string{"lvl=[INFO]", "msg=http.request", "method=POST", "status=201", "duration=12ms", "path=/auth/login"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q: %s", want, out)
		}
	}
}

func TestPrettyHandler_GroupsFlattenKeys(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	base := newPrettyHandler(&sb, nil, false)
	h := base.WithGroup("req").WithAttrs([]slog.Attr{slog.String("id", "abc")})

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "hit", 0)
	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if !strings.Contains(sb.String(), "req.id=abc") {
		t.Fatalf("expected grouped key in output: %s", sb.String())
	}
}

func TestColorizeStatusCode(t *testing.T) {
	t.Parallel()

	if got := colorizeStatusCode(200, false); got != "200" {
		t.Fatalf("colorizeStatusCode(200, plain)=%q", got)
	}
	if got := stripANSI(colorizeStatusCode(500, true)); got != "500" {
		t.Fatalf("colorizeStatusCode(500, color) stripped=%q", got)
	}
}

func TestValueToInt64(t *testing.T) {
	t.Parallel()

	if n, ok := valueToInt64(slog.IntValue(42)); !ok || n != 42 {
		t.Fatalf("int value: n=%d ok=%v", n, ok)
	}
	if n, ok := valueToInt64(slog.StringValue("7")); !ok || n != 7 {
		t.Fatalf("string value: n=%d ok=%v", n, ok)
	}
	if _, ok := valueToInt64(slog.StringValue("nope")); ok {
		t.Fatalf("expected failure for non-numeric string")
	}
}
