package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerJSONIncludesComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Format: "json", Component: ComponentBot, Output: &buf})

	l.InfoContext(context.Background(), "dispatched", FieldIntent, "help")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid json log line %q: %v", buf.String(), err)
	}
	if entry[FieldComponent] != ComponentBot || entry[FieldIntent] != "help" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestLoggerLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelWarn, Format: "text", Component: ComponentApp, Output: &buf})

	l.Info("hidden")
	l.Warn("shown")

	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestTintHandlerWrites(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Format: "tint", Component: ComponentApp, Output: &buf})
	l.Info("colored")
	if !strings.Contains(buf.String(), "colored") {
		t.Fatalf("expected message in tint output, got %q", buf.String())
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	if l := FromContext(context.Background()); l.Component() != "unknown" {
		t.Fatalf("unexpected component %q", l.Component())
	}

	var buf bytes.Buffer
	l := New(Config{Format: "json", Component: ComponentHTTP, Output: &buf})
	ctx := WithLogger(context.Background(), l)
	if FromContext(ctx) != l {
		t.Fatal("expected stored logger")
	}
}

func TestStructuredLoggerHTTPEndLevel(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Format: "json", Component: ComponentHTTP, Output: &buf}))

	req := httptest.NewRequest("POST", "/webhook?x=1", nil)
	sl.LogHTTPEnd(context.Background(), req, 503, 12, "10.0.0.1")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if entry["level"] != "ERROR" || entry[FieldPath] != "/webhook" || entry[FieldStatusCode] != float64(503) {
		t.Fatalf("unexpected entry: %v", entry)
	}

	buf.Reset()
	sl.LogError(context.Background(), "boom", errors.New("bad"), ComponentLine, OpReply, nil)
	if !strings.Contains(buf.String(), `"error":"bad"`) {
		t.Fatalf("missing error field: %q", buf.String())
	}
}
