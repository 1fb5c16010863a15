package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "debug", "json")

	tests := []struct {
		name      string
		fn        func()
		wantLevel string
		wantMsg   string
	}{
		{
			name:      "Info",
			fn:        func() { l.Info("test message") },
			wantLevel: "INFO",
			wantMsg:   "test message",
		},
		{
			name:      "Warn",
			fn:        func() { l.Warn("warning message") },
			wantLevel: "WARN",
			wantMsg:   "warning message",
		},
		{
			name:      "Error",
			fn:        func() { l.Error("error message") },
			wantLevel: "ERROR",
			wantMsg:   "error message",
		},
		{
			name:      "Debug",
			fn:        func() { l.Debug("debug message") },
			wantLevel: "DEBUG",
			wantMsg:   "debug message",
		},
		{
			name:      "Info with args",
			fn:        func() { l.Info("test %s=%d", "count", 42) },
			wantLevel: "INFO",
			wantMsg:   "test count=42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn()
			var rec map[string]any
			if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
				t.Fatalf("invalid json record %q: %v", buf.String(), err)
			}
			if rec["level"] != tt.wantLevel {
				t.Errorf("level: got %v, want %s", rec["level"], tt.wantLevel)
			}
			if rec["msg"] != tt.wantMsg {
				t.Errorf("msg: got %v, want %s", rec["msg"], tt.wantMsg)
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "warn", "text")

	l.Debug("hidden")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below warn, got %q", buf.String())
	}

	l.Warn("shown")
	if !strings.Contains(buf.String(), "msg=shown") {
		t.Errorf("expected warn record, got %q", buf.String())
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "info", "text").With("component", "migrator")
	l.Info("applied")
	if !strings.Contains(buf.String(), "component=migrator") {
		t.Errorf("expected component attribute, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestDefault(t *testing.T) {
	if Default == nil {
		t.Error("Default logger should not be nil")
	}

	Default.Info("test")
	Discard.Error("dropped")
}
