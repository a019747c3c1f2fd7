package app

import (
	"strings"
	"testing"
)

// captureWriter collects log output for assertions.
type captureWriter struct {
	lines []string
}

func (w *captureWriter) Write(p []byte) (int, error) {
	w.lines = append(w.lines, string(p))
	return len(p), nil
}

func TestLoggerLevelFiltering(t *testing.T) {
	out := &captureWriter{}
	logger := NewLogger(LoggerConfig{Level: LogLevelWarn, Output: out})

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")
	logger.Error("shown too")

	if len(out.lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(out.lines))
	}
	if !strings.Contains(out.lines[0], "[WARN]") {
		t.Errorf("first line = %q, want WARN", out.lines[0])
	}
	if !strings.Contains(out.lines[1], "[ERROR]") {
		t.Errorf("second line = %q, want ERROR", out.lines[1])
	}
}

func TestLoggerFormatting(t *testing.T) {
	out := &captureWriter{}
	logger := NewLogger(LoggerConfig{Level: LogLevelDebug, Output: out, Prefix: "flowstorm"})

	logger.Info("capacity changed to %d", 25)

	if len(out.lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(out.lines))
	}
	line := out.lines[0]
	if !strings.Contains(line, "flowstorm: capacity changed to 25") {
		t.Errorf("line = %q", line)
	}
}

func TestLoggerWithComponent(t *testing.T) {
	out := &captureWriter{}
	logger := NewLogger(LoggerConfig{Level: LogLevelDebug, Output: out})

	logger.WithComponent("storage").Info("snapshot saved")

	if len(out.lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(out.lines))
	}
	if !strings.Contains(out.lines[0], "component=storage") {
		t.Errorf("line = %q, want component field", out.lines[0])
	}
}

func TestLoggerSetLevel(t *testing.T) {
	out := &captureWriter{}
	logger := NewLogger(LoggerConfig{Level: LogLevelError, Output: out})

	logger.Info("hidden")
	logger.SetLevel(LogLevelInfo)
	logger.Info("shown")

	if len(out.lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(out.lines))
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":   LogLevelDebug,
		"INFO":    LogLevelInfo,
		"warning": LogLevelWarn,
		"ERROR":   LogLevelError,
		"bogus":   LogLevelInfo,
	}
	for in, want := range cases {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNullLoggerDiscards(t *testing.T) {
	// Must not panic despite having no output writer.
	NullLogger.Error("dropped")
}
