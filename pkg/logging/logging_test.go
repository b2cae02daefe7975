package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LogLevel(999), "UNKNOWN"},
	}

	for _, test := range tests {
		if result := test.level.String(); result != test.expected {
			t.Errorf("LogLevel(%d).String() = %s, expected %s", test.level, result, test.expected)
		}
	}
}

func TestLogLevel_SlogLevel(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected slog.Level
	}{
		{LevelDebug, slog.LevelDebug},
		{LevelInfo, slog.LevelInfo},
		{LevelWarn, slog.LevelWarn},
		{LevelError, slog.LevelError},
		{LogLevel(999), slog.LevelInfo},
	}

	for _, test := range tests {
		if result := test.level.SlogLevel(); result != test.expected {
			t.Errorf("LogLevel(%d).SlogLevel() = %v, expected %v", test.level, result, test.expected)
		}
	}
}

func TestInitForCLI(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelInfo, &buf)

	if defaultLogger == nil {
		t.Fatal("expected defaultLogger to be set after InitForCLI")
	}

	Info("test-subsystem", "test message")

	output := buf.String()
	if !strings.Contains(output, "test message") {
		t.Error("expected log message to appear in CLI output")
	}
	if !strings.Contains(output, "test-subsystem") {
		t.Error("expected subsystem to appear in CLI output")
	}
}

func TestCLILevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelInfo, &buf)

	Debug("test", "debug message")
	Info("test", "info message")

	output := buf.String()
	if strings.Contains(output, "debug message") {
		t.Error("debug message should be filtered out at INFO level")
	}
	if !strings.Contains(output, "info message") {
		t.Error("info message should appear at INFO level")
	}
}

func TestErrorIncludesErrAttribute(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelDebug, &buf)

	Error("test", errors.New("boom"), "operation failed")

	output := buf.String()
	if !strings.Contains(output, "boom") {
		t.Error("expected wrapped error text in output")
	}
}

func TestLogEntryStructure(t *testing.T) {
	now := time.Now()
	testErr := errors.New("test error")

	entry := LogEntry{
		Timestamp: now,
		Level:     LevelError,
		Subsystem: "test-subsystem",
		Message:   "test message",
		Err:       testErr,
	}

	if entry.Timestamp != now || entry.Level != LevelError || entry.Subsystem != "test-subsystem" ||
		entry.Message != "test message" || entry.Err != testErr {
		t.Error("LogEntry fields not set as constructed")
	}
}
