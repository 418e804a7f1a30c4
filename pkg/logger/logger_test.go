package logger

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestNewLogger(t *testing.T) {
	l := NewLogger(Options{Dir: t.TempDir(), Console: io.Discard})
	if l == nil {
		t.Fatal("Expected logger to be created, got nil")
	}

	// Test that logger methods don't panic
	l.Info("Test info message", "TEST")
	l.Warn("Test warning message", "TEST")
	l.Debug("Test debug message", "TEST")
	l.System("Test system message", "TEST")
	l.Success("Test success message", "TEST")
	l.Critical("Test critical message", "TEST")

	l.Close()
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelCritical, "CRITICAL"},
		{LevelError, "ERROR"},
		{LevelWarn, "WARN"},
		{LevelSuccess, "SUCCESS"},
		{LevelInfo, "INFO"},
		{LevelDebug, "DEBUG"},
		{LevelSystem, "SYSTEM"},
		{LogLevel(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("LogLevel.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestLogLevelDiscordColor(t *testing.T) {
	tests := []struct {
		level LogLevel
		color int
	}{
		{LevelCritical, 0xFF0000},
		{LevelError, 0xFF0000},
		{LevelWarn, 0xFFFF00},
		{LevelSuccess, 0x00FF00},
		{LevelInfo, 0x0000FF},
		{LevelDebug, 0x800080},
		{LevelSystem, 0x808080},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			if got := tt.level.DiscordColor(); got != tt.color {
				t.Errorf("LogLevel.DiscordColor() = %v, want %v", got, tt.color)
			}
		})
	}
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(Options{Console: &buf})

	l.Success("XP chargée", "Ready")

	out := buf.String()
	if !strings.Contains(out, "SUCCESS") {
		t.Errorf("console output %q should contain the level name", out)
	}
	if !strings.Contains(out, "[Ready]: XP chargée") {
		t.Errorf("console output %q should contain prefix and message", out)
	}
	if !strings.Contains(out, LevelSuccess.Color()) {
		t.Errorf("console output %q should be colored", out)
	}
}

func TestLogFileRouting(t *testing.T) {
	dir := t.TempDir()
	l := NewLogger(Options{Dir: dir, Console: io.Discard})

	l.Info("just info", "TEST")
	l.Error("something broke", "TEST")
	l.Close()

	combined, err := os.ReadFile(filepath.Join(dir, "combined.log"))
	if err != nil {
		t.Fatalf("reading combined.log: %v", err)
	}
	errorsLog, err := os.ReadFile(filepath.Join(dir, "error.log"))
	if err != nil {
		t.Fatalf("reading error.log: %v", err)
	}

	if !strings.Contains(string(combined), "just info") || !strings.Contains(string(combined), "something broke") {
		t.Errorf("combined.log should contain every line, got %q", combined)
	}
	if strings.Contains(string(errorsLog), "just info") {
		t.Errorf("error.log should not contain info lines, got %q", errorsLog)
	}
	if !strings.Contains(string(errorsLog), "[ERROR] [TEST]: something broke") {
		t.Errorf("error.log should contain the uncolored error line, got %q", errorsLog)
	}
}

func TestGlobalLoggerInit(t *testing.T) {
	// Reset the global logger for this test
	logger = nil
	once = sync.Once{}

	l := Init(Options{Console: io.Discard})
	if l == nil {
		t.Fatal("Expected Init to return a logger")
	}

	// Calling Init again should return the same logger
	l2 := Init(Options{Dir: "different", Console: io.Discard})
	if l != l2 {
		t.Error("Expected Init to return the same logger on subsequent calls")
	}

	// Get should return the same logger
	l3 := Get()
	if l != l3 {
		t.Error("Expected Get to return the same logger")
	}

	l.Close()
}
