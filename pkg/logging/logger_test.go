package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewStructuredLoggerWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	logger, err := NewStructuredLogger(Config{
		Level:      LevelInfo,
		OutputPath: path,
		Component:  "test",
	})
	if err != nil {
		t.Fatalf("NewStructuredLogger: %v", err)
	}
	logger.Info("poll scheduled for %s", "sessions")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(b), "poll scheduled") {
		t.Errorf("log file missing entry:\n%s", b)
	}
}

func TestNewStructuredLoggerLevelFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	logger, err := NewStructuredLogger(Config{
		Level:      LevelWarn,
		OutputPath: path,
	})
	if err != nil {
		t.Fatalf("NewStructuredLogger: %v", err)
	}
	logger.Info("quiet")
	logger.Warn("loud")
	logger.Close()

	b, _ := os.ReadFile(path)
	if strings.Contains(string(b), "quiet") {
		t.Error("info entry written despite warn level")
	}
	if !strings.Contains(string(b), "loud") {
		t.Errorf("warn entry missing:\n%s", b)
	}
}

func TestDefaultOutputPath(t *testing.T) {
	t.Setenv("SESSIONAUT_LOG_FILE", "/tmp/custom-sessionaut.log")
	if got := defaultOutputPath(); got != "/tmp/custom-sessionaut.log" {
		t.Errorf("defaultOutputPath = %q, want the environment override", got)
	}

	t.Setenv("SESSIONAUT_LOG_FILE", "")
	got := defaultOutputPath()
	if got == "" || filepath.Base(got) != "sessionaut.log" {
		t.Errorf("defaultOutputPath = %q, want a sessionaut.log fallback", got)
	}
	// The fallback must be a file, never a terminal stream
	if got == "/dev/stderr" || got == "/dev/stdout" {
		t.Errorf("defaultOutputPath = %q points at a terminal stream", got)
	}
}
