package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewLoggerConsole(t *testing.T) {
	var buf bytes.Buffer
	cfg := LoggerConfig{Level: "debug", Console: true, Stderr: &buf}

	log, err := NewLogger(cfg)
	if err != nil {
		t.Fatalf("NewLogger returned error: %v", err)
	}
	if log.GetLevel() != logrus.DebugLevel {
		t.Errorf("Expected debug level, got %s", log.GetLevel())
	}

	WithFileOperation(log, "a.png", "decode").Debug("decoded")
	out := buf.String()
	if !strings.Contains(out, "decoded") || !strings.Contains(out, "file=a.png") {
		t.Errorf("Expected text log line with file field, got %q", out)
	}
}

func TestNewLoggerFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logs", "optimize.log")

	cfg := LoggerConfig{
		Level:      "info",
		FilePath:   path,
		MaxSize:    1,
		MaxBackups: 1,
	}

	log, err := NewLogger(cfg)
	if err != nil {
		t.Fatalf("NewLogger returned error: %v", err)
	}
	WithFile(log, "b.jpg").Info("rewritten")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected log file to exist: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &entry); err != nil {
		t.Fatalf("Expected JSON log line, got %q: %v", data, err)
	}
	if entry["message"] != "rewritten" || entry["file"] != "b.jpg" {
		t.Errorf("Unexpected log entry: %v", entry)
	}
}

func TestNewLoggerInvalidLevel(t *testing.T) {
	if _, err := NewLogger(LoggerConfig{Level: "chatty"}); err == nil {
		t.Error("Expected error for invalid level")
	}
}
