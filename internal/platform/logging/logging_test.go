package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Format: FormatJSON, Level: "debug", Output: &buf})
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}
	logger.Debug("teleport write", "relation", "orders")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode log line: %v (%q)", err, buf.String())
	}
	if record["msg"] != "teleport write" || record["relation"] != "orders" {
		t.Fatalf("unexpected record: %v", record)
	}
}

func TestNew_ConsoleFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Format: FormatConsole, Level: "warn", Output: &buf})
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}
	logger.Info("hidden")
	logger.Warn("visible", "environment", "local")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Fatalf("warn line missing: %q", out)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{Format: "xml"}).Validate(); err == nil {
		t.Fatalf("Validate() expected error for format")
	}
	if err := (Config{Level: "loud"}).Validate(); err == nil {
		t.Fatalf("Validate() expected error for level")
	}
}

func TestOrDefault(t *testing.T) {
	if OrDefault(nil) != slog.Default() {
		t.Fatalf("OrDefault(nil) should return slog.Default()")
	}
}
