package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestInitLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(&buf, "warn"); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}
	defer Close()

	Info("hidden message")
	Warn("shown message", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden message") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(out, "shown message") || !strings.Contains(out, "key=value") {
		t.Errorf("warn message missing from output: %q", out)
	}
}

func TestInitInvalidLevel(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(&buf, "loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestLogWithErr(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(&buf, "debug"); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}
	defer Close()

	LogWithErr("load failed", errors.New("boom"))

	if !strings.Contains(buf.String(), "boom") {
		t.Errorf("expected error text in output: %q", buf.String())
	}
}
