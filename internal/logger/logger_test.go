package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLogger_Info(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{})
	log.out = &buf

	log.Info("Test message %d", 42)

	output := buf.String()
	if !strings.Contains(output, "Test message 42") {
		t.Errorf("Expected output to contain 'Test message 42', got: %s", output)
	}
}

func TestLogger_Debug_Verbose(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Verbose: true, NoColor: true})
	log.out = &buf

	log.Debug("Debug message")

	output := buf.String()
	if !strings.Contains(output, "Debug message") {
		t.Errorf("Expected output to contain 'Debug message', got: %s", output)
	}
}

func TestLogger_Debug_NotVerbose(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{})
	log.out = &buf

	log.Debug("Debug message")

	output := buf.String()
	if output != "" {
		t.Errorf("Expected no output when verbose is disabled, got: %s", output)
	}
}

func TestLogger_ErrorGoesToStderr(t *testing.T) {
	var out, errOut bytes.Buffer
	log := New(Options{NoColor: true})
	log.SetOutput(&out, &errOut)

	log.Error("broken: %s", "reason")

	if out.Len() != 0 {
		t.Errorf("Expected nothing on stdout, got: %s", out.String())
	}
	if !strings.Contains(errOut.String(), "ERROR broken: reason") {
		t.Errorf("Expected error on stderr, got: %s", errOut.String())
	}
}

func TestLogger_Violation(t *testing.T) {
	var out, errOut bytes.Buffer
	log := New(Options{NoColor: true})
	log.SetOutput(&out, &errOut)

	log.Violation("example.com.zone", "zone does not compile", "near 'bogus': syntax error")

	got := errOut.String()
	if !strings.Contains(got, "example.com.zone: zone does not compile") {
		t.Errorf("Expected path-prefixed violation, got: %s", got)
	}
	if !strings.Contains(got, "near 'bogus': syntax error") {
		t.Errorf("Expected detail block, got: %s", got)
	}
}

func TestLogger_JSONOutput(t *testing.T) {
	var out, errOut bytes.Buffer
	log := New(Options{JSON: true})
	log.SetOutput(&out, &errOut)

	log.Violation("example.com.zone", "zone does not compile", "")

	var entry LogEntry
	if err := json.Unmarshal(errOut.Bytes(), &entry); err != nil {
		t.Fatalf("Expected valid JSON, got %q: %v", errOut.String(), err)
	}
	if entry.Level != "error" {
		t.Errorf("Expected level 'error', got %q", entry.Level)
	}
	if entry.Message != "zone does not compile" {
		t.Errorf("Unexpected message: %q", entry.Message)
	}
	if entry.Data["file"] != "example.com.zone" {
		t.Errorf("Expected file in data, got: %v", entry.Data)
	}
}

func TestLogger_NoColorStripsCodes(t *testing.T) {
	var out, errOut bytes.Buffer
	log := New(Options{NoColor: true})
	log.SetOutput(&out, &errOut)

	log.Warn("heads up")

	if strings.Contains(out.String(), "\033[") {
		t.Errorf("Expected no ANSI codes, got: %q", out.String())
	}
	if !strings.Contains(out.String(), "! heads up") {
		t.Errorf("Expected warning text, got: %q", out.String())
	}
}
