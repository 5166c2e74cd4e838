package util

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerModes(t *testing.T) {
	var buf bytes.Buffer
	lg := NewLogger(&buf, false, false)
	lg.Printf("hello %d", 7)
	lg.Tracef("never")
	if !strings.Contains(buf.String(), "hello 7") {
		t.Fatalf("output %q", buf.String())
	}
	if strings.Contains(buf.String(), "never") {
		t.Fatal("trace must be off by default")
	}
	if lg.TraceEnabled() {
		t.Fatal("TraceEnabled")
	}
}

func TestLoggerSilentAndTrace(t *testing.T) {
	var buf bytes.Buffer
	lg := NewLogger(&buf, true, true)
	lg.Printf("suppressed")
	lg.Tracef("traced")
	if strings.Contains(buf.String(), "suppressed") {
		t.Fatal("silent must drop Printf")
	}
	if !strings.Contains(buf.String(), "traced") {
		t.Fatalf("output %q", buf.String())
	}
}

func TestLoggerNilWriter(t *testing.T) {
	lg := NewLogger(nil, true, false)
	lg.Printf("dropped")
	lg.Tracef("dropped")
}

func TestBoolToU8(t *testing.T) {
	if BoolToU8(true) != 1 || BoolToU8(false) != 0 {
		t.Fatal("BoolToU8")
	}
}
