package observability

import (
	"bytes"
	"strings"
	"testing"
)

func TestRecoverPanic(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(ErrorLevel, &buf)

	func() {
		defer RecoverPanic(logger, "notification dispatch")
		panic("sink exploded")
	}()

	out := buf.String()
	if !strings.Contains(out, "panic recovered") {
		t.Errorf("Expected recovery log, got %q", out)
	}
	if !strings.Contains(out, "sink exploded") {
		t.Errorf("Expected panic value in log, got %q", out)
	}
	if !strings.Contains(out, "notification dispatch") {
		t.Errorf("Expected context in log, got %q", out)
	}
}

func TestRecoverPanic_NoPanic(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(ErrorLevel, &buf)

	func() {
		defer RecoverPanic(logger, "quiet path")
	}()

	if buf.Len() != 0 {
		t.Errorf("Expected no output without a panic, got %q", buf.String())
	}
}
