package heap

import (
	"bytes"
	"strings"
	"testing"
)

func TestTracerWritesTimestampedLines(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewTracer(&buf)
	tracer.Printf("hello %s", "world")

	out := buf.String()
	if !strings.Contains(out, "hello world") {
		t.Errorf("output %q does not contain the formatted message", out)
	}
	if !strings.HasPrefix(out, "[") {
		t.Errorf("output %q does not start with a timestamp", out)
	}
}

func TestNilTracerIsSilent(t *testing.T) {
	var tracer *Tracer
	tracer.Printf("this should not panic")
}

func TestNewTracerNilWriter(t *testing.T) {
	if tracer := NewTracer(nil); tracer != nil {
		t.Error("NewTracer(nil) should return a nil *Tracer")
	}
}
