package heap

import (
	"fmt"
	"io"
	"time"
)

// Tracer writes timestamped progress lines for allocations, region
// roll-overs, and GC cycles. It has no dependency on any logging
// framework: the corpus this module is grounded on reaches for plain
// fmt.Fprintf tracing gated by a CLI flag, and so does this.
//
// A nil *Tracer is valid and silently discards every call, so the core
// packages can take a Tracer unconditionally without a nil check at
// every call site.
type Tracer struct {
	w io.Writer
}

// NewTracer wraps w as a trace destination.
func NewTracer(w io.Writer) *Tracer {
	if w == nil {
		return nil
	}
	return &Tracer{w: w}
}

// Printf writes one timestamped trace line. No-op on a nil Tracer.
func (t *Tracer) Printf(format string, args ...interface{}) {
	if t == nil || t.w == nil {
		return
	}
	ts := time.Now().Format("15:04:05.000")
	fmt.Fprintf(t.w, "[%s] %s\n", ts, fmt.Sprintf(format, args...))
}
