package traceio

import (
	"fmt"
	"io"

	"github.com/nt-sched/wfq"
)

// Writer formats [wfq.Dispatch] values as `<real_start_time>: <raw_input_line>`
// lines, per spec.md §6.
type Writer struct {
	w io.Writer
}

// NewWriter wraps w as a trace [Writer].
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteDispatch emits one formatted output line.
func (w *Writer) WriteDispatch(d wfq.Dispatch) error {
	_, err := fmt.Fprintf(w.w, "%d: %s\n", d.RealStartTime, d.RawLine)
	return err
}
