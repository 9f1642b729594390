package testsupport

import (
	"bytes"
	"io"
)

// FlushRecorder is an in-memory downstream writer that counts flushes.
type FlushRecorder struct {
	bytes.Buffer
	Flushes int
}

// Flush records the call.
func (r *FlushRecorder) Flush() error {
	r.Flushes++
	return nil
}

// PlainWriter hides every method of W except Write, forcing callers onto the
// io.Writer path.
type PlainWriter struct {
	W io.Writer
}

// Write implements io.Writer.
func (p PlainWriter) Write(b []byte) (int, error) {
	return p.W.Write(b)
}

// ErrWriter fails every write with Err.
type ErrWriter struct {
	Err error
}

// Write implements io.Writer.
func (e ErrWriter) Write([]byte) (int, error) {
	return 0, e.Err
}

// WriteString implements io.StringWriter.
func (e ErrWriter) WriteString(string) (int, error) {
	return 0, e.Err
}

// FailingOnceWriter fails its first Write or WriteString with Err and
// records every later write.
type FailingOnceWriter struct {
	bytes.Buffer
	Err    error
	failed bool
}

// Write implements io.Writer.
func (f *FailingOnceWriter) Write(b []byte) (int, error) {
	if !f.failed {
		f.failed = true
		return 0, f.Err
	}
	return f.Buffer.Write(b)
}

// WriteString implements io.StringWriter.
func (f *FailingOnceWriter) WriteString(s string) (int, error) {
	if !f.failed {
		f.failed = true
		return 0, f.Err
	}
	return f.Buffer.WriteString(s)
}
