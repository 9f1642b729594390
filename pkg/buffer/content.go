package buffer

import (
	"context"
	"io"
)

// Container is accumulated text that can be written out or transferred but
// not appended to directly.
type Container interface {
	WriteOut(w io.StringWriter) error
	WriteOutContext(ctx context.Context, w io.StringWriter) error
	CopyInto(dest Builder) error
	MoveInto(dest Builder) error
}

// Builder is mutable accumulated text.
type Builder interface {
	Container
	Append(value string) error
	Clear()
}

// ContextStringWriter is implemented by sinks whose writes may block on I/O
// and want the caller's context.
type ContextStringWriter interface {
	WriteStringContext(ctx context.Context, s string) (int, error)
}

func writeStringContext(ctx context.Context, w io.StringWriter, s string) error {
	if cw, ok := w.(ContextStringWriter); ok {
		_, err := cw.WriteStringContext(ctx, s)
		return err
	}
	_, err := w.WriteString(s)
	return err
}
