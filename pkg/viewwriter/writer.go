package viewwriter

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/goliatone/go-viewbuffer/pkg/buffer"
)

// Mode is the Writer's output mode.
type Mode uint8

const (
	// ModeBuffering accumulates writes in the Writer's PageBuffer.
	ModeBuffering Mode = iota
	// ModePassThrough forwards writes to the downstream writer.
	ModePassThrough
)

func (m Mode) String() string {
	switch m {
	case ModeBuffering:
		return "buffering"
	case ModePassThrough:
		return "pass-through"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// Flusher is implemented by downstream writers that can push buffered bytes
// further along, such as bufio.Writer.
type Flusher interface {
	Flush() error
}

// ContextFlusher is a Flusher that accepts a context.
type ContextFlusher interface {
	FlushContext(ctx context.Context) error
}

// Option configures a Writer.
type Option func(*Writer)

// WithScratchPool sets the scratch pool used to adapt string writes onto a
// downstream writer lacking io.StringWriter.
func WithScratchPool(pool ScratchPool) Option {
	return func(w *Writer) {
		if pool != nil {
			w.scratch = pool
		}
	}
}

// Writer is the sink template code writes through. It starts in
// ModeBuffering and moves to ModePassThrough on the first Flush that has
// somewhere to go.
type Writer struct {
	mode       Mode
	buffer     *buffer.PageBuffer
	downstream io.Writer
	sink       *StringSink
	scratch    ScratchPool
}

var (
	_ io.Writer       = (*Writer)(nil)
	_ io.StringWriter = (*Writer)(nil)
	_ Flusher         = (*Writer)(nil)
)

// New constructs a Writer over buf. downstream may be nil for a top-level
// writer whose content is collected from the buffer afterwards.
func New(buf *buffer.PageBuffer, downstream io.Writer, options ...Option) (*Writer, error) {
	if buf == nil {
		return nil, ErrNilBuffer
	}
	w := &Writer{
		buffer:     buf,
		downstream: downstream,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(w)
	}
	if downstream != nil {
		sink, err := NewStringSink(downstream, w.scratch)
		if err != nil {
			return nil, err
		}
		w.sink = sink
	}
	return w, nil
}

// Mode returns the current output mode.
func (w *Writer) Mode() Mode {
	return w.mode
}

// Buffer returns the owned PageBuffer.
func (w *Writer) Buffer() *buffer.PageBuffer {
	return w.buffer
}

// Downstream returns the downstream writer, or nil.
func (w *Writer) Downstream() io.Writer {
	return w.downstream
}

// WriteString implements io.StringWriter.
func (w *Writer) WriteString(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	if w.mode == ModePassThrough {
		return w.sink.WriteString(s)
	}
	if err := w.buffer.Append(s); err != nil {
		return 0, err
	}
	return len(s), nil
}

// Write implements io.Writer. In ModeBuffering the bytes are copied, so p
// may be reused by the caller.
func (w *Writer) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if w.mode == ModePassThrough {
		return w.downstream.Write(p)
	}
	if err := w.buffer.Append(string(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}

// WriteRange writes p[index:index+count].
func (w *Writer) WriteRange(p []byte, index, count int) (int, error) {
	if index < 0 || count < 0 || index > len(p) || count > len(p)-index {
		return 0, ErrOutOfRange
	}
	return w.Write(p[index : index+count])
}

// WriteContainer writes accumulated output from another render. While
// buffering, the container's pages are moved into this Writer's buffer;
// in pass-through mode it is written straight downstream.
func (w *Writer) WriteContainer(c buffer.Container) error {
	if c == nil {
		return ErrNilContainer
	}
	if w.mode == ModePassThrough {
		return c.WriteOut(w.sink)
	}
	return c.MoveInto(w.buffer)
}

// WriteContent dispatches one of the Content variants. No encoding is
// applied to Text or Raw.
func (w *Writer) WriteContent(c Content) error {
	switch v := c.(type) {
	case Text:
		_, err := w.WriteString(string(v))
		return err
	case Raw:
		_, err := w.WriteString(string(v))
		return err
	case Nested:
		return w.WriteContainer(v.Container)
	case nil:
		return nil
	default:
		return fmt.Errorf("viewwriter: unsupported content %T", c)
	}
}

// Flush writes out everything buffered so far, switches the Writer to
// pass-through and flushes the downstream writer. Without a downstream
// writer, or when the downstream is itself a buffering Writer, Flush does
// nothing. If writing the buffer fails the Writer keeps buffering, so later
// writes queue behind the pending content and the next Flush retries it.
func (w *Writer) Flush() error {
	if !w.canFlush() {
		return nil
	}
	if w.mode == ModeBuffering {
		if err := w.buffer.WriteOut(w.sink); err != nil {
			return err
		}
		w.enterPassThrough()
	}
	return flushDownstream(w.downstream)
}

// FlushContext is Flush with context-aware writes and downstream flush.
func (w *Writer) FlushContext(ctx context.Context) error {
	if !w.canFlush() {
		return nil
	}
	if w.mode == ModeBuffering {
		if err := w.buffer.WriteOutContext(ctx, w.sink); err != nil {
			return err
		}
		w.enterPassThrough()
	}
	if cf, ok := w.downstream.(ContextFlusher); ok {
		return cf.FlushContext(ctx)
	}
	return flushDownstream(w.downstream)
}

func (w *Writer) canFlush() bool {
	if w.downstream == nil {
		return false
	}
	if parent, ok := w.downstream.(*Writer); ok && parent.mode == ModeBuffering {
		return false
	}
	return true
}

// enterPassThrough is the only place the mode changes. It must run only
// after the buffer has been written out.
func (w *Writer) enterPassThrough() {
	w.buffer.Clear()
	w.mode = ModePassThrough
}

func flushDownstream(dst io.Writer) error {
	switch f := dst.(type) {
	case Flusher:
		return f.Flush()
	case http.Flusher:
		f.Flush()
	}
	return nil
}
