package render

import (
	"context"
	"fmt"

	"github.com/goliatone/go-viewbuffer/pkg/buffer"
	"github.com/goliatone/go-viewbuffer/pkg/viewwriter"
)

// Output routes Content to a Writer, running Text values through the scope's
// encoder. Raw values and nested containers are written untouched.
type Output struct {
	writer  *viewwriter.Writer
	encoder Encoder
}

// NewOutput wraps w. A nil encoder leaves Text values unencoded.
func NewOutput(w *viewwriter.Writer, encoder Encoder) (*Output, error) {
	if w == nil {
		return nil, fmt.Errorf("render: output writer is required")
	}
	if encoder == nil {
		encoder = NopEncoder{}
	}
	return &Output{writer: w, encoder: encoder}, nil
}

// Writer returns the underlying Writer.
func (o *Output) Writer() *viewwriter.Writer {
	return o.writer
}

// Write dispatches c.
func (o *Output) Write(c viewwriter.Content) error {
	switch v := c.(type) {
	case viewwriter.Text:
		return o.writer.WriteContent(viewwriter.Raw(o.encoder.Encode(string(v))))
	default:
		return o.writer.WriteContent(c)
	}
}

// WriteText encodes value and writes it.
func (o *Output) WriteText(value string) error {
	return o.Write(viewwriter.Text(value))
}

// WriteRaw writes value as-is.
func (o *Output) WriteRaw(value string) error {
	return o.Write(viewwriter.Raw(value))
}

// WriteNested moves or writes c depending on the Writer's mode.
func (o *Output) WriteNested(c buffer.Container) error {
	return o.Write(viewwriter.Nested{Container: c})
}

// Flush flushes the underlying Writer.
func (o *Output) Flush() error {
	return o.writer.Flush()
}

// FlushContext flushes the underlying Writer with ctx.
func (o *Output) FlushContext(ctx context.Context) error {
	return o.writer.FlushContext(ctx)
}

// String returns the text still buffered by the Writer.
func (o *Output) String() string {
	return o.writer.Buffer().String()
}
