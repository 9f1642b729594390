package viewwriter

import "github.com/goliatone/go-viewbuffer/pkg/buffer"

// Content is the closed set of values a Writer accepts: Text, Raw and Nested.
type Content interface {
	isContent()
}

// Text is a value that has not been encoded. The Writer stores it as-is;
// encoding is the caller's responsibility before it reaches the sink.
type Text string

// Raw is a value already encoded for the output medium.
type Raw string

// Nested wraps accumulated output from another render.
type Nested struct {
	Container buffer.Container
}

func (Text) isContent()   {}
func (Raw) isContent()    {}
func (Nested) isContent() {}
