package viewwriter

import "errors"

var (
	// ErrNilBuffer indicates a Writer was constructed without a buffer.
	ErrNilBuffer = errors.New("viewwriter: buffer is required")

	// ErrNilContainer indicates a nil container was written.
	ErrNilContainer = errors.New("viewwriter: container is required")

	// ErrNilWriter indicates a sink adapter was requested for a nil io.Writer.
	ErrNilWriter = errors.New("viewwriter: writer is required")

	// ErrOutOfRange indicates an index/count pair outside the written slice.
	ErrOutOfRange = errors.New("viewwriter: index or count out of range")
)
