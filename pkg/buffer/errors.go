package buffer

import "errors"

var (
	// ErrNilPool indicates an allocator was constructed without a shared pool.
	ErrNilPool = errors.New("buffer: shared pool is required")

	// ErrNilAllocator indicates a page buffer was constructed without an allocator.
	ErrNilAllocator = errors.New("buffer: allocator is required")

	// ErrNilSegment indicates a nil segment was handed back to an allocator.
	ErrNilSegment = errors.New("buffer: segment is required")

	// ErrNilBuilder indicates a copy or move was requested into a nil builder.
	ErrNilBuilder = errors.New("buffer: destination builder is required")

	// ErrNilSink indicates content was written out to a nil sink.
	ErrNilSink = errors.New("buffer: sink is required")

	// ErrInvalidSize indicates a non-positive page or segment size.
	ErrInvalidSize = errors.New("buffer: size must be positive")

	// ErrIndexOutOfRange indicates a page index outside [0, PageCount).
	ErrIndexOutOfRange = errors.New("buffer: index out of range")

	// ErrScopeClosed indicates the allocator was used after Close.
	ErrScopeClosed = errors.New("buffer: scope closed")

	// ErrSelfMove indicates a buffer was asked to move its content into itself.
	ErrSelfMove = errors.New("buffer: cannot move buffer into itself")

	// ErrSegmentFull is the panic value raised when appending to a full
	// segment. It signals a broken page rotation, not a recoverable condition.
	ErrSegmentFull = errors.New("buffer: append to full segment")
)
