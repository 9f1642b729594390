package buffer

import "fmt"

// DefaultMinimumSize is the smallest segment capacity an Allocator rents, so
// tiny requests do not churn the shared pool.
const DefaultMinimumSize = 16

// AllocatorOption configures an Allocator.
type AllocatorOption func(*Allocator)

// WithMinimumSize overrides DefaultMinimumSize. Non-positive values are ignored.
func WithMinimumSize(size int) AllocatorOption {
	return func(a *Allocator) {
		if size <= 0 {
			return
		}
		a.minSize = size
	}
}

// Allocator hands out segments for a single rendering scope. Segments retired
// during the scope are reused before the shared pool is consulted again, and
// every array rented from the pool is returned on Close.
type Allocator struct {
	pool    SharedPool
	minSize int

	retired []*Segment
	leased  []*Segment
	closed  bool

	rents  int
	reuses int
}

// NewAllocator constructs an Allocator over pool.
func NewAllocator(pool SharedPool, options ...AllocatorOption) (*Allocator, error) {
	if pool == nil {
		return nil, ErrNilPool
	}
	a := &Allocator{
		pool:    pool,
		minSize: DefaultMinimumSize,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(a)
	}
	return a, nil
}

// Rent returns an empty segment with capacity of at least
// max(minSize, minimum size).
func (a *Allocator) Rent(minSize int) (*Segment, error) {
	if minSize <= 0 {
		return nil, ErrInvalidSize
	}
	if a.closed {
		return nil, ErrScopeClosed
	}
	size := max(minSize, a.minSize)

	if n := len(a.retired); n > 0 && a.retired[n-1].Cap() >= size {
		seg := a.retired[n-1]
		a.retired[n-1] = nil
		a.retired = a.retired[:n-1]
		a.reuses++
		return seg, nil
	}

	items, err := a.pool.Rent(size)
	if err != nil {
		if items != nil {
			a.pool.Return(items, true)
		}
		return nil, fmt.Errorf("buffer: rent segment: %w", err)
	}
	if len(items) < size {
		a.pool.Return(items, true)
		return nil, fmt.Errorf("buffer: rent segment: pool returned %d slots, need %d: %w", len(items), size, ErrInvalidSize)
	}

	seg := newSegment(items)
	a.leased = append(a.leased, seg)
	a.rents++
	return seg, nil
}

// Retire resets seg and keeps it for reuse within this scope. The shared pool
// is not touched.
func (a *Allocator) Retire(seg *Segment) error {
	if seg == nil {
		return ErrNilSegment
	}
	if a.closed {
		return ErrScopeClosed
	}
	seg.reset()
	a.retired = append(a.retired, seg)
	return nil
}

// Close returns every leased array to the shared pool with its contents
// cleared. Retired segments are leased too, so they go back with the rest.
// Close is idempotent.
func (a *Allocator) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true

	for i, seg := range a.leased {
		a.pool.Return(seg.items, true)
		seg.items = nil
		seg.count = 0
		a.leased[i] = nil
	}
	a.leased = nil
	a.retired = nil
	return nil
}

// Closed reports whether Close has run.
func (a *Allocator) Closed() bool {
	return a.closed
}

// Rents returns how many arrays were rented from the shared pool.
func (a *Allocator) Rents() int {
	return a.rents
}

// Reuses returns how many Rent calls were served from retired segments.
func (a *Allocator) Reuses() int {
	return a.reuses
}

// Leased returns the number of arrays currently checked out of the shared pool.
func (a *Allocator) Leased() int {
	return len(a.leased)
}

// Retired returns the number of segments waiting for reuse.
func (a *Allocator) Retired() int {
	return len(a.retired)
}
