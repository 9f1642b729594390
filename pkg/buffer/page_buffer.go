package buffer

import (
	"context"
	"io"
	"strings"
)

const (
	// DefaultPageSize is the number of fragments per page.
	DefaultPageSize = 32

	// DefaultSparseThreshold is the fill percentage at or below which a page
	// is merged into the destination's tail page during MoveInto instead of
	// being relinked.
	DefaultSparseThreshold = 50
)

// PageBufferOption configures a PageBuffer.
type PageBufferOption func(*PageBuffer)

// WithSparseThreshold sets the sparse-merge fill percentage. Values outside
// [0, 100] are ignored. Zero disables merging except for empty pages.
func WithSparseThreshold(percent int) PageBufferOption {
	return func(b *PageBuffer) {
		if percent < 0 || percent > 100 {
			return
		}
		b.sparsePercent = percent
	}
}

// PageBuffer is an append-only chain of segments. Only the last page accepts
// appends; every earlier page filled by Append is full.
type PageBuffer struct {
	alloc         *Allocator
	pageSize      int
	sparsePercent int

	pages   []*Segment
	current *Segment
}

var (
	_ Builder     = (*PageBuffer)(nil)
	_ io.WriterTo = (*PageBuffer)(nil)
)

// NewPageBuffer constructs an empty PageBuffer renting pages of pageSize
// fragments from alloc.
func NewPageBuffer(alloc *Allocator, pageSize int, options ...PageBufferOption) (*PageBuffer, error) {
	if alloc == nil {
		return nil, ErrNilAllocator
	}
	if pageSize <= 0 {
		return nil, ErrInvalidSize
	}
	b := &PageBuffer{
		alloc:         alloc,
		pageSize:      pageSize,
		sparsePercent: DefaultSparseThreshold,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(b)
	}
	return b, nil
}

// Append adds value as one fragment. Empty values are ignored and never
// allocate a page.
func (b *PageBuffer) Append(value string) error {
	if value == "" {
		return nil
	}
	page, err := b.openPage()
	if err != nil {
		return err
	}
	page.Append(value)
	return nil
}

// WriteString implements io.StringWriter.
func (b *PageBuffer) WriteString(s string) (int, error) {
	if err := b.Append(s); err != nil {
		return 0, err
	}
	return len(s), nil
}

func (b *PageBuffer) openPage() (*Segment, error) {
	if b.alloc.Closed() {
		return nil, ErrScopeClosed
	}
	if b.current != nil && !b.current.IsFull() {
		return b.current, nil
	}
	page, err := b.alloc.Rent(b.pageSize)
	if err != nil {
		return nil, err
	}
	b.pages = append(b.pages, page)
	b.current = page
	return page, nil
}

// PageCount returns the number of pages.
func (b *PageBuffer) PageCount() int {
	return len(b.pages)
}

// PageAt returns the page at index i.
func (b *PageBuffer) PageAt(i int) (*Segment, error) {
	if i < 0 || i >= len(b.pages) {
		return nil, ErrIndexOutOfRange
	}
	return b.pages[i], nil
}

// Len returns the number of fragments across all pages.
func (b *PageBuffer) Len() int {
	n := 0
	for _, page := range b.pages {
		n += page.count
	}
	return n
}

// IsEmpty reports whether the buffer holds no fragments.
func (b *PageBuffer) IsEmpty() bool {
	for _, page := range b.pages {
		if page.count > 0 {
			return false
		}
	}
	return true
}

// Allocator returns the allocator pages are rented from.
func (b *PageBuffer) Allocator() *Allocator {
	return b.alloc
}

// Clear drops every page reference. Pages are not retired; they go back to
// the shared pool when the allocator closes.
func (b *PageBuffer) Clear() {
	clear(b.pages)
	b.pages = b.pages[:0]
	b.current = nil
}

// String concatenates the accumulated fragments.
func (b *PageBuffer) String() string {
	size := 0
	for _, page := range b.pages {
		for _, fragment := range page.Items() {
			size += len(fragment)
		}
	}
	var sb strings.Builder
	sb.Grow(size)
	for _, page := range b.pages {
		for _, fragment := range page.Items() {
			sb.WriteString(fragment)
		}
	}
	return sb.String()
}

// WriteOut writes every fragment to w in emission order.
func (b *PageBuffer) WriteOut(w io.StringWriter) error {
	if w == nil {
		return ErrNilSink
	}
	for _, page := range b.pages {
		for _, fragment := range page.Items() {
			if _, err := w.WriteString(fragment); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteOutContext is WriteOut for sinks that accept a context. Ordering is
// identical; fragments are written one at a time.
func (b *PageBuffer) WriteOutContext(ctx context.Context, w io.StringWriter) error {
	if w == nil {
		return ErrNilSink
	}
	for _, page := range b.pages {
		for _, fragment := range page.Items() {
			if err := writeStringContext(ctx, w, fragment); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteTo implements io.WriterTo.
func (b *PageBuffer) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, page := range b.pages {
		for _, fragment := range page.Items() {
			n, err := io.WriteString(w, fragment)
			total += int64(n)
			if err != nil {
				return total, err
			}
		}
	}
	return total, nil
}

// CopyInto appends every fragment to dest. The buffer is left untouched.
func (b *PageBuffer) CopyInto(dest Builder) error {
	if dest == nil {
		return ErrNilBuilder
	}
	for _, page := range b.pages {
		for _, fragment := range page.Items() {
			if err := dest.Append(fragment); err != nil {
				return err
			}
		}
	}
	return nil
}

// MoveInto transfers the accumulated text to dest and leaves the buffer
// empty. When dest is a PageBuffer on the same allocator, sparse pages are
// merged into dest's tail page and retired, and other pages are relinked
// without copying. Any other destination receives a copy and the source pages
// are retired.
func (b *PageBuffer) MoveInto(dest Builder) error {
	if dest == nil {
		return ErrNilBuilder
	}
	target, ok := dest.(*PageBuffer)
	if ok && target == b {
		return ErrSelfMove
	}
	if !ok || target.alloc != b.alloc {
		return b.copyAndRetire(dest)
	}
	if b.alloc.Closed() {
		return ErrScopeClosed
	}

	for i, page := range b.pages {
		tail := target.current
		if tail != nil && b.isSparse(page) && tail.Available() >= page.count {
			tail.appendAll(page.Items())
			if err := b.alloc.Retire(page); err != nil {
				return err
			}
		} else {
			target.pages = append(target.pages, page)
			target.current = page
		}
		b.pages[i] = nil
	}
	b.Clear()
	return nil
}

func (b *PageBuffer) copyAndRetire(dest Builder) error {
	if err := b.CopyInto(dest); err != nil {
		return err
	}
	for _, page := range b.pages {
		if err := b.alloc.Retire(page); err != nil {
			return err
		}
	}
	b.Clear()
	return nil
}

func (b *PageBuffer) isSparse(page *Segment) bool {
	return page.count*100 <= page.Cap()*b.sparsePercent
}
