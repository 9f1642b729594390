package buffer_test

import (
	"context"
	"io"
	"testing"

	"github.com/goliatone/go-viewbuffer/pkg/buffer"
	"github.com/goliatone/go-viewbuffer/pkg/testsupport"
)

// newExactAllocator returns an allocator whose segments are exactly the
// requested size, so page sizes below the default minimum can be exercised.
func newExactAllocator(t *testing.T) (*buffer.Allocator, *testsupport.RecordingPool) {
	t.Helper()

	pool := testsupport.NewRecordingPool()
	alloc, err := buffer.NewAllocator(pool, buffer.WithMinimumSize(1))
	if err != nil {
		t.Fatalf("new allocator: %v", err)
	}
	t.Cleanup(func() { _ = alloc.Close() })
	return alloc, pool
}

func newBuffer(t *testing.T, alloc *buffer.Allocator, pageSize int, values ...string) *buffer.PageBuffer {
	t.Helper()

	buf, err := buffer.NewPageBuffer(alloc, pageSize)
	if err != nil {
		t.Fatalf("new page buffer: %v", err)
	}
	for _, v := range values {
		if err := buf.Append(v); err != nil {
			t.Fatalf("append %q: %v", v, err)
		}
	}
	return buf
}

func pageItems(t *testing.T, buf *buffer.PageBuffer) [][]string {
	t.Helper()

	out := make([][]string, 0, buf.PageCount())
	for i := 0; i < buf.PageCount(); i++ {
		page, err := buf.PageAt(i)
		if err != nil {
			t.Fatalf("page %d: %v", i, err)
		}
		out = append(out, append([]string(nil), page.Items()...))
	}
	return out
}

// sliceBuilder is a buffer.Builder that is not a PageBuffer.
type sliceBuilder struct {
	values []string
}

var _ buffer.Builder = (*sliceBuilder)(nil)

func (s *sliceBuilder) Append(value string) error {
	if value != "" {
		s.values = append(s.values, value)
	}
	return nil
}

func (s *sliceBuilder) Clear() { s.values = nil }

func (s *sliceBuilder) WriteOut(w io.StringWriter) error {
	for _, v := range s.values {
		if _, err := w.WriteString(v); err != nil {
			return err
		}
	}
	return nil
}

func (s *sliceBuilder) WriteOutContext(_ context.Context, w io.StringWriter) error {
	return s.WriteOut(w)
}

func (s *sliceBuilder) CopyInto(dest buffer.Builder) error {
	for _, v := range s.values {
		if err := dest.Append(v); err != nil {
			return err
		}
	}
	return nil
}

func (s *sliceBuilder) MoveInto(dest buffer.Builder) error {
	if err := s.CopyInto(dest); err != nil {
		return err
	}
	s.Clear()
	return nil
}
