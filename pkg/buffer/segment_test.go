package buffer_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-viewbuffer/pkg/buffer"
)

func TestSegment_AppendUntilFull(t *testing.T) {
	alloc, _ := newExactAllocator(t)

	seg, err := alloc.Rent(2)
	if err != nil {
		t.Fatalf("rent: %v", err)
	}
	if seg.Cap() != 2 || seg.Len() != 0 || seg.IsFull() {
		t.Fatalf("fresh segment: cap=%d len=%d full=%v", seg.Cap(), seg.Len(), seg.IsFull())
	}

	seg.Append("a")
	if seg.IsFull() {
		t.Fatalf("segment full after one append")
	}
	if seg.Available() != 1 {
		t.Fatalf("available mismatch\nwant: 1\n got: %d", seg.Available())
	}
	seg.Append("b")
	if !seg.IsFull() {
		t.Fatalf("segment not full after two appends")
	}
	if diff := cmp.Diff([]string{"a", "b"}, seg.Items()); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}

	got, err := seg.At(1)
	if err != nil || got != "b" {
		t.Fatalf("At(1) = %q, %v", got, err)
	}
	if _, err := seg.At(2); !errors.Is(err, buffer.ErrIndexOutOfRange) {
		t.Fatalf("At(2) error\nwant: %v\n got: %v", buffer.ErrIndexOutOfRange, err)
	}
}

func TestSegment_AppendToFullPanics(t *testing.T) {
	alloc, _ := newExactAllocator(t)

	seg, err := alloc.Rent(1)
	if err != nil {
		t.Fatalf("rent: %v", err)
	}
	seg.Append("only")

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, buffer.ErrSegmentFull) {
			t.Fatalf("panic value\nwant: %v\n got: %v", buffer.ErrSegmentFull, r)
		}
	}()
	seg.Append("overflow")
}
