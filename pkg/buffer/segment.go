package buffer

// Segment is a fixed-capacity run of string fragments plus a fill count. The
// backing array comes from a SharedPool and is owned by whichever PageBuffer
// currently holds the segment.
type Segment struct {
	items []string
	count int
}

func newSegment(items []string) *Segment {
	return &Segment{items: items}
}

// Append stores value in the next free slot. Calling Append on a full segment
// panics with ErrSegmentFull; callers rotate to a new segment first.
func (s *Segment) Append(value string) {
	if s.count == len(s.items) {
		panic(ErrSegmentFull)
	}
	s.items[s.count] = value
	s.count++
}

// IsFull reports whether every slot is filled.
func (s *Segment) IsFull() bool {
	return s.count == len(s.items)
}

// Len returns the number of filled slots.
func (s *Segment) Len() int {
	return s.count
}

// Cap returns the number of slots.
func (s *Segment) Cap() int {
	return len(s.items)
}

// Available returns the number of free slots.
func (s *Segment) Available() int {
	return len(s.items) - s.count
}

// Items returns the filled slots. The slice aliases the segment and is only
// valid until the segment is retired.
func (s *Segment) Items() []string {
	return s.items[:s.count]
}

// At returns the fragment stored at index i.
func (s *Segment) At(i int) (string, error) {
	if i < 0 || i >= s.count {
		return "", ErrIndexOutOfRange
	}
	return s.items[i], nil
}

// appendAll copies fragments into the free tail of the backing array.
func (s *Segment) appendAll(fragments []string) {
	if len(fragments) > s.Available() {
		panic(ErrSegmentFull)
	}
	copy(s.items[s.count:], fragments)
	s.count += len(fragments)
}

// reset drops every fragment reference so pooled arrays do not pin strings.
func (s *Segment) reset() {
	clear(s.items)
	s.count = 0
}
