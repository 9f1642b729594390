package viewwriter

import (
	"context"
	"io"
	"sync"
)

const defaultScratchSize = 4 << 10

// ScratchPool supplies byte scratch space for adapting string writes onto a
// plain io.Writer.
type ScratchPool interface {
	Get() *[]byte
	Put(*[]byte)
}

type scratchPool struct {
	pool sync.Pool
	size int
}

// NewScratchPool returns a ScratchPool of size-byte buffers.
func NewScratchPool(size int) ScratchPool {
	if size <= 0 {
		size = defaultScratchSize
	}
	p := &scratchPool{size: size}
	p.pool.New = func() any {
		buf := make([]byte, size)
		return &buf
	}
	return p
}

func (p *scratchPool) Get() *[]byte {
	return p.pool.Get().(*[]byte)
}

func (p *scratchPool) Put(buf *[]byte) {
	if buf == nil || cap(*buf) != p.size {
		return
	}
	*buf = (*buf)[:p.size]
	p.pool.Put(buf)
}

var defaultScratch = NewScratchPool(defaultScratchSize)

// StringSink adapts an io.Writer to io.StringWriter. Writers that already
// implement io.StringWriter are used directly; otherwise strings are copied
// through pooled scratch space in chunks.
type StringSink struct {
	w       io.Writer
	sw      io.StringWriter
	scratch ScratchPool
}

// NewStringSink constructs a StringSink over w. A nil scratch pool selects the
// package default.
func NewStringSink(w io.Writer, scratch ScratchPool) (*StringSink, error) {
	if w == nil {
		return nil, ErrNilWriter
	}
	if scratch == nil {
		scratch = defaultScratch
	}
	s := &StringSink{w: w, scratch: scratch}
	if sw, ok := w.(io.StringWriter); ok {
		s.sw = sw
	}
	return s, nil
}

// WriteString implements io.StringWriter.
func (s *StringSink) WriteString(str string) (int, error) {
	if s.sw != nil {
		return s.sw.WriteString(str)
	}

	bufPtr := s.scratch.Get()
	defer s.scratch.Put(bufPtr)
	buf := *bufPtr
	if len(buf) == 0 {
		buf = make([]byte, defaultScratchSize)
	}

	written := 0
	for len(str) > 0 {
		n := copy(buf, str)
		m, err := s.w.Write(buf[:n])
		written += m
		if err != nil {
			return written, err
		}
		str = str[n:]
	}
	return written, nil
}

// WriteStringContext forwards to the wrapped writer's context-aware write
// when it has one.
func (s *StringSink) WriteStringContext(ctx context.Context, str string) (int, error) {
	if cw, ok := s.w.(interface {
		WriteStringContext(context.Context, string) (int, error)
	}); ok {
		return cw.WriteStringContext(ctx, str)
	}
	return s.WriteString(str)
}

// Write implements io.Writer.
func (s *StringSink) Write(p []byte) (int, error) {
	return s.w.Write(p)
}
