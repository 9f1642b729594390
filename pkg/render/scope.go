package render

import (
	"errors"
	"fmt"
	"io"

	"github.com/goliatone/go-viewbuffer/pkg/buffer"
	"github.com/goliatone/go-viewbuffer/pkg/viewwriter"
)

// Scope is the lifetime of one render. Every buffer and writer it creates
// rents pages from the same allocator, which Close releases back to the
// shared pool. A Scope must not be used from more than one goroutine.
type Scope struct {
	alloc *buffer.Allocator
	cfg   scopeConfig
}

// NewScope opens a scope over pool.
func NewScope(pool buffer.SharedPool, options ...ScopeOption) (*Scope, error) {
	cfg := defaultScopeConfig()
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	alloc, err := buffer.NewAllocator(pool, buffer.WithMinimumSize(cfg.minimumSize))
	if err != nil {
		return nil, fmt.Errorf("render: new scope: %w", err)
	}
	return &Scope{alloc: alloc, cfg: cfg}, nil
}

// Run opens a scope, calls fn and closes the scope on every exit path,
// including a panic in fn.
func Run(pool buffer.SharedPool, fn func(*Scope) error, options ...ScopeOption) (err error) {
	scope, err := NewScope(pool, options...)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, scope.Close())
	}()
	return fn(scope)
}

// Allocator returns the scope's allocator.
func (s *Scope) Allocator() *buffer.Allocator {
	return s.alloc
}

// Encoder returns the encoder used for Text values.
func (s *Scope) Encoder() Encoder {
	return s.cfg.encoder
}

// NewBuffer returns an empty PageBuffer on the scope's allocator.
func (s *Scope) NewBuffer() (*buffer.PageBuffer, error) {
	if s.alloc.Closed() {
		return nil, buffer.ErrScopeClosed
	}
	return buffer.NewPageBuffer(s.alloc, s.cfg.pageSize, buffer.WithSparseThreshold(s.cfg.sparseThreshold))
}

// NewWriter returns a buffering Writer with its own PageBuffer. downstream
// may be nil.
func (s *Scope) NewWriter(downstream io.Writer) (*viewwriter.Writer, error) {
	buf, err := s.NewBuffer()
	if err != nil {
		return nil, err
	}
	return viewwriter.New(buf, downstream, viewwriter.WithScratchPool(s.cfg.scratch))
}

// NewOutput returns an Output over a new Writer.
func (s *Scope) NewOutput(downstream io.Writer) (*Output, error) {
	w, err := s.NewWriter(downstream)
	if err != nil {
		return nil, err
	}
	return &Output{writer: w, encoder: s.cfg.encoder}, nil
}

// Close releases the scope's pages. It is safe to call more than once.
func (s *Scope) Close() error {
	return s.alloc.Close()
}
