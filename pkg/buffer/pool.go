package buffer

import (
	"math/bits"
	"sync"
	"sync/atomic"
)

const (
	// DefaultMaxPooledSize is the largest array length kept by Pool. Larger
	// requests are served with a fresh array that is dropped on return.
	DefaultMaxPooledSize = 4096

	minPoolClass = 16
)

// SharedPool is the process-level source of segment arrays. Implementations
// must be safe for concurrent Rent and Return from independent scopes.
type SharedPool interface {
	// Rent returns an array whose length is at least size. Implementations may
	// return a non-nil array together with an error; callers hand it back.
	Rent(size int) ([]string, error)
	// Return hands an array back to the pool, zeroing it first when clear is set.
	Return(items []string, clear bool)
}

// PoolStats reports Pool operation counts.
type PoolStats struct {
	Rents    uint64
	Returns  uint64
	Misses   uint64
	Discards uint64
}

// PoolOption configures a Pool.
type PoolOption func(*poolConfig)

type poolConfig struct {
	maxPooledSize int
}

// WithMaxPooledSize caps the array length retained by the pool. Values below
// the smallest size class are ignored.
func WithMaxPooledSize(size int) PoolOption {
	return func(cfg *poolConfig) {
		if size < minPoolClass {
			return
		}
		cfg.maxPooledSize = size
	}
}

// Pool is the default SharedPool, bucketing arrays into power-of-two size
// classes backed by sync.Pool.
type Pool struct {
	classes []sync.Pool
	maxSize int

	rents    atomic.Uint64
	returns  atomic.Uint64
	misses   atomic.Uint64
	discards atomic.Uint64
}

var _ SharedPool = (*Pool)(nil)

// NewPool constructs a Pool.
func NewPool(options ...PoolOption) *Pool {
	cfg := poolConfig{maxPooledSize: DefaultMaxPooledSize}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	maxClass := classSize(cfg.maxPooledSize)
	if maxClass > cfg.maxPooledSize {
		maxClass >>= 1
	}

	p := &Pool{
		classes: make([]sync.Pool, classIndex(maxClass)+1),
		maxSize: maxClass,
	}
	for i := range p.classes {
		size := minPoolClass << i
		p.classes[i].New = func() any {
			p.misses.Add(1)
			items := make([]string, size)
			return &items
		}
	}
	return p
}

// Rent implements SharedPool.
func (p *Pool) Rent(size int) ([]string, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	p.rents.Add(1)

	class := classSize(size)
	if class > p.maxSize {
		p.misses.Add(1)
		return make([]string, size), nil
	}
	items := p.classes[classIndex(class)].Get().(*[]string)
	return *items, nil
}

// Return implements SharedPool.
func (p *Pool) Return(items []string, clearItems bool) {
	if items == nil {
		return
	}
	p.returns.Add(1)

	size := len(items)
	if size < minPoolClass || size > p.maxSize || size&(size-1) != 0 {
		p.discards.Add(1)
		return
	}
	if clearItems {
		clear(items)
	}
	p.classes[classIndex(size)].Put(&items)
}

// Stats returns a snapshot of the operation counters.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Rents:    p.rents.Load(),
		Returns:  p.returns.Load(),
		Misses:   p.misses.Load(),
		Discards: p.discards.Load(),
	}
}

// classSize rounds size up to the next power of two, never below minPoolClass.
func classSize(size int) int {
	if size <= minPoolClass {
		return minPoolClass
	}
	return 1 << bits.Len(uint(size-1))
}

func classIndex(class int) int {
	return bits.Len(uint(class)) - bits.Len(uint(minPoolClass))
}
