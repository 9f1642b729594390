package testsupport

import (
	"sync"

	"github.com/goliatone/go-viewbuffer/pkg/buffer"
)

// RecordingPool is a buffer.SharedPool that rents arrays of exactly the
// requested size and tracks every array by identity, so tests can assert
// that each rented array comes back exactly once.
type RecordingPool struct {
	mu sync.Mutex

	outstanding map[*string]struct{}
	rents       int
	returns     int
	doubles     int
	uncleared   int

	// RentErr, when set, fails every Rent.
	RentErr error
	// ArrayWithErr makes a failing Rent also hand back an array, as a pool
	// that fails after acquiring memory would.
	ArrayWithErr bool
}

var _ buffer.SharedPool = (*RecordingPool)(nil)

// NewRecordingPool returns an empty RecordingPool.
func NewRecordingPool() *RecordingPool {
	return &RecordingPool{outstanding: make(map[*string]struct{})}
}

// Rent implements buffer.SharedPool.
func (p *RecordingPool) Rent(size int) ([]string, error) {
	if size <= 0 {
		return nil, buffer.ErrInvalidSize
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.RentErr != nil && !p.ArrayWithErr {
		return nil, p.RentErr
	}
	items := make([]string, size)
	p.outstanding[&items[0]] = struct{}{}
	p.rents++
	return items, p.RentErr
}

// Return implements buffer.SharedPool.
func (p *RecordingPool) Return(items []string, clearItems bool) {
	if len(items) == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	key := &items[0]
	if _, ok := p.outstanding[key]; !ok {
		p.doubles++
		return
	}
	delete(p.outstanding, key)
	p.returns++
	if !clearItems {
		p.uncleared++
		return
	}
	clear(items)
}

// Rents returns the number of arrays handed out.
func (p *RecordingPool) Rents() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rents
}

// Returns returns the number of arrays handed back.
func (p *RecordingPool) Returns() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.returns
}

// Outstanding returns the number of arrays rented and not yet returned.
func (p *RecordingPool) Outstanding() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.outstanding)
}

// DoubleReturns counts returns of arrays that were not outstanding.
func (p *RecordingPool) DoubleReturns() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doubles
}

// Uncleared counts returns made without requesting a clear.
func (p *RecordingPool) Uncleared() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.uncleared
}

// Stats reports the counters in buffer.PoolStats form.
func (p *RecordingPool) Stats() buffer.PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return buffer.PoolStats{
		Rents:   uint64(p.rents),
		Returns: uint64(p.returns),
	}
}
