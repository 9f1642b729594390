package render

import (
	"github.com/goliatone/go-viewbuffer/pkg/buffer"
	"github.com/goliatone/go-viewbuffer/pkg/viewwriter"
)

// ScopeOption configures a Scope.
type ScopeOption func(*scopeConfig)

type scopeConfig struct {
	pageSize        int
	minimumSize     int
	sparseThreshold int
	scratch         viewwriter.ScratchPool
	encoder         Encoder
}

func defaultScopeConfig() scopeConfig {
	return scopeConfig{
		pageSize:        buffer.DefaultPageSize,
		minimumSize:     buffer.DefaultMinimumSize,
		sparseThreshold: buffer.DefaultSparseThreshold,
		encoder:         HTMLEncoder{},
	}
}

// WithPageSize sets the number of fragments per page.
func WithPageSize(size int) ScopeOption {
	return func(cfg *scopeConfig) {
		if size > 0 {
			cfg.pageSize = size
		}
	}
}

// WithMinimumSegmentSize sets the allocator's minimum segment capacity.
func WithMinimumSegmentSize(size int) ScopeOption {
	return func(cfg *scopeConfig) {
		if size > 0 {
			cfg.minimumSize = size
		}
	}
}

// WithSparseThreshold sets the fill percentage below which moved pages are
// merged into the destination's tail page.
func WithSparseThreshold(percent int) ScopeOption {
	return func(cfg *scopeConfig) {
		if percent >= 0 && percent <= 100 {
			cfg.sparseThreshold = percent
		}
	}
}

// WithScratchPool sets the scratch pool used by pass-through writers.
func WithScratchPool(pool viewwriter.ScratchPool) ScopeOption {
	return func(cfg *scopeConfig) {
		cfg.scratch = pool
	}
}

// WithEncoder sets the encoder applied to Text values written via Output.
func WithEncoder(encoder Encoder) ScopeOption {
	return func(cfg *scopeConfig) {
		if encoder != nil {
			cfg.encoder = encoder
		}
	}
}
