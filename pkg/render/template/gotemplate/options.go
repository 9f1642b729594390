package gotemplate

import (
	"io/fs"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-viewbuffer/pkg/buffer"
	"github.com/goliatone/go-viewbuffer/pkg/render"
)

const defaultBatchConcurrency = 4

// Option configures the engine before construction.
type Option func(*config)

type config struct {
	baseDir     string
	templates   fs.FS
	extension   string
	templateFn  map[string]any
	globalData  map[string]any
	pool        buffer.SharedPool
	scopeOpts   []render.ScopeOption
	logger      *zap.Logger
	concurrency int
}

// WithBaseDir configures the engine to load templates from a base directory
// on disk.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS configures the engine to load templates from an fs.FS.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithExtension overrides the default template extension.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// WithTemplateFunc registers helper functions or filters when the engine loads.
func WithTemplateFunc(funcs map[string]any) Option {
	return func(cfg *config) {
		if len(funcs) == 0 {
			return
		}
		if cfg.templateFn == nil {
			cfg.templateFn = make(map[string]any, len(funcs))
		}
		for name, fn := range funcs {
			cfg.templateFn[strings.TrimSpace(name)] = fn
		}
	}
}

// WithGlobalData seeds global context values available to every template.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		if len(data) == 0 {
			return
		}
		if cfg.globalData == nil {
			cfg.globalData = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.globalData[strings.TrimSpace(key)] = value
		}
	}
}

// WithPool sets the shared segment pool. Engines constructed without one get
// a private buffer.Pool.
func WithPool(pool buffer.SharedPool) Option {
	return func(cfg *config) {
		cfg.pool = pool
	}
}

// WithScopeOptions forwards options to every render scope the engine opens.
func WithScopeOptions(options ...render.ScopeOption) Option {
	return func(cfg *config) {
		cfg.scopeOpts = append(cfg.scopeOpts, options...)
	}
}

// WithLogger sets the logger used for render diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithBatchConcurrency caps how many scopes RenderBatch runs at once.
func WithBatchConcurrency(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.concurrency = n
		}
	}
}
