// Package viewbuffer wires the buffered output subsystem to a pongo2 engine
// from a single configuration document.
package viewbuffer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/goliatone/go-viewbuffer/pkg/buffer"
	"github.com/goliatone/go-viewbuffer/pkg/config"
	"github.com/goliatone/go-viewbuffer/pkg/render"
	"github.com/goliatone/go-viewbuffer/pkg/render/template/gotemplate"
)

// Engine aliases the pongo2-backed engine for callers that only import the
// root package.
type Engine = gotemplate.Engine

// Job aliases gotemplate.Job for RenderBatch callers.
type Job = gotemplate.Job

// Fragment aliases gotemplate.Fragment for Compose callers.
type Fragment = gotemplate.Fragment

// Runtime is an engine together with the shared pool it rents pages from.
type Runtime struct {
	Engine *gotemplate.Engine
	Pool   *buffer.Pool
	Config config.Config
}

// NewEngine builds a Runtime from cfg. Templates are looked up in
// cfg.Render.TemplateDir when that directory exists, then in
// EmbeddedTemplates. Extra options are applied last.
func NewEngine(cfg config.Config, logger *zap.Logger, options ...gotemplate.Option) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	scopeOpts, err := cfg.ScopeOptions(render.NewRegistry())
	if err != nil {
		return nil, err
	}
	pool := buffer.NewPool(cfg.PoolOptions()...)

	opts := []gotemplate.Option{
		gotemplate.WithFS(EmbeddedTemplates()),
		gotemplate.WithExtension(cfg.Render.Extension),
		gotemplate.WithPool(pool),
		gotemplate.WithScopeOptions(scopeOpts...),
		gotemplate.WithBatchConcurrency(cfg.Render.BatchConcurrency),
		gotemplate.WithLogger(logger),
	}

	dir, err := templateDir(cfg.Render.TemplateDir)
	if err != nil {
		return nil, err
	}
	if dir != "" {
		opts = append(opts, gotemplate.WithBaseDir(dir))
	} else {
		logger.Debug("template directory not found, using embedded templates",
			zap.String("templateDir", cfg.Render.TemplateDir))
	}
	opts = append(opts, options...)

	engine, err := gotemplate.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("viewbuffer: new engine: %w", err)
	}
	return &Runtime{Engine: engine, Pool: pool, Config: cfg}, nil
}

func templateDir(dir string) (string, error) {
	if dir == "" {
		return "", nil
	}
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("viewbuffer: stat template dir: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("viewbuffer: template dir %q is not a directory", dir)
	}
	return dir, nil
}

// TemplateFragment forwards to gotemplate.TemplateFragment.
func TemplateFragment(name string, data any) Fragment {
	return gotemplate.TemplateFragment(name, data)
}

// TextFragment forwards to gotemplate.TextFragment.
func TextFragment(value string) Fragment {
	return gotemplate.TextFragment(value)
}

// RawFragment forwards to gotemplate.RawFragment.
func RawFragment(value string) Fragment {
	return gotemplate.RawFragment(value)
}

// FlushFragment forwards to gotemplate.FlushFragment.
func FlushFragment() Fragment {
	return gotemplate.FlushFragment()
}
