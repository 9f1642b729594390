package gotemplate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/flosch/pongo2/v6"
	"go.uber.org/zap"

	"github.com/goliatone/go-viewbuffer/pkg/buffer"
	"github.com/goliatone/go-viewbuffer/pkg/render"
	"github.com/goliatone/go-viewbuffer/pkg/render/template"
	"github.com/goliatone/go-viewbuffer/pkg/viewwriter"
)

// Engine executes pongo2 templates into render scopes. Output is accumulated
// in pooled pages and copied out, streamed, or moved into a parent buffer.
type Engine struct {
	mu sync.RWMutex

	templateSet *pongo2.TemplateSet
	templates   map[string]*pongo2.Template
	tplExt      string

	pool        buffer.SharedPool
	scopeOpts   []render.ScopeOption
	logger      *zap.Logger
	concurrency int
}

var _ template.ScopedRenderer = (*Engine)(nil)

// New constructs an Engine using the provided configuration options.
func New(options ...Option) (*Engine, error) {
	cfg := &config{
		extension:   ".tpl",
		concurrency: defaultBatchConcurrency,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	if cfg.baseDir == "" && cfg.templates == nil {
		return nil, errors.New("gotemplate: need to provide either base dir or fs.FS")
	}

	var loaders []pongo2.TemplateLoader
	if cfg.baseDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("gotemplate: create local loader: %w", err)
		}
		loaders = append(loaders, loader)
	}
	if cfg.templates != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.templates))
	}

	if cfg.pool == nil {
		cfg.pool = buffer.NewPool()
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	engine := &Engine{
		templateSet: pongo2.NewSet("viewbuffer", loaders...),
		templates:   make(map[string]*pongo2.Template),
		tplExt:      cfg.extension,
		pool:        cfg.pool,
		scopeOpts:   cfg.scopeOpts,
		logger:      cfg.logger,
		concurrency: cfg.concurrency,
	}
	registerDefaultFilters()

	if err := engine.GlobalContext(cfg.globalData); err != nil {
		return nil, fmt.Errorf("gotemplate: apply global data: %w", err)
	}
	for name, fn := range cfg.templateFn {
		if err := engine.registerTemplateFunc(name, fn); err != nil {
			return nil, fmt.Errorf("gotemplate: register template func %q: %w", name, err)
		}
	}

	return engine, nil
}

// Pool returns the shared segment pool scopes rent from.
func (e *Engine) Pool() buffer.SharedPool {
	return e.pool
}

// NewScope opens a render scope configured like the engine's own scopes.
// The caller closes it.
func (e *Engine) NewScope() (*render.Scope, error) {
	return render.NewScope(e.pool, e.scopeOpts...)
}

// Render treats name as inline template content when it contains template
// delimiters and as a template path otherwise.
func (e *Engine) Render(name string, data any, out ...io.Writer) (string, error) {
	if isTemplateContent(name) {
		return e.RenderString(name, data, out...)
	}
	return e.RenderTemplate(name, data, out...)
}

// RenderTemplate executes the named template and returns the result, also
// writing it to every out writer.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.templateSet == nil {
		return "", errors.New("gotemplate: engine is nil")
	}
	tmpl, path, err := e.lookup(name)
	if err != nil {
		return "", err
	}
	return e.renderToString(tmpl, path, data, out)
}

// RenderString parses templateContent and executes it like RenderTemplate.
func (e *Engine) RenderString(templateContent string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.templateSet == nil {
		return "", errors.New("gotemplate: engine is nil")
	}
	tmpl, err := e.templateSet.FromString(templateContent)
	if err != nil {
		return "", fmt.Errorf("gotemplate: parse template string: %w", err)
	}
	return e.renderToString(tmpl, "<string>", data, out)
}

func (e *Engine) renderToString(tmpl *pongo2.Template, path string, data any, out []io.Writer) (string, error) {
	viewContext, err := convertToContext(data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: convert data: %w", err)
	}

	var rendered string
	err = render.Run(e.pool, func(scope *render.Scope) error {
		w, err := e.execute(scope, tmpl, path, viewContext, nil)
		if err != nil {
			return err
		}
		buf := w.Buffer()
		rendered = buf.String()
		for _, dst := range out {
			if dst == nil {
				continue
			}
			if _, err := io.WriteString(dst, rendered); err != nil {
				return err
			}
		}
		return nil
	}, e.scopeOpts...)
	if err != nil {
		return "", err
	}
	return rendered, nil
}

// RenderInto executes the named template into a new buffer owned by scope.
func (e *Engine) RenderInto(scope *render.Scope, name string, data any) (*buffer.PageBuffer, error) {
	if scope == nil {
		return nil, errors.New("gotemplate: scope is required")
	}
	tmpl, path, err := e.lookup(name)
	if err != nil {
		return nil, err
	}
	viewContext, err := convertToContext(data)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: convert data: %w", err)
	}
	w, err := e.execute(scope, tmpl, path, viewContext, nil)
	if err != nil {
		return nil, err
	}
	return w.Buffer(), nil
}

// Stream executes the named template and flushes it to w, leaving the
// writer in pass-through mode.
func (e *Engine) Stream(ctx context.Context, w io.Writer, name string, data any) error {
	if w == nil {
		return errors.New("gotemplate: stream writer is required")
	}
	tmpl, path, err := e.lookup(name)
	if err != nil {
		return err
	}
	viewContext, err := convertToContext(data)
	if err != nil {
		return fmt.Errorf("gotemplate: convert data: %w", err)
	}
	return render.Run(e.pool, func(scope *render.Scope) error {
		vw, err := e.execute(scope, tmpl, path, viewContext, w)
		if err != nil {
			return err
		}
		if err := vw.FlushContext(ctx); err != nil {
			return fmt.Errorf("gotemplate: flush %q: %w", path, err)
		}
		return nil
	}, e.scopeOpts...)
}

func (e *Engine) execute(scope *render.Scope, tmpl *pongo2.Template, path string, viewContext pongo2.Context, downstream io.Writer) (*viewwriter.Writer, error) {
	w, err := scope.NewWriter(downstream)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: open writer: %w", err)
	}

	start := time.Now()
	e.mu.RLock()
	err = tmpl.ExecuteWriterUnbuffered(viewContext, w)
	e.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("gotemplate: execute template %q: %w", path, err)
	}

	if ce := e.logger.Check(zap.DebugLevel, "rendered template"); ce != nil {
		ce.Write(
			zap.String("template", path),
			zap.Int("pages", w.Buffer().PageCount()),
			zap.Int("fragments", w.Buffer().Len()),
			zap.Int("rents", scope.Allocator().Rents()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
	return w, nil
}

// RegisterFilter registers a template filter with pongo2.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	if strings.TrimSpace(name) == "" || fn == nil {
		return errors.New("gotemplate: filter name and function required")
	}

	filter := func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var paramVal any
		if param != nil {
			paramVal = param.Interface()
		}
		result, err := fn(in.Interface(), paramVal)
		if err != nil {
			return nil, &pongo2.Error{Sender: "custom_filter", OrigError: err}
		}
		return pongo2.AsValue(result), nil
	}

	if pongo2.FilterExists(name) {
		return fmt.Errorf("gotemplate: filter %q already exists", name)
	}
	return pongo2.RegisterFilter(name, filter)
}

// GlobalContext merges data into the globals visible to every template.
func (e *Engine) GlobalContext(data any) error {
	if e == nil || e.templateSet == nil {
		return errors.New("gotemplate: engine is nil")
	}
	if data == nil {
		return nil
	}

	globalCtx, err := convertToContext(data)
	if err != nil {
		return fmt.Errorf("gotemplate: global context: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.templateSet.Globals == nil {
		e.templateSet.Globals = make(pongo2.Context)
	}
	e.templateSet.Globals.Update(globalCtx)
	return nil
}

func (e *Engine) registerTemplateFunc(name string, fn any) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || fn == nil {
		return nil
	}

	if filter, ok := fn.(pongo2.FilterFunction); ok {
		if pongo2.FilterExists(trimmed) {
			return nil
		}
		return pongo2.RegisterFilter(trimmed, filter)
	}

	if !isCallable(fn) {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.templateSet.Globals == nil {
		e.templateSet.Globals = make(pongo2.Context)
	}
	e.templateSet.Globals[trimmed] = fn
	return nil
}

func (e *Engine) lookup(name string) (*pongo2.Template, string, error) {
	if e == nil || e.templateSet == nil {
		return nil, "", errors.New("gotemplate: engine is nil")
	}
	path := name
	if !strings.HasSuffix(path, e.tplExt) {
		path += e.tplExt
	}
	tmpl, err := e.getTemplate(path)
	if err != nil {
		return nil, "", err
	}
	return tmpl, path, nil
}

func (e *Engine) getTemplate(path string) (*pongo2.Template, error) {
	e.mu.RLock()
	if tmpl, ok := e.templates[path]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if tmpl, ok := e.templates[path]; ok {
		return tmpl, nil
	}

	tmpl, err := e.templateSet.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: load template %q: %w", path, err)
	}

	e.templates[path] = tmpl
	return tmpl, nil
}

func isTemplateContent(s string) bool {
	return strings.Contains(s, "{{") || strings.Contains(s, "{%")
}

func isCallable(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.IsValid() && rv.Kind() == reflect.Func
}
