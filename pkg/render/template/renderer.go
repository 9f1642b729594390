package template

import (
	"context"
	"io"

	"github.com/goliatone/go-viewbuffer/pkg/buffer"
	"github.com/goliatone/go-viewbuffer/pkg/render"
)

// TemplateRenderer is the contract callers depend on to render templates.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}

// ScopedRenderer renders into caller-owned scopes and streams to writers.
type ScopedRenderer interface {
	TemplateRenderer
	// RenderInto executes name into a new buffer on scope. The buffer can be
	// moved into another buffer of the same scope without copying.
	RenderInto(scope *render.Scope, name string, data any) (*buffer.PageBuffer, error)
	// Stream executes name and flushes the result to w.
	Stream(ctx context.Context, w io.Writer, name string, data any) error
}
