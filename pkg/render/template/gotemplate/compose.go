package gotemplate

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/goliatone/go-viewbuffer/pkg/render"
)

type fragmentKind uint8

const (
	fragmentTemplate fragmentKind = iota + 1
	fragmentText
	fragmentRaw
	fragmentFlush
)

// Fragment is one piece of a composed page.
type Fragment struct {
	kind  fragmentKind
	name  string
	data  any
	value string
}

// TemplateFragment renders name with data as a nested render whose output is
// moved into the page.
func TemplateFragment(name string, data any) Fragment {
	return Fragment{kind: fragmentTemplate, name: name, data: data}
}

// TextFragment writes value through the scope encoder.
func TextFragment(value string) Fragment {
	return Fragment{kind: fragmentText, value: value}
}

// RawFragment writes value as-is.
func RawFragment(value string) Fragment {
	return Fragment{kind: fragmentRaw, value: value}
}

// FlushFragment flushes everything composed so far to the destination. Later
// fragments are written straight through.
func FlushFragment() Fragment {
	return Fragment{kind: fragmentFlush}
}

// Compose renders fragments in order into one page written to w. Template
// fragments are rendered into child buffers of the same scope and moved into
// the page, so their pages are relinked or merged rather than copied.
func (e *Engine) Compose(ctx context.Context, w io.Writer, fragments ...Fragment) error {
	if w == nil {
		return errors.New("gotemplate: compose writer is required")
	}
	return render.Run(e.pool, func(scope *render.Scope) error {
		out, err := scope.NewOutput(w)
		if err != nil {
			return fmt.Errorf("gotemplate: open output: %w", err)
		}
		for i, fragment := range fragments {
			if err := e.composeFragment(ctx, scope, out, fragment); err != nil {
				return fmt.Errorf("gotemplate: compose fragment %d: %w", i, err)
			}
		}
		return out.FlushContext(ctx)
	}, e.scopeOpts...)
}

func (e *Engine) composeFragment(ctx context.Context, scope *render.Scope, out *render.Output, fragment Fragment) error {
	switch fragment.kind {
	case fragmentTemplate:
		child, err := e.RenderInto(scope, fragment.name, fragment.data)
		if err != nil {
			return err
		}
		return out.WriteNested(child)
	case fragmentText:
		return out.WriteText(fragment.value)
	case fragmentRaw:
		return out.WriteRaw(fragment.value)
	case fragmentFlush:
		return out.FlushContext(ctx)
	default:
		return fmt.Errorf("unknown fragment kind %d", fragment.kind)
	}
}
