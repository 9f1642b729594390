package gotemplate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-viewbuffer/pkg/buffer"
	"github.com/goliatone/go-viewbuffer/pkg/viewwriter"
)

// convertToContext turns render data into a pongo2 context. Maps are used as
// they are; anything else is encoded to JSON and must decode to an object, so
// templates see the same keys as API payloads.
func convertToContext(data any) (pongo2.Context, error) {
	var root map[string]any
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		root = v
	case map[string]any:
		root = v
	default:
		decoded, err := roundTrip(v)
		if err != nil {
			return nil, err
		}
		m, ok := decoded.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("data must encode to an object, got %T", decoded)
		}
		root = m
	}

	ctx := make(pongo2.Context, len(root))
	for key, value := range root {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		converted, err := contextValue(value)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		ctx[key] = converted
	}
	return ctx, nil
}

// contextValue marks Raw content and rendered buffers safe so autoescaping
// leaves them alone. Text becomes a plain string and is escaped like any
// other value.
func contextValue(value any) (any, error) {
	switch v := value.(type) {
	case nil, string, bool, int, int64, float64, *pongo2.Value:
		return v, nil
	case viewwriter.Raw:
		return pongo2.AsSafeValue(string(v)), nil
	case viewwriter.Text:
		return string(v), nil
	case *buffer.PageBuffer:
		return pongo2.AsSafeValue(v.String()), nil
	case pongo2.Context:
		return contextMap(v)
	case map[string]any:
		return contextMap(v)
	case []any:
		return contextList(v)
	}
	if isCallable(value) {
		return value, nil
	}

	decoded, err := roundTrip(value)
	if err != nil {
		return nil, err
	}
	return contextValue(decoded)
}

func contextMap(in map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(in))
	for key, value := range in {
		converted, err := contextValue(value)
		if err != nil {
			return nil, err
		}
		out[key] = converted
	}
	return out, nil
}

func contextList(in []any) ([]any, error) {
	out := make([]any, len(in))
	for i, value := range in {
		converted, err := contextValue(value)
		if err != nil {
			return nil, err
		}
		out[i] = converted
	}
	return out, nil
}

// roundTrip decodes the JSON encoding of v into maps, slices and scalars.
func roundTrip(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
