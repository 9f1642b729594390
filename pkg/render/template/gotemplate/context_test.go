package gotemplate

import (
	"testing"

	"github.com/flosch/pongo2/v6"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-viewbuffer/pkg/buffer"
	"github.com/goliatone/go-viewbuffer/pkg/testsupport"
	"github.com/goliatone/go-viewbuffer/pkg/viewwriter"
)

type pageData struct {
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

func TestConvertToContext_Struct(t *testing.T) {
	ctx, err := convertToContext(pageData{Title: "Docs", Tags: []string{"a", "b"}})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	want := pongo2.Context{"title": "Docs", "tags": []any{"a", "b"}}
	if diff := cmp.Diff(want, ctx); diff != "" {
		t.Fatalf("context mismatch (-want +got):\n%s", diff)
	}
}

func TestConvertToContext_SkipsBlankKeys(t *testing.T) {
	ctx, err := convertToContext(map[string]any{" name ": "Ada", "  ": "dropped"})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if diff := cmp.Diff(pongo2.Context{"name": "Ada"}, ctx); diff != "" {
		t.Fatalf("context mismatch (-want +got):\n%s", diff)
	}
}

func TestContextValue_MarksRenderedContentSafe(t *testing.T) {
	alloc, err := buffer.NewAllocator(testsupport.NewRecordingPool())
	if err != nil {
		t.Fatalf("new allocator: %v", err)
	}
	defer alloc.Close()
	buf, _ := buffer.NewPageBuffer(alloc, 4)
	_ = buf.Append("<b>")
	_ = buf.Append("bold</b>")

	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "raw", in: viewwriter.Raw("<i>"), want: "<i>"},
		{name: "buffer", in: buf, want: "<b>bold</b>"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := contextValue(tc.in)
			if err != nil {
				t.Fatalf("convert: %v", err)
			}
			v, ok := got.(*pongo2.Value)
			if !ok {
				t.Fatalf("expected *pongo2.Value, got %T", got)
			}
			if v.String() != tc.want {
				t.Fatalf("value mismatch\nwant: %q\n got: %q", tc.want, v.String())
			}
		})
	}

	text, err := contextValue(viewwriter.Text("<i>"))
	if err != nil {
		t.Fatalf("convert text: %v", err)
	}
	if text != "<i>" {
		t.Fatalf("text should convert to a plain string, got %#v", text)
	}
}

func TestContextValue_KeepsCallables(t *testing.T) {
	fn := func() string { return "x" }
	got, err := contextValue(fn)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if _, ok := got.(func() string); !ok {
		t.Fatalf("callable lost: %T", got)
	}
}

func TestConvertToContext_RejectsNonObjectData(t *testing.T) {
	if _, err := convertToContext([]string{"a"}); err == nil {
		t.Fatalf("expected error for list data")
	}
}
