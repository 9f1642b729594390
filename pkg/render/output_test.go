package render_test

import (
	"testing"

	"github.com/goliatone/go-viewbuffer/pkg/render"
	"github.com/goliatone/go-viewbuffer/pkg/testsupport"
	"github.com/goliatone/go-viewbuffer/pkg/viewwriter"
)

func TestOutput_EncodesTextOnly(t *testing.T) {
	scope, err := render.NewScope(testsupport.NewRecordingPool())
	if err != nil {
		t.Fatalf("new scope: %v", err)
	}
	defer scope.Close()

	out, err := scope.NewOutput(nil)
	if err != nil {
		t.Fatalf("new output: %v", err)
	}

	nested, _ := scope.NewBuffer()
	_ = nested.Append("<i>nested</i>")

	if err := out.WriteRaw("<p>"); err != nil {
		t.Fatalf("write raw: %v", err)
	}
	if err := out.WriteText(`Tom & "Jerry" <3`); err != nil {
		t.Fatalf("write text: %v", err)
	}
	if err := out.WriteNested(nested); err != nil {
		t.Fatalf("write nested: %v", err)
	}
	if err := out.Write(viewwriter.Raw("</p>")); err != nil {
		t.Fatalf("write: %v", err)
	}

	want := `<p>Tom &amp; &#34;Jerry&#34; &lt;3<i>nested</i></p>`
	if got := out.String(); got != want {
		t.Fatalf("output mismatch\nwant: %s\n got: %s", want, got)
	}
}

func TestOutput_FlushStreamsDownstream(t *testing.T) {
	scope, _ := render.NewScope(testsupport.NewRecordingPool())
	defer scope.Close()

	down := &testsupport.FlushRecorder{}
	out, err := scope.NewOutput(down)
	if err != nil {
		t.Fatalf("new output: %v", err)
	}
	_ = out.WriteRaw("<head>")
	if err := out.FlushContext(testsupport.Context()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	_ = out.WriteText("a<b")

	if down.String() != "<head>a&lt;b" {
		t.Fatalf("downstream mismatch: %q", down.String())
	}
	if out.Writer().Mode() != viewwriter.ModePassThrough {
		t.Fatalf("mode mismatch: %v", out.Writer().Mode())
	}
}

func TestNewOutput_RequiresWriter(t *testing.T) {
	if _, err := render.NewOutput(nil, nil); err == nil {
		t.Fatalf("expected error for nil writer")
	}
}
