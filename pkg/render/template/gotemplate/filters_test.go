package gotemplate

import (
	"testing"

	"github.com/flosch/pongo2/v6"
)

func TestFilterLowerFirst(t *testing.T) {
	cases := map[string]string{
		"":           "",
		"Hello":      "hello",
		"  World":    "  world",
		"Élan vital": "élan vital",
		"   ":        "   ",
	}
	for in, want := range cases {
		got, perr := filterLowerFirst(pongo2.AsValue(in), nil)
		if perr != nil {
			t.Fatalf("filter %q: %v", in, perr)
		}
		if got.String() != want {
			t.Errorf("lowerfirst(%q)\nwant: %q\n got: %q", in, want, got.String())
		}
	}
}

func TestFilterTrim(t *testing.T) {
	got, perr := filterTrim(pongo2.AsValue("  padded \n"), nil)
	if perr != nil {
		t.Fatalf("filter: %v", perr)
	}
	if got.String() != "padded" {
		t.Fatalf("trim mismatch: %q", got.String())
	}
}
