package config_test

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-viewbuffer/pkg/config"
	"github.com/goliatone/go-viewbuffer/pkg/observability"
	"github.com/goliatone/go-viewbuffer/pkg/render"
	"github.com/goliatone/go-viewbuffer/pkg/testsupport"
)

func TestParse_EmptyYieldsDefaults(t *testing.T) {
	for _, input := range []string{"", "  \n\t"} {
		cfg, err := config.Parse([]byte(input))
		if err != nil {
			t.Fatalf("parse %q: %v", input, err)
		}
		if diff := cmp.Diff(config.Default(), cfg); diff != "" {
			t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join("testdata", "viewbuffer.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := config.Default()
	want.Buffer.PageSize = 64
	want.Buffer.SparseThresholdPercent = 25
	want.Render.TemplateDir = "views"
	want.Render.Extension = ".html"
	want.Render.Escape = render.EncoderSanitize
	want.Logging.Level = "debug"

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestParse_RejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "page size", input: "buffer:\n  pageSize: 0\n", want: "buffer.pageSize"},
		{name: "minimum size", input: "buffer:\n  minimumSegmentSize: -1\n", want: "buffer.minimumSegmentSize"},
		{name: "threshold", input: "buffer:\n  sparseThresholdPercent: 101\n", want: "sparseThresholdPercent"},
		{name: "pooled size", input: "buffer:\n  minimumSegmentSize: 64\n  maxPooledSegmentSize: 32\n", want: "maxPooledSegmentSize"},
		{name: "concurrency", input: "render:\n  batchConcurrency: 0\n", want: "batchConcurrency"},
		{name: "escape", input: "render:\n  escape: markdown\n", want: "render.escape"},
		{name: "level", input: "logging:\n  level: trace\n", want: "logging.level"},
		{name: "yaml", input: "buffer: [", want: "parse yaml"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tc.input))
			if err == nil {
				t.Fatalf("expected error containing %q", tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error mismatch\nwant substring: %q\n got: %v", tc.want, err)
			}
		})
	}
}

func TestParse_AcceptsLoggerLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "warning", "WARNING", "error"} {
		t.Run(level, func(t *testing.T) {
			cfg, err := config.Parse([]byte("logging:\n  level: " + level + "\n"))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if _, err := observability.NewLogger(cfg.Logging.Level); err != nil {
				t.Fatalf("logger rejected level %q: %v", cfg.Logging.Level, err)
			}
		})
	}
}

func TestConfig_ScopeOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Render.Escape = render.EncoderNone
	cfg.Buffer.PageSize = 2
	cfg.Buffer.MinimumSegmentSize = 1

	opts, err := cfg.ScopeOptions(nil)
	if err != nil {
		t.Fatalf("scope options: %v", err)
	}

	pool := testsupport.NewRecordingPool()
	scope, err := render.NewScope(pool, opts...)
	if err != nil {
		t.Fatalf("new scope: %v", err)
	}
	defer scope.Close()

	if scope.Encoder().Name() != render.EncoderNone {
		t.Fatalf("encoder mismatch: %s", scope.Encoder().Name())
	}
	buf, _ := scope.NewBuffer()
	for _, s := range []string{"a", "b", "c"} {
		_ = buf.Append(s)
	}
	if buf.PageCount() != 2 {
		t.Fatalf("page size not applied: %d pages", buf.PageCount())
	}

	cfg.Render.Escape = "unknown"
	if _, err := cfg.ScopeOptions(render.NewRegistry()); err == nil {
		t.Fatalf("expected unknown encoder error")
	}
}
