package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-viewbuffer/pkg/buffer"
	"github.com/goliatone/go-viewbuffer/pkg/render"
)

// Config is the root configuration document.
type Config struct {
	Buffer  BufferConfig  `yaml:"buffer"`
	Render  RenderConfig  `yaml:"render"`
	Logging LoggingConfig `yaml:"logging"`
	Server  ServerConfig  `yaml:"server"`
}

// BufferConfig tunes pages, segments and the shared pool.
type BufferConfig struct {
	PageSize               int `yaml:"pageSize"`
	MinimumSegmentSize     int `yaml:"minimumSegmentSize"`
	SparseThresholdPercent int `yaml:"sparseThresholdPercent"`
	MaxPooledSegmentSize   int `yaml:"maxPooledSegmentSize"`
}

// RenderConfig selects templates and the encoding policy.
type RenderConfig struct {
	TemplateDir      string `yaml:"templateDir"`
	Extension        string `yaml:"extension"`
	Escape           string `yaml:"escape"`
	BatchConcurrency int    `yaml:"batchConcurrency"`
}

// LoggingConfig selects the log level (debug, info, warn or warning, error).
// An empty level means info.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ServerConfig configures the HTTP server command.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Buffer: BufferConfig{
			PageSize:               buffer.DefaultPageSize,
			MinimumSegmentSize:     buffer.DefaultMinimumSize,
			SparseThresholdPercent: buffer.DefaultSparseThreshold,
			MaxPooledSegmentSize:   buffer.DefaultMaxPooledSize,
		},
		Render: RenderConfig{
			TemplateDir:      "templates",
			Extension:        ".tpl",
			Escape:           render.EncoderHTML,
			BatchConcurrency: 4,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Address: ":8080",
		},
	}
}

// Load reads and parses the YAML file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data over Default and validates the result. Empty input
// yields the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse yaml: %w", err)
	}
	cfg.normalise()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalise() {
	c.Render.Escape = strings.ToLower(strings.TrimSpace(c.Render.Escape))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	ext := strings.TrimSpace(c.Render.Extension)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	c.Render.Extension = ext
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.Buffer.PageSize <= 0:
		return fmt.Errorf("config: buffer.pageSize must be positive, got %d", c.Buffer.PageSize)
	case c.Buffer.MinimumSegmentSize <= 0:
		return fmt.Errorf("config: buffer.minimumSegmentSize must be positive, got %d", c.Buffer.MinimumSegmentSize)
	case c.Buffer.SparseThresholdPercent < 0 || c.Buffer.SparseThresholdPercent > 100:
		return fmt.Errorf("config: buffer.sparseThresholdPercent must be within [0, 100], got %d", c.Buffer.SparseThresholdPercent)
	case c.Buffer.MaxPooledSegmentSize < c.Buffer.MinimumSegmentSize:
		return fmt.Errorf("config: buffer.maxPooledSegmentSize (%d) must be >= buffer.minimumSegmentSize (%d)", c.Buffer.MaxPooledSegmentSize, c.Buffer.MinimumSegmentSize)
	case c.Render.BatchConcurrency <= 0:
		return fmt.Errorf("config: render.batchConcurrency must be positive, got %d", c.Render.BatchConcurrency)
	}

	switch c.Render.Escape {
	case render.EncoderHTML, render.EncoderSanitize, render.EncoderNone:
	default:
		return fmt.Errorf("config: render.escape %q is not one of html, sanitize, none", c.Render.Escape)
	}

	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("config: logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	return nil
}

// PoolOptions returns the shared pool options for c.
func (c Config) PoolOptions() []buffer.PoolOption {
	return []buffer.PoolOption{buffer.WithMaxPooledSize(c.Buffer.MaxPooledSegmentSize)}
}

// ScopeOptions returns the render scope options for c, resolving the encoder
// from registry.
func (c Config) ScopeOptions(registry *render.Registry) ([]render.ScopeOption, error) {
	if registry == nil {
		registry = render.NewRegistry()
	}
	encoder, err := registry.Get(c.Render.Escape)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return []render.ScopeOption{
		render.WithPageSize(c.Buffer.PageSize),
		render.WithMinimumSegmentSize(c.Buffer.MinimumSegmentSize),
		render.WithSparseThreshold(c.Buffer.SparseThresholdPercent),
		render.WithEncoder(encoder),
	}, nil
}
