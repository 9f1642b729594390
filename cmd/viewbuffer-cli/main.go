package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-viewbuffer"
	"github.com/goliatone/go-viewbuffer/pkg/config"
	"github.com/goliatone/go-viewbuffer/pkg/observability"
)

var errAborted = errors.New("viewbuffer-cli: aborted")

type varFlags map[string]string

func (v varFlags) String() string {
	pairs := make([]string, 0, len(v))
	for key, value := range v {
		pairs = append(pairs, key+"="+value)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}

func (v varFlags) Set(raw string) error {
	key, value, ok := strings.Cut(raw, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", raw)
	}
	v[key] = value
	return nil
}

func main() {
	vars := varFlags{}
	configFile := flag.String("config", "", "path to configuration file (defaults apply if empty)")
	templateName := flag.String("template", "", "template to render")
	dataFile := flag.String("data", "", "YAML or JSON file with template variables")
	require := flag.String("require", "", "comma separated variables to prompt for when missing")
	output := flag.String("output", "", "output file (stdout if empty)")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Var(vars, "var", "template variable as key=value (repeatable)")
	flag.Parse()

	cfg, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	logger, err := observability.NewLogger(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if strings.TrimSpace(*templateName) == "" {
		logger.Fatal("Missing -template flag")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	data, err := loadData(*dataFile)
	if err != nil {
		logger.Fatal("Failed to load template data", zap.Error(err))
	}
	for key, value := range vars {
		data[key] = value
	}
	if err := promptMissing(ctx, data, splitList(*require)); err != nil {
		logger.Fatal("Failed to collect template variables", zap.Error(err))
	}

	rt, err := viewbuffer.NewEngine(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create engine", zap.Error(err))
	}

	if err := renderTo(ctx, rt.Engine, *output, *templateName, data); err != nil {
		logger.Fatal("Failed to render template", zap.String("template", *templateName), zap.Error(err))
	}

	stats := rt.Pool.Stats()
	logger.Debug("Render complete",
		zap.String("template", *templateName),
		zap.Uint64("rents", stats.Rents),
		zap.Uint64("misses", stats.Misses),
	)
	if *output != "" {
		fmt.Fprintf(os.Stderr, "Rendered %s to %s\n", *templateName, *output)
	}
}

func loadConfig(path string) (config.Config, error) {
	if strings.TrimSpace(path) == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func loadData(path string) (map[string]any, error) {
	data := map[string]any{}
	if strings.TrimSpace(path) == "" {
		return data, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}

// renderTo streams the template to path through a bufio.Writer, or to stdout
// when path is empty.
func renderTo(ctx context.Context, engine *viewbuffer.Engine, path, name string, data map[string]any) (err error) {
	var dst io.Writer = os.Stdout
	if path != "" {
		file, createErr := os.Create(path)
		if createErr != nil {
			return createErr
		}
		defer func() {
			err = errors.Join(err, file.Close())
		}()
		dst = file
	}
	return engine.Stream(ctx, bufio.NewWriter(dst), name, data)
}

func missingKeys(data map[string]any, required []string) []string {
	var missing []string
	for _, key := range required {
		value, ok := data[key]
		if !ok || value == nil || value == "" {
			missing = append(missing, key)
		}
	}
	return missing
}

func promptMissing(ctx context.Context, data map[string]any, required []string) error {
	for _, key := range missingKeys(data, required) {
		if err := ctx.Err(); err != nil {
			return err
		}
		var answer string
		prompt := &survey.Input{
			Message: fmt.Sprintf("Value for %q:", key),
		}
		if err := survey.AskOne(prompt, &answer, survey.WithValidator(survey.Required)); err != nil {
			if errors.Is(err, terminal.InterruptErr) {
				return errAborted
			}
			return err
		}
		data[key] = answer
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
