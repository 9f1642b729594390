package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/goliatone/go-viewbuffer"
	"github.com/goliatone/go-viewbuffer/internal/server"
	"github.com/goliatone/go-viewbuffer/pkg/config"
	"github.com/goliatone/go-viewbuffer/pkg/observability"
)

var (
	// Version information (set during build)
	version = "dev"
	commit  = "none"

	configFile = flag.String("config", getEnv("VIEWBUFFER_CONFIG", ""), "Path to configuration file")
	address    = flag.String("address", getEnv("VIEWBUFFER_ADDRESS", ""), "Listen address override")
	logLevel   = flag.String("log-level", getEnv("LOG_LEVEL", ""), "Log level override (debug, info, warn, error)")
)

func main() {
	flag.Parse()

	cfg := config.Default()
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *address != "" {
		cfg.Server.Address = *address
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

	logger.Info("Starting viewbuffer-server",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("templateDir", cfg.Render.TemplateDir),
		zap.Int("pageSize", cfg.Buffer.PageSize),
		zap.String("escape", cfg.Render.Escape),
	)

	rt, err := viewbuffer.NewEngine(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create engine", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	srv := server.New(cfg.Server.Address, rt.Engine, rt.Pool, registry, logger)

	go func() {
		if err := srv.ListenAndServe(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	sigterm := make(chan os.Signal, 1)
	signal.Notify(sigterm, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigterm
	logger.Info("Received termination signal", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Error shutting down server", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("viewbuffer-server stopped gracefully")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
