package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/haukened/rr-anchor/internal/dns/bootstrap"
	"github.com/haukened/rr-anchor/internal/dns/common/clock"
	"github.com/haukened/rr-anchor/internal/dns/common/log"
	"github.com/haukened/rr-anchor/internal/dns/config"
	"github.com/haukened/rr-anchor/internal/dns/gateways/transport"
	"github.com/haukened/rr-anchor/internal/dns/repos/seed"
)

const (
	// Version information
	version = "0.1.0-dev"
	appName = "rr-anchord"

	defaultShutdownTimeout = 10 * time.Second
)

// Application holds all the components of the anchor daemon
type Application struct {
	config    *config.AppConfig
	stack     *bootstrap.Stack
	transport transport.ServerTransport
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	if err := log.Configure(cfg.Env, cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Logging configuration error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info(map[string]any{
		"version":       version,
		"env":           cfg.Env,
		"log_level":     cfg.LogLevel,
		"listen":        cfg.Listen,
		"store_backend": cfg.StoreBackend,
		"store_path":    cfg.StorePath,
		"seed_file":     cfg.SeedFile,
	}, "Starting "+appName)

	app, err := buildApplication(cfg)
	if err != nil {
		log.Fatal(map[string]any{"error": err.Error()}, "Failed to build application")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx); err != nil {
		log.Fatal(map[string]any{"error": err.Error()}, "Server failed")
	}

	log.Info(nil, appName+" stopped gracefully")
}

// buildApplication constructs all components and wires them together
func buildApplication(cfg *config.AppConfig) (*Application, error) {
	clk := clock.RealClock{}
	logger := log.GetLogger()

	stack, err := bootstrap.Build(cfg, clk, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build registry: %w", err)
	}

	if cfg.SeedFile != "" {
		if err := applySeed(cfg.SeedFile, stack, logger); err != nil {
			_ = stack.Close()
			return nil, err
		}
	}

	tr, err := transport.NewTransport(
		transport.TransportHTTP,
		cfg.Listen,
		stack.Registry,
		stack.Repo.RepoStats,
		log.Component("http"),
	)
	if err != nil {
		_ = stack.Close()
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}

	return &Application{
		config:    cfg,
		stack:     stack,
		transport: tr,
	}, nil
}

// applySeed loads the seed file and publishes it. Individual anchor failures
// are logged by seed.Apply and do not prevent startup; an unreadable file does.
func applySeed(path string, stack *bootstrap.Stack, logger log.Logger) error {
	anchors, err := seed.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load seed file: %w", err)
	}
	res, err := seed.Apply(stack.Registry, anchors, log.Component("seed"))
	if err != nil {
		logger.Warn(map[string]any{
			"failed": res.Failed,
			"error":  err.Error(),
		}, "Seed applied with errors")
	}
	return nil
}

// Run starts the lookup transport and blocks until ctx is cancelled, then
// shuts the transport down and closes the store.
func (app *Application) Run(ctx context.Context) error {
	if err := app.transport.Start(ctx); err != nil {
		_ = app.stack.Close()
		return fmt.Errorf("failed to start transport: %w", err)
	}

	log.Info(map[string]any{
		"address":   app.transport.Address(),
		"transport": "HTTP",
	}, "Anchor registry serving")

	<-ctx.Done()
	log.Info(nil, "Shutdown initiated")

	done := make(chan error, 1)
	go func() {
		if err := app.transport.Stop(); err != nil {
			log.Warn(map[string]any{"error": err.Error()}, "Error during transport shutdown")
		}
		done <- app.stack.Close()
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to close store: %w", err)
		}
		log.Info(nil, "Graceful shutdown completed")
		return nil
	case <-time.After(defaultShutdownTimeout):
		log.Warn(map[string]any{"timeout": defaultShutdownTimeout.String()}, "Shutdown timeout exceeded")
		return fmt.Errorf("shutdown timeout")
	}
}
