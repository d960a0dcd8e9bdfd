// Package cli holds the start-up steps shared by the expenseminimizer
// binaries: environment, logging, configuration and signal handling.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"expenseminimizer/internal/config"
	"expenseminimizer/internal/log"
)

// SetupLogger builds the process logger at the given level and installs it
// as the slog default. Interactive commands pass os.Stderr so stdout stays
// reserved for command output.
func SetupLogger(level, component string, w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stdout
	}
	lvl := log.ParseLevel(level)
	logger := log.New(log.Config{
		Level:     lvl,
		Component: component,
		Handler:   slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}),
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads .env files for local development. A missing file is not
// an error; a malformed one is.
func LoadEnvFile(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// LoadAndValidateConfig loads configuration from the environment and
// validates it. Extra checks, such as config.ValidateProxy, run afterwards.
func LoadAndValidateConfig(extra ...func(*config.Config) error) (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for _, check := range extra {
		if err := check(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. The
// returned stop func releases the signal handler.
func GracefulShutdown(parent context.Context, logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}
