// Package cli holds the start-up steps shared by cmd/fintrack and
// cmd/fintrack-worker.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"fintrack/internal/config"
	applog "fintrack/internal/log"
)

// LoadEnvFile loads .env for local development. A missing file is ignored.
func LoadEnvFile() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: could not load .env: %v\n", err)
	}
}

// SetupLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and
// installs it as the slog default.
func SetupLogger(cfg *config.Config, out io.Writer) *applog.Logger {
	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v, using info\n", err)
	}
	if out == nil {
		out = os.Stdout
	}

	logger := applog.New(applog.Config{
		Level:     level,
		Format:    cfg.LogFormat,
		Component: applog.ComponentApp,
		Output:    out,
	})
	applog.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration from the environment and runs
// validate on it. Pass (*config.Config).Validate or ValidateWorker.
// The loaded config is returned even when validation fails so the caller
// can build a logger before reporting the error.
func LoadAndValidateConfig(validate func(*config.Config) error) (*config.Config, error) {
	cfg := config.Load()
	if validate != nil {
		if err := validate(cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// Fatal logs err and exits with status 1.
func Fatal(logger *applog.Logger, msg string, err error, args ...any) {
	logger.Error(msg, append([]any{applog.FieldError, err}, args...)...)
	os.Exit(1)
}
