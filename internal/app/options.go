package app

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/tjfontaine/numagg/internal/config"
)

// Option is a functional option for configuring an App.
type Option func(*App) error

// WithConfigFile loads config from path and watches it for log level
// changes once started.
func WithConfigFile(path string) Option {
	return func(a *App) error {
		if path == "" {
			return fmt.Errorf("config path cannot be empty")
		}
		a.configPath = path
		return nil
	}
}

// WithConfig uses cfg instead of loading one.
func WithConfig(cfg *config.Config) Option {
	return func(a *App) error {
		if cfg == nil {
			return fmt.Errorf("config cannot be nil")
		}
		a.cfg = cfg
		return nil
	}
}

// WithLogger sets a custom logger. Config reloads cannot change its level.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		a.level = nil
		return nil
	}
}

// WithLogOutput sends the default logger's output to w.
func WithLogOutput(w io.Writer) Option {
	return func(a *App) error {
		a.logOutput = w
		return nil
	}
}
