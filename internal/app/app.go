// Package app wires config, logging, the pipeline and the HTTP server into a
// service with an explicit start and shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"

	"github.com/tjfontaine/numagg/internal/config"
	"github.com/tjfontaine/numagg/internal/pipeline"
	"github.com/tjfontaine/numagg/internal/server"
)

// App is the aggregation service. Build it with New, then Start and
// Shutdown it once.
type App struct {
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
	level      *slog.LevelVar
	logOutput  io.Writer

	pipeline *pipeline.Pipeline
	server   *server.Server

	httpServer *http.Server
	listener   net.Listener
	serveDone  chan struct{}
	watcher    *config.Watcher

	cancel context.CancelFunc
	mu     sync.Mutex
}

// New creates an App. Without WithConfig the config is loaded from the
// configured file (config.yaml by default) and the environment.
func New(opts ...Option) (*App, error) {
	a := &App{logOutput: os.Stdout}

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	if a.cfg == nil {
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		a.cfg = cfg
	}

	if a.logger == nil {
		logger, level, err := NewLogger(a.cfg.Log, a.logOutput)
		if err != nil {
			return nil, err
		}
		a.logger, a.level = logger, level
	}

	a.pipeline = pipeline.New(pipeline.WithLogger(a.logger))
	a.server = server.New(a.pipeline, a.logger, a.cfg.Server.RequestTimeout)

	return a, nil
}

// Config returns the config the app was built with.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Logger returns the app logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Pipeline returns the shared request pipeline.
func (a *App) Pipeline() *pipeline.Pipeline {
	return a.pipeline
}

// Handler returns the HTTP handler serving the aggregation routes.
func (a *App) Handler() http.Handler {
	return a.server
}

// Addr returns the listening address, or nil before Start.
func (a *App) Addr() net.Addr {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener == nil {
		return nil
	}
	return a.listener.Addr()
}

// Start listens on the configured port and serves in the background. When
// the config file exists it is watched and log level changes are applied
// without a restart.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.httpServer != nil {
		return errors.New("app already started")
	}

	ctx, a.cancel = context.WithCancel(ctx)

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", a.cfg.Server.Port))
	if err != nil {
		a.cancel()
		return fmt.Errorf("listen: %w", err)
	}
	a.listener = ln

	a.httpServer = &http.Server{
		Handler:      a.server,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(a.logger.Handler(), slog.LevelError),
	}

	a.serveDone = make(chan struct{})
	go func() {
		defer close(a.serveDone)
		a.logger.Info("HTTP server listening", slog.String("addr", ln.Addr().String()))
		if err := a.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("server error", slog.String("error", err.Error()))
		}
	}()

	if err := a.watchConfig(ctx); err != nil {
		a.logger.Warn("config watch disabled", slog.String("error", err.Error()))
	}

	a.logger.Info("numagg started",
		slog.String("addr", ln.Addr().String()),
		slog.String("log_level", a.cfg.Log.Level))

	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones to finish
// or for ctx to expire.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.logger.Info("shutting down")

	if a.cancel != nil {
		a.cancel()
	}

	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			a.logger.Error("failed to close config watcher", slog.String("error", err.Error()))
		}
		a.watcher = nil
	}

	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			a.logger.Error("failed to shutdown server", slog.String("error", err.Error()))
			return err
		}
		<-a.serveDone
	}

	a.logger.Info("shutdown complete")
	return nil
}

func (a *App) watchConfig(ctx context.Context) error {
	path := a.configPath
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	w, err := config.NewWatcher(path, a.logger)
	if err != nil {
		return err
	}
	if err := w.Watch(ctx, a.applyConfig); err != nil {
		return err
	}
	a.watcher = w
	return nil
}

// applyConfig applies the reloadable parts of cfg. Only the log level can
// change at runtime; server settings need a restart.
func (a *App) applyConfig(cfg *config.Config) {
	if a.level == nil {
		return
	}
	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		a.logger.Error("ignoring reloaded log level", slog.String("error", err.Error()))
		return
	}
	if level != a.level.Level() {
		a.level.Set(level)
		a.logger.Info("log level changed", slog.String("level", level.String()))
	}
}
