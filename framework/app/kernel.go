// Package app wires a container, its event bus and the framework providers
// into an Application. It is the only place a process-wide container lives.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/km-arc/go-container/framework/config"
	"github.com/km-arc/go-container/framework/container"
	"github.com/km-arc/go-container/framework/events"
	"github.com/km-arc/go-container/framework/inspect"
	"github.com/km-arc/go-container/framework/logger"
	"github.com/km-arc/go-container/framework/providers"
)

// Application embeds the Container and ProviderRegistry so bootstrap code
// can call app.Bind() and app.Register() directly.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry
	Config    *config.Config
	Logger    *zap.Logger
}

// Option configures New.
type Option func(*options)

type options struct {
	logger    *zap.Logger
	factories map[string]container.Factory
	hierarchy container.Hierarchy
}

// WithLogger uses l instead of building one from the configuration.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithFactories supplies the named factories manifest entries may use.
func WithFactories(f map[string]container.Factory) Option {
	return func(o *options) { o.factories = f }
}

// WithHierarchy sets the hierarchy used for non-exact ForAbstract listeners.
func WithHierarchy(h container.Hierarchy) Option {
	return func(o *options) { o.hierarchy = h }
}

// New creates an application and registers the framework providers.
func New(cfg *config.Config, opts ...Option) (*Application, error) {
	if cfg == nil {
		cfg = config.Load()
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	log := o.logger
	if log == nil {
		var err error
		if log, err = logger.New(cfg.Log, cfg.App.Env); err != nil {
			return nil, fmt.Errorf("building logger: %w", err)
		}
	}

	var subOpts []container.SubscribersOption
	if o.hierarchy != nil {
		subOpts = append(subOpts, container.WithHierarchy(o.hierarchy))
	}
	bus := events.New(container.NewSubscribers(subOpts...), events.WithLogger(log))
	c := container.New(container.WithEvents(bus), container.WithLogger(log))

	app := &Application{
		Container: c,
		Providers: container.NewProviderRegistry(c),
		Config:    cfg,
		Logger:    log,
	}

	core := []container.ServiceProvider{
		&providers.ConfigServiceProvider{Config: cfg},
		&providers.LoggerServiceProvider{Logger: log},
		&providers.EventsServiceProvider{},
		&providers.ManifestServiceProvider{
			Path:      cfg.Container.Manifest,
			Strict:    cfg.Container.Strict,
			Factories: o.factories,
		},
	}
	for _, p := range core {
		if err := app.Register(p); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// ── Process-wide instance ─────────────────────────────────────────────────────

var (
	instanceMu sync.Mutex
	instance   *Application
)

// Instance returns the process-wide application, creating it from the
// environment on first use. Code below the bootstrap should receive the
// container explicitly rather than call Instance.
func Instance() (*Application, error) {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	if instance != nil {
		return instance, nil
	}
	app, err := New(config.Load())
	if err != nil {
		return nil, err
	}
	instance = app
	return instance, nil
}

// SetInstance replaces the process-wide application and returns it. Passing
// nil makes the next Instance call build a fresh one.
func SetInstance(app *Application) *Application {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	instance = app
	return instance
}

// ── Lifecycle ─────────────────────────────────────────────────────────────────

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) error {
	return a.Providers.Register(provider)
}

// Boot runs the Boot phase on all providers.
func (a *Application) Boot() error {
	return a.Providers.Boot()
}

// Run boots the application and, when inspection is enabled, serves the
// binding inspector until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if err := a.Boot(); err != nil {
		return err
	}
	a.Logger.Info("application booted",
		zap.String("name", a.Config.App.Name),
		zap.String("env", a.Config.App.Env),
		zap.Int("bindings", len(a.Abstracts())),
	)
	if !a.Config.Inspect.Enabled {
		return nil
	}

	srv := &http.Server{
		Addr:              a.Config.Inspect.Addr,
		Handler:           inspect.Handler(a.Container, a.Logger),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("inspector listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.Config.App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool       { return a.Config.App.Debug }
