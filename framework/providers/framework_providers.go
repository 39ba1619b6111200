// Package providers holds the service providers every application registers.
package providers

import (
	"go.uber.org/zap"

	"github.com/km-arc/go-container/framework/config"
	"github.com/km-arc/go-container/framework/container"
	"github.com/km-arc/go-container/framework/manifest"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider binds the loaded configuration.
//
// Bound abstracts:
//   - TypeKey(*config.Config) → the instance (shared)
//   - alias "config"
type ConfigServiceProvider struct {
	container.BaseProvider
	Config *config.Config
}

func (p *ConfigServiceProvider) Register(app *container.Container) error {
	return bindInstance(app, p.Config, "config")
}

// ── LoggerServiceProvider ─────────────────────────────────────────────────────

// LoggerServiceProvider binds the application logger.
//
// Bound abstracts:
//   - TypeKey(*zap.Logger) → the instance (shared)
//   - alias "logger"
type LoggerServiceProvider struct {
	container.BaseProvider
	Logger *zap.Logger
}

func (p *LoggerServiceProvider) Register(app *container.Container) error {
	return bindInstance(app, p.Logger, "logger")
}

// ── EventsServiceProvider ─────────────────────────────────────────────────────

// EventsServiceProvider binds the container's own event bus.
//
// Bound abstracts:
//   - TypeKey(*events.Bus) → the instance (shared)
//   - alias "events"
type EventsServiceProvider struct {
	container.BaseProvider
}

func (p *EventsServiceProvider) Register(app *container.Container) error {
	return bindInstance(app, app.Events(), "events")
}

// ── ManifestServiceProvider ───────────────────────────────────────────────────

// ManifestServiceProvider applies a YAML binding manifest. It does nothing
// when Path is empty.
//
// Configuration:
//   - CONTAINER_MANIFEST → Path
//   - CONTAINER_STRICT   → Strict
type ManifestServiceProvider struct {
	container.BaseProvider
	Path      string
	Strict    bool
	Factories map[string]container.Factory
}

func (p *ManifestServiceProvider) Register(app *container.Container) error {
	if p.Path == "" {
		return nil
	}
	m, err := manifest.Load(p.Path)
	if err != nil {
		return err
	}
	return m.Apply(app, manifest.Options{Factories: p.Factories, Strict: p.Strict})
}

func bindInstance(app *container.Container, instance any, alias string) error {
	b, err := container.Bind(instance).As(alias).Build()
	if err != nil {
		return err
	}
	return app.Bind(b)
}
