package container

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/km-arc/go-container/framework/container/lifecycle"
	"github.com/km-arc/go-container/framework/events"
)

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider groups the bindings of one part of an application.
//
// Register is called to add bindings. Boot is called after every eager
// provider has been registered, so it may look up bindings from other
// providers.
//
//	type CacheProvider struct{ container.BaseProvider }
//
//	func (p *CacheProvider) Register(c *container.Container) error {
//	    b, err := container.Bind("Cache").To("RedisCache").As("cache").Shared().Build()
//	    if err != nil {
//	        return err
//	    }
//	    return c.Bind(b)
//	}
type ServiceProvider interface {
	// Register binds services into the container.
	Register(c *Container) error

	// Boot is called after all providers are registered.
	Boot(c *Container) error

	// Provides returns the abstracts a deferred provider registers.
	Provides() []string

	// IsDeferred returns true if the provider should only be registered
	// once one of its Provides() abstracts is looked up and not found.
	IsDeferred() bool
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable no-op implementation of Boot, Provides and
// IsDeferred.
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container) error { return nil }
func (p *BaseProvider) Provides() []string      { return nil }
func (p *BaseProvider) IsDeferred() bool        { return false }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry registers and boots ServiceProviders against a container,
// including deferred providers.
//
// Deferred providers are loaded from an UnknownBinding listener: the first
// lookup of one of their abstracts misses, registers the provider, and
// ProviderRegistry.Binding retries it. A miss during a Bind in flight, such
// as a lookup from a Bound listener, queues the load with AfterBind; the
// provider is registered once that Bind returns.
type ProviderRegistry struct {
	mu sync.Mutex

	app        *Container
	eager      []ServiceProvider
	deferred   map[string]ServiceProvider // abstract → provider
	registered map[ServiceProvider]bool
	booted     bool

	// abstract → error of the deferred load it triggered
	loadErrs map[string]error
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	r := &ProviderRegistry{
		app:        app,
		deferred:   make(map[string]ServiceProvider),
		registered: make(map[ServiceProvider]bool),
		loadErrs:   make(map[string]error),
	}
	events.Listen(app.Events(), r.onUnknown)
	return r
}

// Register adds a provider and calls its Register method, unless it is
// deferred. Registering the same provider twice is a no-op.
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	r.mu.Lock()
	if r.registered[provider] {
		r.mu.Unlock()
		return nil
	}
	r.registered[provider] = true

	if provider.IsDeferred() {
		for _, abstract := range provider.Provides() {
			r.deferred[abstract] = provider
		}
		r.mu.Unlock()
		return nil
	}
	r.eager = append(r.eager, provider)
	booted := r.booted
	r.mu.Unlock()

	if err := provider.Register(r.app); err != nil {
		return fmt.Errorf("registering %T: %w", provider, err)
	}
	if booted {
		if err := provider.Boot(r.app); err != nil {
			return fmt.Errorf("booting %T: %w", provider, err)
		}
	}
	return nil
}

// onUnknown registers the deferred provider for a missing abstract.
func (r *ProviderRegistry) onUnknown(e lifecycle.UnknownBinding) {
	r.mu.Lock()
	provider, ok := r.deferred[e.Abstract]
	if !ok {
		r.mu.Unlock()
		return
	}
	for _, abstract := range provider.Provides() {
		delete(r.deferred, abstract)
	}
	r.mu.Unlock()

	r.app.AfterBind(func() { r.load(e.Abstract, provider) })
}

func (r *ProviderRegistry) load(abstract string, provider ServiceProvider) {
	r.mu.Lock()
	booted := r.booted
	r.mu.Unlock()

	err := provider.Register(r.app)
	if err == nil && booted {
		err = provider.Boot(r.app)
	}
	if err != nil {
		r.mu.Lock()
		r.loadErrs[abstract] = fmt.Errorf("loading deferred %T: %w", provider, err)
		r.mu.Unlock()
	}
}

// Binding looks abstract up, loading a deferred provider on a miss and
// retrying once. It returns the error of a deferred provider that failed to
// load for abstract.
func (r *ProviderRegistry) Binding(abstract string, opts ...LookupOption) (*Binding, bool, error) {
	if b, ok := r.app.Binding(abstract, opts...); ok {
		return b, true, nil
	}

	r.mu.Lock()
	err := r.loadErrs[abstract]
	delete(r.loadErrs, abstract)
	r.mu.Unlock()
	if err != nil {
		return nil, false, err
	}

	b, ok := r.app.Peek(abstract, opts...)
	return b, ok, nil
}

// Boot calls Boot on all eager providers. Subsequent calls are no-ops.
func (r *ProviderRegistry) Boot() error {
	r.mu.Lock()
	if r.booted {
		r.mu.Unlock()
		return nil
	}
	r.booted = true
	eager := append([]ServiceProvider(nil), r.eager...)
	r.mu.Unlock()

	for _, provider := range eager {
		if err := provider.Boot(r.app); err != nil {
			return fmt.Errorf("booting %T: %w", provider, err)
		}
	}
	return nil
}

// Booted returns true if Boot has been called.
func (r *ProviderRegistry) Booted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.booted
}

// Providers returns the registered eager providers.
func (r *ProviderRegistry) Providers() []ServiceProvider {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ServiceProvider(nil), r.eager...)
}

// Deferred returns, sorted, the abstracts whose providers have not been
// loaded yet.
func (r *ProviderRegistry) Deferred() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Sorted(maps.Keys(r.deferred))
}
