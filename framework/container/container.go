package container

import (
	"maps"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/km-arc/go-container/framework/container/lifecycle"
	"github.com/km-arc/go-container/framework/events"
)

// Container holds an application's bindings, keyed by abstract, and the
// alias redirects pointing at them.
//
// Registration dispatches lifecycle events on the container's bus:
// Binding/Bound for a new abstract, Rebinding/Rebound for a replaced one.
// Lookups that miss dispatch UnknownBinding.
//
// Listeners run synchronously on the calling goroutine with no container
// lock held, so they may look bindings up. A listener for Binding, Bound,
// Rebinding or Rebound must not call Bind directly: binds are serialised and
// the call would deadlock. Work that binds, such as loading a deferred
// provider from an UnknownBinding listener, goes through AfterBind.
type Container struct {
	// bindMu serialises Bind so each before/after event pair is emitted
	// around exactly one mutation.
	bindMu sync.Mutex

	// pending holds AfterBind work queued while a Bind was in flight.
	pendingMu sync.Mutex
	pending   []func()

	// mu guards both maps; they are always updated together.
	mu sync.RWMutex

	// abstract → binding
	bindings map[string]*Binding

	// alias → abstract
	aliases map[string]string

	events *events.Bus
	logger *zap.Logger
}

// New creates an empty container.
func New(opts ...Option) *Container {
	c := &Container{
		bindings: make(map[string]*Binding),
		aliases:  make(map[string]string),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.events == nil {
		c.events = events.New(NewSubscribers(), events.WithLogger(c.logger))
	}
	return c
}

// Events returns the bus lifecycle events are dispatched on.
func (c *Container) Events() *events.Bus { return c.events }

// ── Registration ──────────────────────────────────────────────────────────────

// Bind registers b under its abstract and each of its aliases.
//
// By default an existing registration is replaced. With NoOverride, Bind
// fails with *AlreadyRegisteredError when the abstract, or any alias, is
// already a registered abstract; aliases are not checked against other
// aliases. A failed Bind dispatches nothing and changes nothing.
//
// Alias redirects silently replace earlier redirects of the same name.
func (c *Container) Bind(b *Binding, opts ...BindOption) error {
	if b == nil {
		return &ConfigurationError{Reason: "cannot bind a nil binding"}
	}
	if err := validate(b.abstract, b.concrete, b.factory); err != nil {
		return err
	}

	o := bindOptions{override: true}
	for _, opt := range opts {
		opt(&o)
	}

	err := c.bind(b, o)
	c.drain()
	return err
}

func (c *Container) bind(b *Binding, o bindOptions) error {
	c.bindMu.Lock()
	defer c.bindMu.Unlock()

	c.mu.RLock()
	var err error
	if !o.override {
		err = c.conflict(b)
	}
	_, rebinding := c.bindings[b.abstract]
	c.mu.RUnlock()
	if err != nil {
		return err
	}

	if rebinding {
		c.events.Dispatch(lifecycle.Rebinding{Abstract: b.abstract})
	} else {
		c.events.Dispatch(lifecycle.Binding{Abstract: b.abstract})
	}

	c.mu.Lock()
	c.bindings[b.abstract] = b
	for _, alias := range b.aliases {
		c.aliases[alias] = b.abstract
	}
	c.mu.Unlock()

	c.logger.Debug("binding registered",
		zap.String("abstract", b.abstract),
		zap.Stringer("kind", b.kind),
		zap.Strings("aliases", b.aliases),
		zap.Bool("rebound", rebinding),
	)

	if rebinding {
		c.events.Dispatch(lifecycle.Rebound{Abstract: b.abstract})
	} else {
		c.events.Dispatch(lifecycle.Bound{Abstract: b.abstract})
	}
	return nil
}

// MustBind is like Bind but panics on error and returns the container for
// chaining.
//
//	c.MustBind(container.Bind("Cache").To("RedisCache").MustBuild()).
//	    MustBind(container.Bind(cfg).MustBuild())
func (c *Container) MustBind(b *Binding, opts ...BindOption) *Container {
	if err := c.Bind(b, opts...); err != nil {
		panic(err)
	}
	return c
}

// AfterBind runs fn once no Bind is in flight: immediately when the
// container is idle, otherwise on the binding goroutine right after the
// current Bind returns. fn may call Bind.
//
//	events.Listen(c.Events(), func(e lifecycle.UnknownBinding) {
//	    c.AfterBind(func() { _ = c.Bind(fallback(e.Abstract)) })
//	})
func (c *Container) AfterBind(fn func()) {
	c.pendingMu.Lock()
	c.pending = append(c.pending, fn)
	c.pendingMu.Unlock()

	// A Bind holding bindMu drains after it unlocks, and it unlocks after
	// the append above.
	if c.bindMu.TryLock() {
		c.bindMu.Unlock()
		c.drain()
	}
}

func (c *Container) drain() {
	for {
		c.pendingMu.Lock()
		if len(c.pending) == 0 {
			c.pendingMu.Unlock()
			return
		}
		fn := c.pending[0]
		c.pending = c.pending[1:]
		c.pendingMu.Unlock()

		fn()
	}
}

// conflict must be called with mu held.
func (c *Container) conflict(b *Binding) error {
	if _, ok := c.bindings[b.abstract]; ok {
		return &AlreadyRegisteredError{Identifier: b.abstract}
	}
	for _, alias := range b.aliases {
		if _, ok := c.bindings[alias]; ok {
			return &AlreadyRegisteredError{Identifier: alias, Alias: true}
		}
	}
	return nil
}

// ── Lookup ────────────────────────────────────────────────────────────────────

// Binding returns the binding registered for abstract. Unless IgnoreAliases
// is given, an abstract that is not registered is tried as an alias, one hop
// only. A miss dispatches UnknownBinding.
func (c *Container) Binding(abstract string, opts ...LookupOption) (*Binding, bool) {
	b, ok := c.Peek(abstract, opts...)
	if !ok {
		c.logger.Debug("unknown binding", zap.String("abstract", abstract))
		c.events.Dispatch(lifecycle.UnknownBinding{Abstract: abstract})
	}
	return b, ok
}

// Bound reports whether Binding finds a binding for abstract. Like Binding,
// a miss dispatches UnknownBinding.
func (c *Container) Bound(abstract string, opts ...LookupOption) bool {
	_, ok := c.Binding(abstract, opts...)
	return ok
}

// Peek is Binding without the UnknownBinding event.
func (c *Container) Peek(abstract string, opts ...LookupOption) (*Binding, bool) {
	o := lookupOptions{useAliases: true}
	for _, opt := range opts {
		opt(&o)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if b, ok := c.bindings[abstract]; ok {
		return b, true
	}
	if !o.useAliases {
		return nil, false
	}
	target, ok := c.aliases[abstract]
	if !ok {
		return nil, false
	}
	b, ok := c.bindings[target]
	return b, ok
}

// ── Introspection ─────────────────────────────────────────────────────────────

// Abstracts returns the registered abstracts in sorted order.
func (c *Container) Abstracts() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.bindings))
}

// Aliases returns a copy of the alias → abstract redirects.
func (c *Container) Aliases() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.aliases)
}
