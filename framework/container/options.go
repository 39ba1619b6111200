package container

import (
	"go.uber.org/zap"

	"github.com/km-arc/go-container/framework/events"
)

// Option configures a Container.
type Option func(*Container)

// WithEvents sets the bus lifecycle events are dispatched on. By default a
// container gets its own bus backed by NewSubscribers().
func WithEvents(bus *events.Bus) Option {
	return func(c *Container) {
		if bus != nil {
			c.events = bus
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.logger = l
		}
	}
}

// BindOption configures a single Container.Bind call.
type BindOption func(*bindOptions)

type bindOptions struct {
	override bool
}

// NoOverride makes Bind fail with *AlreadyRegisteredError instead of
// replacing an existing registration.
func NoOverride() BindOption {
	return func(o *bindOptions) { o.override = false }
}

// LookupOption configures Container.Binding, Bound and Peek.
type LookupOption func(*lookupOptions)

type lookupOptions struct {
	useAliases bool
}

// IgnoreAliases restricts a lookup to registered abstracts.
func IgnoreAliases() LookupOption {
	return func(o *lookupOptions) { o.useAliases = false }
}
