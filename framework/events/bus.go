// Package events provides a small synchronous event bus.
//
// Handlers are keyed by the Go type of the event they accept. Dispatch runs
// every matching handler inline, in the order the SubscriberRegistry returns
// them, before returning to the caller.
//
//	bus := events.New(nil)
//	events.Listen(bus, func(e UserCreated) { ... })
//	bus.Dispatch(UserCreated{ID: 1})
//
// An event nobody listens to is re-dispatched wrapped in a DeadEvent, unless
// the event type implements Undead.
package events

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Undead marks event types that should never produce a DeadEvent.
type Undead interface {
	Undead()
}

// DeadEvent wraps an event that had no subscribers.
type DeadEvent struct {
	Event any
}

func (DeadEvent) Undead() {}

// ── Bus ───────────────────────────────────────────────────────────────────────

// Bus dispatches events to the subscribers held by its registry.
type Bus struct {
	registry SubscriberRegistry
	logger   *zap.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used for dead-event diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(b *Bus) {
		if l != nil {
			b.logger = l
		}
	}
}

// New creates a Bus backed by registry. A nil registry means NewRegistry().
func New(registry SubscriberRegistry, opts ...Option) *Bus {
	if registry == nil {
		registry = NewRegistry()
	}
	b := &Bus{registry: registry, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Registry returns the registry backing the bus.
func (b *Bus) Registry() SubscriberRegistry { return b.registry }

// SubscribeOption configures a single subscription.
type SubscribeOption func(*Subscriber)

// WithQualifier attaches a registry-specific qualifier to the subscription.
func WithQualifier(q any) SubscribeOption {
	return func(s *Subscriber) { s.Qualifier = q }
}

// Subscribe registers fn for events of eventType (or, when eventType is an
// interface, for every event implementing it) and returns the subscription ID.
func (b *Bus) Subscribe(eventType reflect.Type, fn func(any), opts ...SubscribeOption) uuid.UUID {
	s := Subscriber{
		ID:      uuid.New(),
		Event:   eventType,
		Handler: fn,
	}
	for _, opt := range opts {
		opt(&s)
	}
	b.registry.Register(s)
	return s.ID
}

// Listen is the typed form of Subscribe.
//
//	events.Listen(bus, func(e lifecycle.Bound) { log.Println(e.Abstract) })
func Listen[T any](b *Bus, fn func(T), opts ...SubscribeOption) uuid.UUID {
	t := reflect.TypeOf((*T)(nil)).Elem()
	return b.Subscribe(t, func(e any) { fn(e.(T)) }, opts...)
}

// Deregister removes the given subscriptions and reports how many existed.
func (b *Bus) Deregister(ids ...uuid.UUID) int {
	n := 0
	for _, id := range ids {
		if b.registry.Deregister(id) {
			n++
		}
	}
	return n
}

// Dispatch delivers event to every matching subscriber and returns it.
func (b *Bus) Dispatch(event any) any {
	if event == nil {
		return nil
	}

	subs := b.registry.Subscribers(event)
	if len(subs) == 0 {
		if _, undead := event.(Undead); !undead {
			b.logger.Debug("dead event", zap.String("event", fmt.Sprintf("%T", event)))
			b.Dispatch(DeadEvent{Event: event})
		}
		return event
	}

	for _, s := range subs {
		s.Handler(event)
	}
	return event
}
