package events

import (
	"reflect"
	"sync"

	"github.com/google/uuid"
)

// Subscriber is a single handler registered on the bus.
type Subscriber struct {
	ID      uuid.UUID
	Event   reflect.Type
	Handler func(event any)

	// Qualifier is opaque to the bus. Registries may use it to narrow
	// delivery (see container.ForAbstract).
	Qualifier any
}

// Matches reports whether an event of type t is delivered to s. An event
// matches its own type and every interface type it implements.
func (s Subscriber) Matches(t reflect.Type) bool {
	if s.Event == nil || t == nil {
		return false
	}
	if s.Event == t {
		return true
	}
	return s.Event.Kind() == reflect.Interface && t.Implements(s.Event)
}

// SubscriberRegistry stores subscribers and decides who receives an event.
//
// The bus never inspects subscribers itself; swapping the registry is how
// delivery rules are customised.
type SubscriberRegistry interface {
	// Register adds s. Registering an ID that is already present is a no-op.
	Register(s Subscriber)

	// Deregister removes the subscriber with the given ID.
	Deregister(id uuid.UUID) bool

	// Subscribers returns the subscribers for event in delivery order.
	Subscribers(event any) []Subscriber
}

// Registry is the default SubscriberRegistry. It delivers in registration
// order and ignores qualifiers.
type Registry struct {
	mu   sync.RWMutex
	subs []Subscriber
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Register(s Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.subs {
		if existing.ID == s.ID {
			return
		}
	}
	r.subs = append(r.subs, s)
}

func (r *Registry) Deregister(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.subs {
		if s.ID == id {
			r.subs = append(r.subs[:i:i], r.subs[i+1:]...)
			return true
		}
	}
	return false
}

func (r *Registry) Subscribers(event any) []Subscriber {
	t := reflect.TypeOf(event)
	if t == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Subscriber
	for _, s := range r.subs {
		if s.Matches(t) {
			out = append(out, s)
		}
	}
	return out
}

// Len returns the number of registered subscribers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}
