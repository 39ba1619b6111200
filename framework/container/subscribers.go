package container

import (
	"reflect"
	"sync"

	"github.com/google/uuid"

	"github.com/km-arc/go-container/framework/container/lifecycle"
	"github.com/km-arc/go-container/framework/events"
)

// ForAbstract narrows a subscription to lifecycle events about one abstract.
//
// With Exact set, only events whose abstract equals Abstract are delivered.
// Otherwise events are delivered for any abstract whose hierarchy (see
// WithHierarchy) contains Abstract.
type ForAbstract struct {
	Abstract string
	Exact    bool
}

// OnAbstract is the SubscribeOption form of ForAbstract.
//
//	events.Listen(c.Events(), onCacheRebound, container.OnAbstract("Cache", true))
func OnAbstract(abstract string, exact bool) events.SubscribeOption {
	return events.WithQualifier(ForAbstract{Abstract: abstract, Exact: exact})
}

// Hierarchy returns the identifiers an abstract "is": itself first, then any
// parents or interfaces it should be treated as.
type Hierarchy func(abstract string) []string

// SubscribersOption configures Subscribers.
type SubscribersOption func(*Subscribers)

// WithHierarchy sets the hierarchy used for non-exact ForAbstract delivery.
func WithHierarchy(h Hierarchy) SubscribersOption {
	return func(s *Subscribers) {
		if h != nil {
			s.hierarchy = h
		}
	}
}

// Subscribers is the events.SubscriberRegistry containers use by default.
// It understands ForAbstract qualifiers; unqualified subscribers receive
// every matching event.
//
// Delivery order is global subscribers, then exact ones, then the
// hierarchy matches; a subscriber is delivered to at most once per event.
type Subscribers struct {
	mu sync.RWMutex

	global []events.Subscriber

	// abstract → subscribers
	exact      map[string][]events.Subscriber
	instanceOf map[string][]events.Subscriber

	ids       map[uuid.UUID]struct{}
	hierarchy Hierarchy
}

// NewSubscribers creates an empty registry.
func NewSubscribers(opts ...SubscribersOption) *Subscribers {
	s := &Subscribers{
		exact:      make(map[string][]events.Subscriber),
		instanceOf: make(map[string][]events.Subscriber),
		ids:        make(map[uuid.UUID]struct{}),
		hierarchy:  func(abstract string) []string { return []string{abstract} },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Subscribers) Register(sub events.Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.ids[sub.ID]; dup {
		return
	}
	s.ids[sub.ID] = struct{}{}

	fa, ok := qualifier(sub.Qualifier)
	switch {
	case !ok:
		s.global = append(s.global, sub)
	case fa.Exact:
		s.exact[fa.Abstract] = append(s.exact[fa.Abstract], sub)
	default:
		s.instanceOf[fa.Abstract] = append(s.instanceOf[fa.Abstract], sub)
	}
}

func qualifier(q any) (ForAbstract, bool) {
	switch fa := q.(type) {
	case ForAbstract:
		return fa, true
	case *ForAbstract:
		if fa != nil {
			return *fa, true
		}
	}
	return ForAbstract{}, false
}

func (s *Subscribers) Deregister(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[id]; !ok {
		return false
	}
	delete(s.ids, id)

	s.global = without(s.global, id)
	for k, subs := range s.exact {
		s.exact[k] = without(subs, id)
	}
	for k, subs := range s.instanceOf {
		s.instanceOf[k] = without(subs, id)
	}
	return true
}

func without(subs []events.Subscriber, id uuid.UUID) []events.Subscriber {
	out := subs[:0:0]
	for _, sub := range subs {
		if sub.ID != id {
			out = append(out, sub)
		}
	}
	return out
}

func (s *Subscribers) Subscribers(event any) []events.Subscriber {
	t := reflect.TypeOf(event)
	if t == nil {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []events.Subscriber
	seen := make(map[uuid.UUID]struct{})
	add := func(subs []events.Subscriber) {
		for _, sub := range subs {
			if _, dup := seen[sub.ID]; dup || !sub.Matches(t) {
				continue
			}
			seen[sub.ID] = struct{}{}
			out = append(out, sub)
		}
	}

	add(s.global)

	ev, ok := event.(lifecycle.Event)
	if !ok {
		return out
	}
	abstract := ev.AbstractName()
	add(s.exact[abstract])
	for _, a := range s.hierarchy(abstract) {
		add(s.instanceOf[a])
	}
	return out
}
