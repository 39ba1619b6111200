package container_test

import (
	"reflect"
	"sync"

	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-container/framework/container"
	"github.com/km-arc/go-container/framework/container/lifecycle"
	"github.com/km-arc/go-container/framework/events"
)

// recorder collects every lifecycle event a container dispatches.
type recorder struct {
	mu     sync.Mutex
	events []lifecycle.Event
}

func record(c *container.Container) *recorder {
	r := &recorder{}
	events.Listen(c.Events(), func(e lifecycle.Event) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.events = append(r.events, e)
	})
	return r
}

func (r *recorder) take() []lifecycle.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.events
	r.events = nil
	return out
}

// mustBuild calls t.Fatal if the builder fails.
func mustBuild(t require.TestingT, b *container.Builder) *container.Binding {
	binding, err := b.Build()
	require.NoError(t, err)
	return binding
}

// mustBind calls t.Fatal if the bind fails.
func mustBind(t require.TestingT, c *container.Container, b *container.Binding, opts ...container.BindOption) {
	require.NoError(t, c.Bind(b, opts...))
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
