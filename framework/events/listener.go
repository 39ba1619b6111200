package events

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"
)

// ErrNoListeners is returned by Register when a value has no listener methods.
var ErrNoListeners = errors.New("events: no listener methods found")

// ListenerMethod is a handler method discovered on a listener value.
type ListenerMethod struct {
	Name  string
	Event reflect.Type
	fn    reflect.Value
}

// FindListeners returns the exported methods of listener that look like
// event handlers: named On..., one struct or *struct parameter, no results.
// Methods are returned in name order.
func FindListeners(listener any) []ListenerMethod {
	v := reflect.ValueOf(listener)
	if !v.IsValid() {
		return nil
	}
	t := v.Type()

	var found []ListenerMethod
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if !strings.HasPrefix(m.Name, "On") {
			continue
		}
		fn := v.Method(i)
		ft := fn.Type()
		if ft.NumIn() != 1 || ft.NumOut() != 0 || !isEventType(ft.In(0)) {
			continue
		}
		found = append(found, ListenerMethod{Name: m.Name, Event: ft.In(0), fn: fn})
	}
	return found
}

func isEventType(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

// Register subscribes every listener method found on listener.
//
//	type audit struct{}
//	func (a *audit) OnBound(e lifecycle.Bound) { ... }
//
//	ids, err := bus.Register(&audit{})
func (b *Bus) Register(listener any, opts ...SubscribeOption) ([]uuid.UUID, error) {
	methods := FindListeners(listener)
	if len(methods) == 0 {
		return nil, fmt.Errorf("%w: %T", ErrNoListeners, listener)
	}

	ids := make([]uuid.UUID, 0, len(methods))
	for _, m := range methods {
		fn := m.fn
		ids = append(ids, b.Subscribe(m.Event, func(e any) {
			fn.Call([]reflect.Value{reflect.ValueOf(e)})
		}, opts...))
	}
	return ids, nil
}
