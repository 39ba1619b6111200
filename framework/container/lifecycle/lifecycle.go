// Package lifecycle defines the events a container dispatches while
// bindings are registered and looked up.
//
// A first registration of an abstract produces Binding then Bound; a
// registration that replaces an existing one produces Rebinding then
// Rebound. A lookup that finds nothing produces UnknownBinding.
//
// None of these events produce an events.DeadEvent when unobserved.
package lifecycle

// Event is implemented by every lifecycle event.
type Event interface {
	AbstractName() string
}

// Binding is dispatched before an abstract is bound for the first time.
type Binding struct{ Abstract string }

// Bound is dispatched after an abstract is bound for the first time.
type Bound struct{ Abstract string }

// Rebinding is dispatched before an already bound abstract is replaced.
type Rebinding struct{ Abstract string }

// Rebound is dispatched after an already bound abstract is replaced.
type Rebound struct{ Abstract string }

// UnknownBinding is dispatched when a lookup finds no binding.
type UnknownBinding struct{ Abstract string }

func (e Binding) AbstractName() string        { return e.Abstract }
func (e Bound) AbstractName() string          { return e.Abstract }
func (e Rebinding) AbstractName() string      { return e.Abstract }
func (e Rebound) AbstractName() string        { return e.Abstract }
func (e UnknownBinding) AbstractName() string { return e.Abstract }

func (Binding) Undead()        {}
func (Bound) Undead()          {}
func (Rebinding) Undead()      {}
func (Rebound) Undead()        {}
func (UnknownBinding) Undead() {}
