package container

import (
	"fmt"
	"reflect"
	"slices"
)

// ── Binding kinds ─────────────────────────────────────────────────────────────

// Kind discriminates the three binding shapes.
type Kind int

const (
	// KindGeneric resolves to a type identifier, a new value per resolution.
	KindGeneric Kind = iota

	// KindShared resolves to a type identifier or a live instance, and the
	// produced value is reused for every resolution.
	KindShared

	// KindFactory resolves by calling a factory.
	KindFactory
)

// String returns the human-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindGeneric:
		return "generic"
	case KindShared:
		return "shared"
	case KindFactory:
		return "factory"
	default:
		return "unknown"
	}
}

// Factory produces the value for a factory binding.
type Factory func() any

// ── Binding ───────────────────────────────────────────────────────────────────

// Binding is an immutable rule mapping an abstract, and its aliases, to a
// concrete type identifier, a live instance, or a factory.
//
// Bindings are produced by a Builder; use Extend to derive a modified copy.
type Binding struct {
	kind     Kind
	abstract string

	// concrete is a type identifier (string) or, when instance is set, the
	// live value. It is nil for factory bindings.
	concrete any
	instance bool

	factory Factory
	aliases []string
	shared  bool
}

// Kind returns the binding's discriminant.
func (b *Binding) Kind() Kind { return b.kind }

// Abstract returns the identifier the binding is registered under.
func (b *Binding) Abstract() string { return b.abstract }

// Concrete returns the type identifier or instance the abstract resolves to,
// or nil for factory bindings.
func (b *Binding) Concrete() any { return b.concrete }

// ConcreteType returns the concrete type identifier, if the binding has one.
func (b *Binding) ConcreteType() (string, bool) {
	if b.instance {
		return "", false
	}
	s, ok := b.concrete.(string)
	return s, ok
}

// Instance returns the live instance, if the binding holds one.
func (b *Binding) Instance() (any, bool) {
	if !b.instance {
		return nil, false
	}
	return b.concrete, true
}

// Factory returns the factory, or nil.
func (b *Binding) Factory() Factory { return b.factory }

// Aliases returns a copy of the binding's aliases in declaration order.
func (b *Binding) Aliases() []string { return slices.Clone(b.aliases) }

// Shared reports whether resolutions reuse a single produced value.
func (b *Binding) Shared() bool { return b.shared }

func (b *Binding) String() string {
	switch b.kind {
	case KindFactory:
		return fmt.Sprintf("%s binding [%s] -> factory", b.kind, b.abstract)
	default:
		if b.instance {
			return fmt.Sprintf("%s binding [%s] -> instance of %T", b.kind, b.abstract, b.concrete)
		}
		return fmt.Sprintf("%s binding [%s] -> %v", b.kind, b.abstract, b.concrete)
	}
}

// ── Type identifiers ──────────────────────────────────────────────────────────

// TypeKey returns the package-qualified type name of v, used as the abstract
// for instance bindings. A reflect.Type argument is described directly, and
// pointer types are described by their element type.
//
//	container.TypeKey(&UserRepository{})  // "example.com/app.UserRepository"
func TypeKey(v any) string {
	if v == nil {
		return ""
	}
	t, ok := v.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(v)
	}
	return typeName(t)
}

// Key returns the TypeKey of T. It works for interface types, which TypeKey
// cannot see through a value.
//
//	container.Bind(container.Key[Logger]()).To(container.Key[ConsoleLogger]())
func Key[T any]() string {
	return typeName(reflect.TypeOf((*T)(nil)).Elem())
}

func typeName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" || t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}
