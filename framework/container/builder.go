package container

import (
	"reflect"
	"slices"
)

// Builder accumulates the configuration of a Binding.
//
//	b, err := container.Bind("Cache").
//	    To("RedisCache").
//	    As("cache").
//	    Shared().
//	    Build()
//
// Every mutating call discards the previously built Binding; Build is
// otherwise idempotent and returns the same *Binding each time.
type Builder struct {
	abstract string

	concrete any
	instance bool

	aliases []string
	factory Factory
	shared  bool

	// built is the cached result of Build, or the binding passed to Extend.
	built *Binding
}

// Bind starts a builder for abstract.
//
// A string is used as the abstract directly and a reflect.Type is converted
// with TypeKey. Any other value is treated as a live instance: the abstract
// becomes its TypeKey and the instance becomes the (shared) concrete.
func Bind(abstract any) *Builder {
	switch a := abstract.(type) {
	case string:
		return &Builder{abstract: a}
	case reflect.Type:
		return &Builder{abstract: TypeKey(a)}
	case nil:
		return &Builder{}
	default:
		return (&Builder{abstract: TypeKey(a)}).To(a)
	}
}

// Extend starts a builder seeded with every field of an existing binding.
// Until a mutating call is made, Build returns b itself.
func Extend(b *Binding) *Builder {
	// Fields are copied directly: going through To would re-apply the
	// instance-implies-shared rule and drop the cached binding.
	return &Builder{
		abstract: b.abstract,
		concrete: b.concrete,
		instance: b.instance,
		aliases:  slices.Clone(b.aliases),
		factory:  b.factory,
		shared:   b.shared,
		built:    b,
	}
}

// To sets the concrete. Strings and reflect.Type values are type
// identifiers; any other non-nil value is a live instance, which also marks
// the binding shared. nil and "" clear the concrete. Any factory is cleared.
func (b *Builder) To(concrete any) *Builder {
	switch c := concrete.(type) {
	case nil:
		b.concrete, b.instance = nil, false
	case string:
		if c == "" {
			b.concrete, b.instance = nil, false
		} else {
			b.concrete, b.instance = c, false
		}
	case reflect.Type:
		b.concrete, b.instance = TypeKey(c), false
	default:
		b.concrete, b.instance = c, true
		b.shared = true
	}
	b.factory = nil
	b.reset()
	return b
}

// As adds aliases. Aliases form an ordered set; empty strings and the
// abstract itself are ignored.
func (b *Builder) As(aliases ...string) *Builder {
	for _, alias := range aliases {
		if alias == "" || alias == b.abstract || slices.Contains(b.aliases, alias) {
			continue
		}
		b.aliases = append(b.aliases, alias)
	}
	b.reset()
	return b
}

// Using sets the factory and clears any concrete.
func (b *Builder) Using(factory Factory) *Builder {
	b.factory = factory
	b.concrete, b.instance = nil, false
	b.reset()
	return b
}

// Shared marks the binding shared.
func (b *Builder) Shared() *Builder {
	b.shared = true
	b.reset()
	return b
}

func (b *Builder) reset() { b.built = nil }

// Build produces the Binding.
//
// A factory yields a KindFactory binding (carrying the shared flag), a
// shared binding yields KindShared, anything else KindGeneric.
func (b *Builder) Build() (*Binding, error) {
	if b.built != nil {
		return b.built, nil
	}

	if err := validate(b.abstract, b.concrete, b.factory); err != nil {
		return nil, err
	}

	binding := &Binding{
		abstract: b.abstract,
		aliases:  slices.Clone(b.aliases),
		shared:   b.shared,
	}

	switch {
	case b.factory != nil:
		binding.kind = KindFactory
		binding.factory = b.factory
	case b.shared:
		binding.kind = KindShared
		binding.concrete, binding.instance = b.concrete, b.instance
	default:
		if b.instance {
			return nil, &ConfigurationError{Abstract: b.abstract, Reason: "bindings with instance concretes must be shared"}
		}
		binding.kind = KindGeneric
		binding.concrete = b.concrete
	}

	b.built = binding
	return binding, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *Binding {
	binding, err := b.Build()
	if err != nil {
		panic(err)
	}
	return binding
}

// validate checks the fields every binding needs: an abstract, and a
// concrete or a factory to resolve it with.
func validate(abstract string, concrete any, factory Factory) error {
	if abstract == "" {
		return &ConfigurationError{Reason: "bindings require an abstract"}
	}
	if concrete == nil && factory == nil {
		return &ConfigurationError{Abstract: abstract, Reason: "bindings require a concrete or a factory"}
	}
	return nil
}
