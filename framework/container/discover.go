package container

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Meta carries binding declarations in struct tags. Embed it as a blank
// field:
//
//	type RedisCache struct {
//	    _ container.Meta `bind:"Cache" as:"cache,store" shared:"true" factory:"Make"`
//	    ...
//	}
//
//	func (*RedisCache) Make() any { return newRedisCache() }
//
// bind sets the abstract (default: the type's TypeKey), as lists aliases,
// shared marks the binding shared and factory names a method with no
// parameters and one result that produces instances.
type Meta struct{}

var metaType = reflect.TypeOf(Meta{})

// BindingConfig is the binding configuration declared by a type.
type BindingConfig struct {
	Abstract   string
	Concrete   string
	Aliases    []string
	Shared     bool
	FactoryRef string
}

// DeriveBindingConfig reads the Meta tags of t (or the type t points to).
// Types without a Meta field bind to themselves.
func DeriveBindingConfig(t reflect.Type) (BindingConfig, error) {
	if t == nil {
		return BindingConfig{}, &ConfigurationError{Reason: "cannot derive a binding from a nil type"}
	}
	base := t
	if base.Kind() == reflect.Pointer {
		base = base.Elem()
	}

	cfg := BindingConfig{Abstract: TypeKey(base), Concrete: TypeKey(base)}
	if base.Kind() != reflect.Struct {
		return cfg, nil
	}

	for i := 0; i < base.NumField(); i++ {
		f := base.Field(i)
		if f.Type != metaType {
			continue
		}
		if abstract, ok := f.Tag.Lookup("bind"); ok && abstract != "" {
			cfg.Abstract = abstract
		}
		if as := f.Tag.Get("as"); as != "" {
			for _, alias := range strings.Split(as, ",") {
				if alias = strings.TrimSpace(alias); alias != "" {
					cfg.Aliases = append(cfg.Aliases, alias)
				}
			}
		}
		if shared := f.Tag.Get("shared"); shared != "" {
			v, err := strconv.ParseBool(shared)
			if err != nil {
				return cfg, &ConfigurationError{Abstract: cfg.Abstract, Reason: fmt.Sprintf("invalid shared tag %q", shared)}
			}
			cfg.Shared = v
		}
		cfg.FactoryRef = f.Tag.Get("factory")
		break
	}
	return cfg, nil
}

// From derives a builder from the Meta declarations of v's type. v may be a
// value, a pointer or a reflect.Type; it is only used for its type.
//
//	b, err := container.From((*RedisCache)(nil))
//	c.MustBind(b.MustBuild())
func From(v any) (*Builder, error) {
	t, ok := v.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(v)
	}
	cfg, err := DeriveBindingConfig(t)
	if err != nil {
		return nil, err
	}

	b := Bind(cfg.Abstract).To(cfg.Concrete).As(cfg.Aliases...)
	if cfg.Shared {
		b.Shared()
	}
	if cfg.FactoryRef != "" {
		factory, err := factoryMethod(t, cfg)
		if err != nil {
			return nil, err
		}
		b.Using(factory)
	}
	return b, nil
}

// factoryMethod looks the factory up on the pointer type so both value and
// pointer receivers are found, and calls it on a zero value.
func factoryMethod(t reflect.Type, cfg BindingConfig) (Factory, error) {
	if t.Kind() != reflect.Pointer {
		t = reflect.PointerTo(t)
	}
	m, ok := t.MethodByName(cfg.FactoryRef)
	if !ok {
		return nil, &ConfigurationError{Abstract: cfg.Abstract, Reason: fmt.Sprintf("factory method %s not found on %s", cfg.FactoryRef, t)}
	}
	// m.Type includes the receiver.
	if m.Type.NumIn() != 1 || m.Type.NumOut() != 1 {
		return nil, &ConfigurationError{Abstract: cfg.Abstract, Reason: fmt.Sprintf("factory method %s must take no arguments and return one value", cfg.FactoryRef)}
	}

	elem := t.Elem()
	return func() any {
		recv := reflect.New(elem)
		return m.Func.Call([]reflect.Value{recv})[0].Interface()
	}, nil
}
