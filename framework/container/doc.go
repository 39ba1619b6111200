// Package container provides a binding registry for dependency injection.
//
// # Overview
//
// A Binding describes how an abstract (a type name or logical key) resolves:
// to a concrete type identifier, to a live shared instance, or to a factory.
// Bindings are built with a Builder, registered on a Container, and looked
// up by abstract or by alias. The container does not instantiate anything;
// it only stores and finds the rules.
//
// # Building
//
//	// Generic: abstract resolves to a concrete type
//	b, err := container.Bind("UserRepository").To("SQLUserRepository").Build()
//
//	// Shared: one value reused for every resolution
//	b, err := container.Bind("Cache").To("RedisCache").As("cache").Shared().Build()
//
//	// Instance: binding a live value, keyed by its TypeKey, always shared
//	b, err := container.Bind(cfg).Build()
//
//	// Factory
//	b, err := container.Bind("Clock").Using(func() any { return time.Now }).Build()
//
//	// Extend: derive a modified copy of an existing binding
//	b2, err := container.Extend(b).As("clock").Build()
//
// Build fails with *ConfigurationError when neither a concrete nor a factory
// was given.
//
// # Registering
//
//	c := container.New()
//	err := c.Bind(b)                          // replaces an existing binding
//	err = c.Bind(b, container.NoOverride())   // *AlreadyRegisteredError on conflict
//
// # Looking up
//
//	b, ok := c.Binding("cache")                          // abstract, then alias
//	b, ok = c.Binding("cache", container.IgnoreAliases()) // abstract only
//	ok = c.Bound("Cache")
//
// Binding and Bound dispatch lifecycle.UnknownBinding when nothing is found;
// Peek performs the same lookup silently.
//
// # Events
//
//	events.Listen(c.Events(), func(e lifecycle.Rebound) {
//	    log.Printf("%s was rebound", e.Abstract)
//	})
//
//	// Only for one abstract
//	events.Listen(c.Events(), onCache, container.OnAbstract("Cache", true))
//
// # Declaring bindings on types
//
//	type RedisCache struct {
//	    _ container.Meta `bind:"Cache" as:"cache" shared:"true"`
//	}
//
//	b, err := container.From((*RedisCache)(nil))
//
// # Service Providers
//
//	registry := container.NewProviderRegistry(c)
//	registry.Register(&CacheProvider{})
//	registry.Boot()
package container
