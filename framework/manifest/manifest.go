// Package manifest declares bindings in YAML.
//
//	bindings:
//	  - abstract: Cache
//	    to: RedisCache
//	    as: [cache, store]
//	    shared: true
//	  - abstract: Clock
//	    factory: clock     # looked up in the factories passed to Apply
//	    override: false    # fail instead of replacing an existing binding
//
// Instances cannot be declared in YAML; bind them in code.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-container/framework/container"
)

// ErrUnknownFactory is returned when an entry names a factory that was not
// supplied.
var ErrUnknownFactory = errors.New("manifest: unknown factory")

// Manifest is a parsed binding manifest.
type Manifest struct {
	Bindings []Entry `yaml:"bindings"`
}

// Entry declares one binding.
type Entry struct {
	Abstract string   `yaml:"abstract"`
	To       string   `yaml:"to"`
	As       []string `yaml:"as"`
	Shared   bool     `yaml:"shared"`
	Factory  string   `yaml:"factory"`

	// Override defaults to the strictness passed to Apply when unset.
	Override *bool `yaml:"override"`
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// Parse decodes a manifest. Unknown keys are rejected.
func Parse(r io.Reader) (*Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return &m, nil
		}
		return nil, fmt.Errorf("manifest: %w", err)
	}
	return &m, nil
}

// Builder returns a builder configured from the entry. factories resolves
// the entry's factory name.
func (e Entry) Builder(factories map[string]container.Factory) (*container.Builder, error) {
	b := container.Bind(e.Abstract)
	if e.To != "" {
		b.To(e.To)
	}
	if e.Factory != "" {
		f, ok := factories[e.Factory]
		if !ok {
			return nil, fmt.Errorf("%w: %q for [%s]", ErrUnknownFactory, e.Factory, e.Abstract)
		}
		b.Using(f)
	}
	b.As(e.As...)
	if e.Shared {
		b.Shared()
	}
	return b, nil
}

// Options controls Apply.
type Options struct {
	// Factories resolves entry factory names.
	Factories map[string]container.Factory

	// Strict applies NoOverride to entries that do not set override.
	Strict bool
}

// Apply builds every entry and binds it on c, in order. It stops at the
// first error; bindings applied before it stay registered.
func (m *Manifest) Apply(c *container.Container, opts Options) error {
	for i, e := range m.Bindings {
		b, err := e.Builder(opts.Factories)
		if err != nil {
			return fmt.Errorf("manifest entry %d: %w", i, err)
		}
		binding, err := b.Build()
		if err != nil {
			return fmt.Errorf("manifest entry %d: %w", i, err)
		}

		override := !opts.Strict
		if e.Override != nil {
			override = *e.Override
		}
		var bindOpts []container.BindOption
		if !override {
			bindOpts = append(bindOpts, container.NoOverride())
		}
		if err := c.Bind(binding, bindOpts...); err != nil {
			return fmt.Errorf("manifest entry %d: %w", i, err)
		}
	}
	return nil
}
