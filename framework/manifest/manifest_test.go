package manifest_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-container/framework/container"
	"github.com/km-arc/go-container/framework/manifest"
)

var factories = map[string]container.Factory{
	"clock": func() any { return time.Now },
}

func TestLoad(t *testing.T) {
	m, err := manifest.Load(filepath.Join("testdata", "bindings.yaml"))
	require.NoError(t, err)

	require.Len(t, m.Bindings, 2)
	assert.Equal(t, manifest.Entry{
		Abstract: "Cache",
		To:       "RedisCache",
		As:       []string{"cache", "store"},
		Shared:   true,
	}, m.Bindings[0])
	assert.Equal(t, "clock", m.Bindings[1].Factory)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := manifest.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParse_Empty(t *testing.T) {
	m, err := manifest.Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, m.Bindings)
}

func TestParse_UnknownField(t *testing.T) {
	_, err := manifest.Parse(strings.NewReader("bindings:\n  - abstract: A\n    singleton: true\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "singleton")
}

func TestApply(t *testing.T) {
	m, err := manifest.Load(filepath.Join("testdata", "bindings.yaml"))
	require.NoError(t, err)
	c := container.New()

	require.NoError(t, m.Apply(c, manifest.Options{Factories: factories}))

	cache, ok := c.Binding("store")
	require.True(t, ok)
	assert.Equal(t, container.KindShared, cache.Kind())
	assert.Equal(t, "Cache", cache.Abstract())

	clock, ok := c.Binding("Clock")
	require.True(t, ok)
	assert.Equal(t, container.KindFactory, clock.Kind())
}

func TestApply_UnknownFactory(t *testing.T) {
	m, err := manifest.Load(filepath.Join("testdata", "bindings.yaml"))
	require.NoError(t, err)
	c := container.New()

	err = m.Apply(c, manifest.Options{})
	assert.ErrorIs(t, err, manifest.ErrUnknownFactory)
	assert.Contains(t, err.Error(), "manifest entry 1")

	// Entries before the failing one stay applied.
	assert.True(t, c.Bound("Cache"))
}

func TestApply_InvalidEntry(t *testing.T) {
	m := &manifest.Manifest{Bindings: []manifest.Entry{{Abstract: "Lonely"}}}

	err := m.Apply(container.New(), manifest.Options{})
	assert.ErrorIs(t, err, container.ErrConfiguration)
	assert.Contains(t, err.Error(), "manifest entry 0")
}

func TestApply_Override(t *testing.T) {
	no, yes := false, true

	tests := []struct {
		name     string
		strict   bool
		override *bool
		wantErr  bool
	}{
		{name: "lenient default", strict: false},
		{name: "strict default", strict: true, wantErr: true},
		{name: "strict, entry overrides", strict: true, override: &yes},
		{name: "lenient, entry refuses", strict: false, override: &no, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := container.New()
			c.MustBind(container.Bind("Cache").To("MemoryCache").MustBuild())

			m := &manifest.Manifest{Bindings: []manifest.Entry{
				{Abstract: "Cache", To: "RedisCache", Override: tt.override},
			}}
			err := m.Apply(c, manifest.Options{Strict: tt.strict})

			got, _ := c.Peek("Cache")
			concrete, _ := got.ConcreteType()
			if tt.wantErr {
				assert.ErrorIs(t, err, container.ErrAlreadyRegistered)
				assert.Equal(t, "MemoryCache", concrete)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "RedisCache", concrete)
		})
	}
}
