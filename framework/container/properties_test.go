package container_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/km-arc/go-container/framework/container"
	"github.com/km-arc/go-container/framework/container/lifecycle"
)

// Abstracts start upper-case and aliases lower-case so the two never collide.
var (
	abstractGen = rapid.StringMatching(`[A-Z][A-Za-z0-9]{0,8}`)
	aliasGen    = rapid.StringMatching(`[a-z][a-z0-9.]{0,8}`)
	aliasesGen  = rapid.SliceOfDistinct(aliasGen, func(s string) string { return s })
)

func drawBinding(t *rapid.T, label string) *container.Binding {
	b := container.Bind(abstractGen.Draw(t, label+".abstract")).
		As(aliasesGen.Draw(t, label+".aliases")...)
	if rapid.Bool().Draw(t, label+".factory") {
		b.Using(func() any { return nil })
	} else {
		b.To(abstractGen.Draw(t, label+".concrete"))
	}
	if rapid.Bool().Draw(t, label+".shared") {
		b.Shared()
	}
	return mustBuild(t, b)
}

func TestProperty_UnboundAbstractMisses(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := container.New()
		bound := rapid.SliceOfDistinct(abstractGen, func(s string) string { return s }).Draw(t, "bound")
		for _, a := range bound {
			c.MustBind(container.Bind(a).To("Impl").MustBuild())
		}
		missing := abstractGen.Filter(func(s string) bool {
			for _, a := range bound {
				if a == s {
					return false
				}
			}
			return true
		}).Draw(t, "missing")
		rec := record(c)

		b, ok := c.Binding(missing)
		require.False(t, ok)
		require.Nil(t, b)
		require.False(t, c.Bound(missing))
		require.Equal(t, []lifecycle.Event{
			lifecycle.UnknownBinding{Abstract: missing},
			lifecycle.UnknownBinding{Abstract: missing},
		}, rec.take())
	})
}

func TestProperty_BindThenLookupReturnsBinding(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := container.New()
		b := drawBinding(t, "b")

		require.NoError(t, c.Bind(b))

		got, ok := c.Binding(b.Abstract())
		require.True(t, ok)
		require.Same(t, b, got)
		for _, alias := range b.Aliases() {
			viaAlias, ok := c.Binding(alias)
			require.True(t, ok, alias)
			require.Same(t, got, viaAlias, alias)
		}
	})
}

func TestProperty_EventPairsPerBind(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := container.New()
		rec := record(c)
		seen := map[string]bool{}

		for i, n := 0, rapid.IntRange(1, 20).Draw(t, "n"); i < n; i++ {
			b := drawBinding(t, "b")
			require.NoError(t, c.Bind(b))

			want := []lifecycle.Event{lifecycle.Binding{Abstract: b.Abstract()}, lifecycle.Bound{Abstract: b.Abstract()}}
			if seen[b.Abstract()] {
				want = []lifecycle.Event{lifecycle.Rebinding{Abstract: b.Abstract()}, lifecycle.Rebound{Abstract: b.Abstract()}}
			}
			require.Equal(t, want, rec.take())
			seen[b.Abstract()] = true
		}
	})
}

func TestProperty_NoOverrideLeavesStateUntouched(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := container.New()
		first := drawBinding(t, "first")
		require.NoError(t, c.Bind(first))

		abstracts, aliases := c.Abstracts(), c.Aliases()
		rec := record(c)

		second := mustBuild(t, container.Bind(first.Abstract()).To("Other").As(aliasesGen.Draw(t, "aliases")...))

		err := c.Bind(second, container.NoOverride())
		require.ErrorIs(t, err, container.ErrAlreadyRegistered)
		require.Empty(t, rec.take())
		require.Equal(t, abstracts, c.Abstracts())
		require.Equal(t, aliases, c.Aliases())
		got, _ := c.Peek(first.Abstract())
		require.Same(t, first, got)
	})
}

func TestProperty_BuilderCache(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		abstract := abstractGen.Draw(t, "abstract")
		concrete := abstractGen.Draw(t, "concrete")
		aliases := aliasesGen.Draw(t, "aliases")
		b := container.Bind(abstract).To(concrete).As(aliases...)

		first := mustBuild(t, b)
		require.Same(t, first, mustBuild(t, b))

		switch rapid.IntRange(0, 2).Draw(t, "mutator") {
		case 0:
			b.To(concrete)
		case 1:
			b.As(aliases...)
		case 2:
			b.Shared()
		}
		second := mustBuild(t, b)
		require.NotSame(t, first, second)
		require.Equal(t, first.Abstract(), second.Abstract())
		require.Equal(t, first.Aliases(), second.Aliases())
	})
}

func TestProperty_BuilderShape(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		abstract := abstractGen.Draw(t, "abstract")
		concrete := abstractGen.Draw(t, "concrete")
		alias := aliasGen.Draw(t, "alias")

		b := mustBuild(t, container.Bind(abstract).To(concrete).As(alias).Shared())

		assert.Equal(t, abstract, b.Abstract())
		got, ok := b.ConcreteType()
		assert.True(t, ok)
		assert.Equal(t, concrete, got)
		assert.Equal(t, []string{alias}, b.Aliases())
		assert.True(t, b.Shared())
		assert.Nil(t, b.Factory())

		_, err := container.Bind(abstract).Build()
		assert.ErrorIs(t, err, container.ErrConfiguration)
	})
}
