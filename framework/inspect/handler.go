// Package inspect serves a read-only JSON view of a container's bindings.
//
//	GET /bindings                      all bindings, sorted by abstract
//	GET /bindings/{abstract}           one binding, by abstract or alias
//	GET /bindings/{abstract}?aliases=false
//	GET /aliases                       alias → abstract redirects
//
// Looking up a single binding goes through Container.Binding, so a 404
// also dispatches lifecycle.UnknownBinding. Listing uses Peek and is silent.
package inspect

import (
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/km-arc/go-container/framework/container"
)

// View is the JSON shape of one binding.
type View struct {
	Abstract string   `json:"abstract"`
	Kind     string   `json:"kind"`
	Concrete string   `json:"concrete,omitempty"`
	Instance string   `json:"instance,omitempty"`
	Aliases  []string `json:"aliases"`
	Shared   bool     `json:"shared"`
}

// NewView describes b.
func NewView(b *container.Binding) View {
	v := View{
		Abstract: b.Abstract(),
		Kind:     b.Kind().String(),
		Aliases:  b.Aliases(),
		Shared:   b.Shared(),
	}
	if v.Aliases == nil {
		v.Aliases = []string{}
	}
	if concrete, ok := b.ConcreteType(); ok {
		v.Concrete = concrete
	}
	if inst, ok := b.Instance(); ok {
		v.Instance = fmt.Sprintf("%T", inst)
	}
	return v
}

// Handler returns the inspector for c.
func Handler(c *container.Container, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handler{c: c}

	r := newRouter(logger)
	r.Prefix("/bindings", func(r *router) {
		r.Get("/", h.list)
		r.Get("/*", h.show)
	})
	r.Get("/aliases", h.aliases)
	return r
}

type handler struct {
	c *container.Container
}

func (h *handler) list(w http.ResponseWriter, _ *http.Request) {
	abstracts := h.c.Abstracts()
	views := make([]View, 0, len(abstracts))
	for _, abstract := range abstracts {
		if b, ok := h.c.Peek(abstract, container.IgnoreAliases()); ok {
			views = append(views, NewView(b))
		}
	}
	newResponse(w).Success(views)
}

func (h *handler) show(w http.ResponseWriter, r *http.Request) {
	res := newResponse(w)

	// Abstracts are often package paths, so the wildcard is used.
	abstract := param(r, "*")

	var opts []container.LookupOption
	if raw := r.URL.Query().Get("aliases"); raw != "" {
		useAliases, err := strconv.ParseBool(raw)
		if err != nil {
			res.Error(http.StatusBadRequest, "The aliases parameter must be a boolean.")
			return
		}
		if !useAliases {
			opts = append(opts, container.IgnoreAliases())
		}
	}

	b, ok := h.c.Binding(abstract, opts...)
	if !ok {
		res.NotFound(fmt.Sprintf("No binding for [%s].", abstract))
		return
	}
	res.Success(NewView(b))
}

func (h *handler) aliases(w http.ResponseWriter, _ *http.Request) {
	newResponse(w).Success(h.c.Aliases())
}
