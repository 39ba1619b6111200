package inspect

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// router wraps chi.Router with the few helpers the inspector needs.
type router struct {
	mux chi.Router
}

func newRouter(logger *zap.Logger) *router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))
	return &router{mux: r}
}

func (r *router) Get(pattern string, h http.HandlerFunc) { r.mux.Get(pattern, h) }

// Prefix creates a sub-router with a URL prefix.
func (r *router) Prefix(pattern string, fn func(r *router)) {
	r.mux.Route(pattern, func(mx chi.Router) {
		fn(&router{mux: mx})
	})
}

// param extracts a URL param.
func param(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

func (r *router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// requestLogger logs one line per request at debug level.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("inspect request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("took", time.Since(start)),
			)
		})
	}
}
