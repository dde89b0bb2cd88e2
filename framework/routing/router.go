package routing

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Router wraps chi.Router as the framework's transport boundary. The binder
// mounts one composed handler per (method, absolute path); the router itself
// never inspects request bodies.
type Router struct {
	mux chi.Router
}

// New creates a Router with RealIP resolution enabled.
func New() *Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	return &Router{mux: r}
}

// Use mounts transport-level middleware on the underlying mux. Must be called
// before any route is registered (chi requirement).
func (r *Router) Use(mw ...func(http.Handler) http.Handler) {
	r.mux.Use(mw...)
}

// Method registers a handler under an HTTP method and pattern.
func (r *Router) Method(method, pattern string, h http.Handler) {
	r.mux.Method(method, pattern, h)
}

// Get registers a plain GET handler (used for the docs endpoints).
func (r *Router) Get(pattern string, h http.HandlerFunc) {
	r.mux.Get(pattern, h)
}

// NotFound installs the handler invoked when no route matches.
func (r *Router) NotFound(h http.HandlerFunc) {
	r.mux.NotFound(h)
}

// Static serves a filesystem at the given prefix.
//
//	router.Static("/public", "./public")
func (r *Router) Static(prefix, dir string) {
	fs := http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))
	r.mux.Get(prefix+"/*", func(w http.ResponseWriter, req *http.Request) {
		fs.ServeHTTP(w, req)
	})
}

// Param extracts a URL parameter from a request.
func Param(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Handler returns the underlying http.Handler (for testing).
func (r *Router) Handler() http.Handler {
	return r.mux
}
