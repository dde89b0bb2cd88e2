package metadata

import (
	"sync"

	gohttp "github.com/km-arc/go-nest/framework/http"
)

// ── Descriptors ──────────────────────────────────────────────────────────────

// RouteDescriptor is the accumulated facts for one controller method:
// path, HTTP method, parameter bindings and the per-route pipeline pieces.
// Built incrementally by the route builder; repeated declarations for the
// same handler name append, never overwrite.
type RouteDescriptor struct {
	Method      string
	Path        string
	HandlerName string
	Handler     gohttp.HandlerFunc

	Bindings     []gohttp.ParamBinding
	Middleware   []gohttp.Middleware
	Guards       []gohttp.Guard
	Pipes        []gohttp.Pipe
	Interceptors []gohttp.Interceptor
	Filter       gohttp.ExceptionFilter

	// Documentation metadata, merged into the OpenAPI document at bind time.
	Summary     string
	Description string
}

// ControllerDescriptor holds a controller's prefix, tags, class-level
// pipeline pieces and its route table.
type ControllerDescriptor struct {
	Token  string
	Prefix string
	Tags   []string

	Middleware   []gohttp.Middleware
	Guards       []gohttp.Guard
	Interceptors []gohttp.Interceptor
	Filter       gohttp.ExceptionFilter

	Routes []*RouteDescriptor
}

// route returns the descriptor for handlerName, creating it on first use.
// Keying by handler name is what makes declarations additive: a second
// builder call for the same handler lands on the same descriptor.
func (cd *ControllerDescriptor) route(handlerName string) *RouteDescriptor {
	for _, rd := range cd.Routes {
		if rd.HandlerName == handlerName {
			return rd
		}
	}
	rd := &RouteDescriptor{HandlerName: handlerName}
	cd.Routes = append(cd.Routes, rd)
	return rd
}

// ── Registry ─────────────────────────────────────────────────────────────────

// Registry associates controller tokens with their accumulated descriptors.
// It is owned by the application context (never process-wide), written
// through builders while controllers describe themselves, and read only by
// the route binder and dispatcher afterwards.
type Registry struct {
	mu          sync.RWMutex
	controllers map[string]*ControllerDescriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{controllers: make(map[string]*ControllerDescriptor)}
}

// Controller returns a builder for the controller registered under token.
// Calling it again with the same token continues on the same descriptor.
func (r *Registry) Controller(token string) *ControllerBuilder {
	r.mu.Lock()
	defer r.mu.Unlock()
	cd, ok := r.controllers[token]
	if !ok {
		cd = &ControllerDescriptor{Token: token}
		r.controllers[token] = cd
	}
	return &ControllerBuilder{registry: r, desc: cd}
}

// Descriptor returns the stored descriptor for token.
func (r *Registry) Descriptor(token string) (*ControllerDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cd, ok := r.controllers[token]
	return cd, ok
}

// Tokens returns all controller tokens seen so far.
func (r *Registry) Tokens() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.controllers))
	for t := range r.controllers {
		out = append(out, t)
	}
	return out
}
