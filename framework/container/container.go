package container

import (
	"errors"
	"fmt"
	"sync"
)

// ── Lifetimes ─────────────────────────────────────────────────────────────────

// Lifetime controls how long a resolved instance is cached.
type Lifetime int

const (
	// Singleton — one instance for the whole process.
	// Nest: @Injectable() (the default scope)
	Singleton Lifetime = iota

	// Request — one instance per in-flight request id.
	// Nest: @Injectable({ scope: Scope.REQUEST })
	Request

	// Transient — a fresh instance on every resolution, never cached.
	// Nest: @Injectable({ scope: Scope.TRANSIENT })
	Transient
)

func (l Lifetime) String() string {
	switch l {
	case Singleton:
		return "singleton"
	case Request:
		return "request"
	case Transient:
		return "transient"
	}
	return fmt.Sprintf("Lifetime(%d)", int(l))
}

// ── Descriptors ───────────────────────────────────────────────────────────────

// Dep names one dependency of a factory, in parameter order.
type Dep struct {
	Token    string
	Optional bool // substitute nil when the token is not registered
}

// Needs declares a required dependency token.
func Needs(token string) Dep { return Dep{Token: token} }

// Optional declares a dependency that resolves to nil when unregistered.
//
//	// Nest: constructor(@Optional() private cache?: CacheService) {}
//	container.Provide("users.service", container.Singleton, newUsersService,
//	    container.Needs("db"),
//	    container.Optional("cache"),
//	)
func Optional(token string) Dep { return Dep{Token: token, Optional: true} }

// FactoryFunc builds a value from its resolved dependencies.
// deps arrive in the order the Descriptor declared them.
type FactoryFunc func(deps ...any) (any, error)

// Descriptor registers one provider under a token. Exactly one descriptor is
// live per token; re-registering replaces the previous one.
type Descriptor struct {
	Token    string
	Lifetime Lifetime
	Factory  FactoryFunc
	Deps     []Dep

	value    any
	hasValue bool
}

// Provide describes a factory-built provider.
//
//	// Nest: { provide: 'USERS_SERVICE', useFactory: ..., inject: [Repo] }
//	container.Provide("users.service", container.Singleton,
//	    func(deps ...any) (any, error) {
//	        return &UsersService{Repo: deps[0].(*Repo)}, nil
//	    },
//	    container.Needs("users.repo"),
//	)
func Provide(token string, lifetime Lifetime, factory FactoryFunc, deps ...Dep) Descriptor {
	return Descriptor{Token: token, Lifetime: lifetime, Factory: factory, Deps: deps}
}

// Value describes a pre-built value. Values are singletons by definition and
// never pass through the factory path.
//
//	// Nest: { provide: 'CONFIG', useValue: cfg }
//	container.Value("config", cfg)
func Value(token string, v any) Descriptor {
	return Descriptor{Token: token, Lifetime: Singleton, value: v, hasValue: true}
}

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the dependency-injection container — mirrors Nest's Injector.
//
// Tokens are opaque strings compared by identity. Each token maps to at most
// one Descriptor (last registration wins) and resolves per its Lifetime:
// singletons once per process, request providers once per request id,
// transients on every call.
type Container struct {
	mu sync.RWMutex

	// token → descriptor
	providers map[string]*Descriptor

	// token → resolved singleton instance
	singletons map[string]any

	// requestID → token → instance
	requests map[string]map[string]any
}

// New creates an empty container.
func New() *Container {
	return &Container{
		providers:  make(map[string]*Descriptor),
		singletons: make(map[string]any),
		requests:   make(map[string]map[string]any),
	}
}

// ── Registration ──────────────────────────────────────────────────────────────

// Register stores a provider descriptor. A second registration under the same
// token replaces the first and drops any cached singleton so the next
// resolution rebuilds with the new descriptor.
func (c *Container) Register(d Descriptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.singletons, d.Token)
	c.providers[d.Token] = &d
}

// Bound returns true if a descriptor is registered for token.
func (c *Container) Bound(token string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.providers[token]
	return ok
}

// Tokens returns all registered tokens (for debugging).
func (c *Container) Tokens() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.providers))
	for t := range c.providers {
		out = append(out, t)
	}
	return out
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Make resolves a token outside any request scope. Request-lifetime tokens
// cannot be resolved this way.
func (c *Container) Make(token string) (any, error) {
	return c.make(token, "", nil)
}

// MakeScoped resolves a token within the scope of one request id.
// Request-lifetime instances are cached under (requestID, token) until
// ClearRequestScope(requestID) runs.
func (c *Container) MakeScoped(requestID, token string) (any, error) {
	return c.make(token, requestID, nil)
}

// make is the recursive resolver. stack holds the tokens currently being
// built, used to detect constructor cycles.
func (c *Container) make(token, requestID string, stack []string) (any, error) {
	d := c.provider(token)
	if d == nil {
		return nil, &ProviderNotFoundError{Token: token}
	}

	switch d.Lifetime {
	case Singleton:
		c.mu.RLock()
		v, ok := c.singletons[token]
		c.mu.RUnlock()
		if ok {
			return v, nil
		}
	case Request:
		if requestID == "" {
			return nil, fmt.Errorf("container: [%s] is request-scoped but no request is active", token)
		}
		c.mu.RLock()
		v, ok := c.requests[requestID][token]
		c.mu.RUnlock()
		if ok {
			return v, nil
		}
	}

	for _, s := range stack {
		if s == token {
			return nil, &CycleError{Stack: append(stack, token)}
		}
	}

	v, err := c.build(d, requestID, append(stack, token))
	if err != nil {
		return nil, err
	}

	// Cache per lifetime. If a concurrent resolution already stored an
	// instance, return the stored one so a (token, scope) pair never
	// observes two live instances.
	switch d.Lifetime {
	case Singleton:
		c.mu.Lock()
		if prior, ok := c.singletons[token]; ok {
			v = prior
		} else {
			c.singletons[token] = v
		}
		c.mu.Unlock()
	case Request:
		c.mu.Lock()
		scope, ok := c.requests[requestID]
		if !ok {
			scope = make(map[string]any)
			c.requests[requestID] = scope
		}
		if prior, ok := scope[token]; ok {
			v = prior
		} else {
			scope[token] = v
		}
		c.mu.Unlock()
	}
	return v, nil
}

// build runs a descriptor's factory after resolving its declared deps.
func (c *Container) build(d *Descriptor, requestID string, stack []string) (any, error) {
	if d.hasValue {
		return d.value, nil
	}
	if d.Factory == nil {
		return nil, fmt.Errorf("container: [%s] has neither a value nor a factory", d.Token)
	}

	deps := make([]any, len(d.Deps))
	for i, dep := range d.Deps {
		v, err := c.make(dep.Token, requestID, stack)
		if err != nil {
			var notFound *ProviderNotFoundError
			if dep.Optional && errors.As(err, &notFound) {
				deps[i] = nil
				continue
			}
			return nil, fmt.Errorf("container: building [%s]: %w", d.Token, err)
		}
		deps[i] = v
	}

	v, err := d.Factory(deps...)
	if err != nil {
		return nil, fmt.Errorf("container: factory for [%s]: %w", d.Token, err)
	}
	return v, nil
}

func (c *Container) provider(token string) *Descriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.providers[token]
}

// ── Request scope ─────────────────────────────────────────────────────────────

// ClearRequestScope evicts every instance cached under requestID.
// No-op when the id holds nothing. Must run exactly once per dispatched
// request, on every exit path.
func (c *Container) ClearRequestScope(requestID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.requests, requestID)
}

// ActiveScopes returns the number of live request partitions (for tests).
func (c *Container) ActiveScopes() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.requests)
}

// Flush resets the container: descriptors, singletons and request caches.
func (c *Container) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.providers = make(map[string]*Descriptor)
	c.singletons = make(map[string]any)
	c.requests = make(map[string]map[string]any)
}

// ── Generics helpers ──────────────────────────────────────────────────────────

// Resolve is a generic helper that calls Make and type-asserts the result.
//
//	cfg, err := container.Resolve[*config.Config](c, "config")
func Resolve[T any](c *Container, token string) (T, error) {
	var zero T
	v, err := c.Make(token)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("container: Resolve[%T]: [%s] resolved to %T", zero, token, v)
	}
	return typed, nil
}

// ResolveScoped is Resolve within a request scope.
func ResolveScoped[T any](c *Container, requestID, token string) (T, error) {
	var zero T
	v, err := c.MakeScoped(requestID, token)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("container: ResolveScoped[%T]: [%s] resolved to %T", zero, token, v)
	}
	return typed, nil
}
