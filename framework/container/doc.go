// Package container provides a Nest-compatible dependency-injection container
// with lifetime scopes.
//
// # Overview
//
// The container maps provider tokens to descriptors and resolves them on
// demand. A token is an opaque string compared by identity. A descriptor is
// either a pre-built value or a factory plus an ordered list of dependency
// tokens. Because Go has no runtime constructor reflection, injection points
// are declared data: each factory names the tokens it needs, in order, and
// receives the resolved instances as arguments.
//
// # Lifetimes
//
//	container.Singleton  one instance per process
//	container.Request    one instance per request id
//	container.Transient  a new instance on every resolution
//
// # Registering
//
//	c := container.New()
//
//	// Pre-built value
//	// Nest: { provide: 'CONFIG', useValue: cfg }
//	c.Register(container.Value("config", cfg))
//
//	// Factory with dependencies
//	// Nest: { provide: UsersService, useFactory: ..., inject: [UsersRepo] }
//	c.Register(container.Provide("users.service", container.Singleton,
//	    func(deps ...any) (any, error) {
//	        return &UsersService{Repo: deps[0].(*UsersRepo)}, nil
//	    },
//	    container.Needs("users.repo"),
//	))
//
//	// Optional dependency — nil when unregistered
//	// Nest: constructor(@Optional() cache?: CacheService) {}
//	container.Provide("svc", container.Singleton, factory,
//	    container.Optional("cache"))
//
// # Resolving
//
//	raw, err := c.Make("users.service")
//	svc, err := container.Resolve[*UsersService](c, "users.service")
//
//	// Within a request
//	ctx, err := c.MakeScoped(requestID, "request.context")
//	...
//	c.ClearRequestScope(requestID) // evicts the whole partition
//
// # Failure modes
//
// An unregistered, non-optional token yields *ProviderNotFoundError. A
// circular factory dependency yields *CycleError listing the resolution path;
// there is no cycle breaking, the container fails fast.
package container
