package metadata

import (
	"net/http"

	gohttp "github.com/km-arc/go-nest/framework/http"
)

// Controller is implemented by every controller instance. The binder calls
// Describe once after resolving the instance from the container; the builder
// writes the declarations into the registry.
//
//	func (uc *UsersController) Describe(b *metadata.ControllerBuilder) {
//	    b.Prefix("/users").Tags("users")
//	    b.Get("/{id}", "Show", uc.Show).PathParam(0, "id")
//	    b.Post("/", "Create", uc.Create).Body(0, &CreateUserInput{})
//	}
type Controller interface {
	Describe(b *ControllerBuilder)
}

// ── ControllerBuilder ────────────────────────────────────────────────────────

// ControllerBuilder declares class-level facts — the state a decorator like
// @Controller('users') or @UseGuards(...) would have attached.
// Every call appends to the stored descriptor.
type ControllerBuilder struct {
	registry *Registry
	desc     *ControllerDescriptor
}

// Prefix sets the controller's path prefix — Nest: @Controller('users').
func (b *ControllerBuilder) Prefix(prefix string) *ControllerBuilder {
	b.registry.mu.Lock()
	defer b.registry.mu.Unlock()
	b.desc.Prefix = prefix
	return b
}

// Tags appends documentation tags — Nest/Swagger: @ApiTags(...).
func (b *ControllerBuilder) Tags(tags ...string) *ControllerBuilder {
	b.registry.mu.Lock()
	defer b.registry.mu.Unlock()
	b.desc.Tags = append(b.desc.Tags, tags...)
	return b
}

// Use appends class-level middleware, run after global middleware and before
// method middleware, in declaration order.
func (b *ControllerBuilder) Use(mw ...gohttp.Middleware) *ControllerBuilder {
	b.registry.mu.Lock()
	defer b.registry.mu.Unlock()
	b.desc.Middleware = append(b.desc.Middleware, mw...)
	return b
}

// Guard appends class-level guards — Nest: @UseGuards on the class.
func (b *ControllerBuilder) Guard(g ...gohttp.Guard) *ControllerBuilder {
	b.registry.mu.Lock()
	defer b.registry.mu.Unlock()
	b.desc.Guards = append(b.desc.Guards, g...)
	return b
}

// Intercept appends class-level interceptors — Nest: @UseInterceptors.
func (b *ControllerBuilder) Intercept(i ...gohttp.Interceptor) *ControllerBuilder {
	b.registry.mu.Lock()
	defer b.registry.mu.Unlock()
	b.desc.Interceptors = append(b.desc.Interceptors, i...)
	return b
}

// Filter sets the class-level exception filter — Nest: @UseFilters.
func (b *ControllerBuilder) Filter(f gohttp.ExceptionFilter) *ControllerBuilder {
	b.registry.mu.Lock()
	defer b.registry.mu.Unlock()
	b.desc.Filter = f
	return b
}

// ── Route declarations ───────────────────────────────────────────────────────

// Route declares (or continues) the route for handlerName. Method, path and
// handler are set when non-zero; list-valued facts always append.
func (b *ControllerBuilder) Route(method, path, handlerName string, h gohttp.HandlerFunc) *RouteBuilder {
	b.registry.mu.Lock()
	defer b.registry.mu.Unlock()
	rd := b.desc.route(handlerName)
	if method != "" {
		rd.Method = method
	}
	if path != "" {
		rd.Path = path
	}
	if h != nil {
		rd.Handler = h
	}
	return &RouteBuilder{registry: b.registry, desc: rd}
}

// Get declares a GET route — Nest: @Get(path).
func (b *ControllerBuilder) Get(path, handlerName string, h gohttp.HandlerFunc) *RouteBuilder {
	return b.Route(http.MethodGet, path, handlerName, h)
}

// Post declares a POST route — Nest: @Post(path).
func (b *ControllerBuilder) Post(path, handlerName string, h gohttp.HandlerFunc) *RouteBuilder {
	return b.Route(http.MethodPost, path, handlerName, h)
}

// Put declares a PUT route.
func (b *ControllerBuilder) Put(path, handlerName string, h gohttp.HandlerFunc) *RouteBuilder {
	return b.Route(http.MethodPut, path, handlerName, h)
}

// Patch declares a PATCH route.
func (b *ControllerBuilder) Patch(path, handlerName string, h gohttp.HandlerFunc) *RouteBuilder {
	return b.Route(http.MethodPatch, path, handlerName, h)
}

// Delete declares a DELETE route.
func (b *ControllerBuilder) Delete(path, handlerName string, h gohttp.HandlerFunc) *RouteBuilder {
	return b.Route(http.MethodDelete, path, handlerName, h)
}

// ── RouteBuilder ─────────────────────────────────────────────────────────────

// RouteBuilder declares method-level facts for one route.
type RouteBuilder struct {
	registry *Registry
	desc     *RouteDescriptor
}

// Bind appends a raw parameter binding.
func (b *RouteBuilder) Bind(pb gohttp.ParamBinding) *RouteBuilder {
	b.registry.mu.Lock()
	defer b.registry.mu.Unlock()
	b.desc.Bindings = append(b.desc.Bindings, pb)
	return b
}

// Body binds the decoded request body to argument position — Nest: @Body().
// shape is a pointer prototype (e.g. &CreateUserInput{}); nil decodes into a
// plain map.
func (b *RouteBuilder) Body(position int, shape any) *RouteBuilder {
	return b.Bind(gohttp.ParamBinding{Position: position, Source: gohttp.Body, Shape: shape})
}

// PathParam binds a URL path parameter — Nest: @Param(name).
func (b *RouteBuilder) PathParam(position int, name string) *RouteBuilder {
	return b.Bind(gohttp.ParamBinding{Position: position, Source: gohttp.RouteParam, Name: name})
}

// Query binds a query-string value — Nest: @Query(name).
func (b *RouteBuilder) Query(position int, name string) *RouteBuilder {
	return b.Bind(gohttp.ParamBinding{Position: position, Source: gohttp.Query, Name: name})
}

// Use appends method-level middleware, run after class middleware.
func (b *RouteBuilder) Use(mw ...gohttp.Middleware) *RouteBuilder {
	b.registry.mu.Lock()
	defer b.registry.mu.Unlock()
	b.desc.Middleware = append(b.desc.Middleware, mw...)
	return b
}

// Guard appends method-level guards, run after class guards.
func (b *RouteBuilder) Guard(g ...gohttp.Guard) *RouteBuilder {
	b.registry.mu.Lock()
	defer b.registry.mu.Unlock()
	b.desc.Guards = append(b.desc.Guards, g...)
	return b
}

// Pipe appends route pipes, applied after global pipes, in order.
func (b *RouteBuilder) Pipe(p ...gohttp.Pipe) *RouteBuilder {
	b.registry.mu.Lock()
	defer b.registry.mu.Unlock()
	b.desc.Pipes = append(b.desc.Pipes, p...)
	return b
}

// Intercept appends method-level interceptors.
func (b *RouteBuilder) Intercept(i ...gohttp.Interceptor) *RouteBuilder {
	b.registry.mu.Lock()
	defer b.registry.mu.Unlock()
	b.desc.Interceptors = append(b.desc.Interceptors, i...)
	return b
}

// Filter sets the method-level exception filter. It wins over the class and
// global filters.
func (b *RouteBuilder) Filter(f gohttp.ExceptionFilter) *RouteBuilder {
	b.registry.mu.Lock()
	defer b.registry.mu.Unlock()
	b.desc.Filter = f
	return b
}

// Summary sets the documentation summary — Nest/Swagger: @ApiOperation.
func (b *RouteBuilder) Summary(s string) *RouteBuilder {
	b.registry.mu.Lock()
	defer b.registry.mu.Unlock()
	b.desc.Summary = s
	return b
}

// Description sets the documentation description.
func (b *RouteBuilder) Description(s string) *RouteBuilder {
	b.registry.mu.Lock()
	defer b.registry.mu.Unlock()
	b.desc.Description = s
	return b
}
