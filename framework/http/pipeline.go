package http

import "net/http"

// ── Middleware ───────────────────────────────────────────────────────────────

// Middleware is the standard middleware signature compatible with the entire
// Go middleware ecosystem (chi included).
type Middleware func(next http.Handler) http.Handler

// ── Parameter bindings ───────────────────────────────────────────────────────

// ParamSource names the part of the request that fills a handler argument.
type ParamSource int

const (
	// Body decodes the request body — Nest: @Body()
	Body ParamSource = iota
	// RouteParam reads a URL path parameter — Nest: @Param('id')
	RouteParam
	// Query reads a query-string value — Nest: @Query('page')
	Query
)

func (s ParamSource) String() string {
	switch s {
	case Body:
		return "body"
	case RouteParam:
		return "param"
	case Query:
		return "query"
	}
	return "unknown"
}

// ParamBinding declares which part of the request fills one handler argument
// position. Positions without a binding stay nil, so handlers may carry extra
// non-framework parameters.
type ParamBinding struct {
	Position int
	Source   ParamSource
	Name     string // path-param or query key; unused for Body

	// Shape is a prototype for Body bindings: the dispatcher decodes the
	// body into a fresh instance of Shape's type. Nil decodes into a plain
	// map.
	Shape any
}

// ── Handlers ─────────────────────────────────────────────────────────────────

// HandlerFunc is a bound controller method. args follow the route's parameter
// bindings in position order, after all pipes ran. The returned value is
// serialised as JSON unless the handler wrote the response itself; returning
// NoContent sends 204.
type HandlerFunc func(c *Ctx, args ...any) (any, error)

// noContent is the sentinel type behind NoContent.
type noContent struct{}

// NoContent is returned from a handler to answer 204 with an empty body.
var NoContent = noContent{}

// ── Extension points ─────────────────────────────────────────────────────────

// Guard is a pre-handler check — Nest: CanActivate. A guard that returns
// false must write its own response; the pipeline stops there. This is an
// authorization short-circuit, not an error: no exception filter runs.
type Guard interface {
	CanActivate(c *Ctx) bool
}

// GuardFunc adapts a function to the Guard interface.
type GuardFunc func(c *Ctx) bool

func (f GuardFunc) CanActivate(c *Ctx) bool { return f(c) }

// Pipe transforms or validates one bound parameter before the handler runs —
// Nest: PipeTransform. A pipe may pass the value through, replace it, or
// reject it by returning an error (typically a *exception.ValidationException).
type Pipe interface {
	Transform(value any, binding ParamBinding) (any, error)
}

// PipeFunc adapts a function to the Pipe interface.
type PipeFunc func(value any, binding ParamBinding) (any, error)

func (f PipeFunc) Transform(value any, binding ParamBinding) (any, error) {
	return f(value, binding)
}

// Interceptor wraps handler invocation — Nest: NestInterceptor. It may run
// logic before calling next, rewrite the result, or map the error.
type Interceptor interface {
	Intercept(c *Ctx, next func() (any, error)) (any, error)
}

// InterceptorFunc adapts a function to the Interceptor interface.
type InterceptorFunc func(c *Ctx, next func() (any, error)) (any, error)

func (f InterceptorFunc) Intercept(c *Ctx, next func() (any, error)) (any, error) {
	return f(c, next)
}

// ExceptionFilter maps a failed request to a response — Nest: ExceptionFilter.
// Exactly one filter runs per failed request; it owns the response and never
// re-throws into the dispatcher.
type ExceptionFilter interface {
	Catch(err error, c *Ctx)
}

// FilterFunc adapts a function to the ExceptionFilter interface.
type FilterFunc func(err error, c *Ctx)

func (f FilterFunc) Catch(err error, c *Ctx) { f(err, c) }
