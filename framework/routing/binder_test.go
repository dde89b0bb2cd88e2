package routing_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-nest/framework/container"
	"github.com/km-arc/go-nest/framework/exception"
	gohttp "github.com/km-arc/go-nest/framework/http"
	"github.com/km-arc/go-nest/framework/metadata"
	"github.com/km-arc/go-nest/framework/openapi"
	"github.com/km-arc/go-nest/framework/routing"
)

// ── fixtures ─────────────────────────────────────────────────────────────────

// traceController records pipeline execution order into a shared trace.
type traceController struct {
	trace *[]string
	fail  error // returned by the handler when non-nil
}

func (tc *traceController) Describe(b *metadata.ControllerBuilder) {
	b.Prefix("/trace")
	b.Use(tagMW("B", tc.trace))
	b.Guard(tagGuard("G1", tc.trace, true))
	b.Get("/run", "Run", tc.Run).
		Use(tagMW("C", tc.trace)).
		Guard(tagGuard("G2", tc.trace, true))
}

func (tc *traceController) Run(c *gohttp.Ctx, args ...any) (any, error) {
	*tc.trace = append(*tc.trace, "handler")
	if tc.fail != nil {
		return nil, tc.fail
	}
	return map[string]string{"ok": "yes"}, nil
}

func tagMW(tag string, trace *[]string) gohttp.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*trace = append(*trace, tag)
			next.ServeHTTP(w, r)
		})
	}
}

func tagGuard(tag string, trace *[]string, allow bool) gohttp.Guard {
	return gohttp.GuardFunc(func(c *gohttp.Ctx) bool {
		*trace = append(*trace, tag)
		return allow
	})
}

// newApp wires a container, registry, router and binder around the given
// controller descriptors.
func newApp(t *testing.T, b *routing.Binder, controllers ...container.Descriptor) *routing.Router {
	t.Helper()
	c := container.New()
	tokens := make([]string, 0, len(controllers))
	for _, d := range controllers {
		c.Register(d)
		tokens = append(tokens, d.Token)
	}
	b.Container = c
	b.Registry = metadata.NewRegistry()
	b.Router = routing.New()
	b.Bind(tokens)
	return b.Router
}

func do(t *testing.T, router *routing.Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

// ── Route composition order ──────────────────────────────────────────────────

func TestDispatch_CompositionOrder(t *testing.T) {
	var trace []string
	ctrl := &traceController{trace: &trace}

	b := &routing.Binder{Middleware: []gohttp.Middleware{tagMW("A", &trace)}}
	router := newApp(t, b, container.Value("trace.controller", ctrl))

	rr := do(t, router, http.MethodGet, "/trace/run", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"A", "B", "C", "G1", "G2", "handler"}, trace)
}

// ── Guard short-circuit ──────────────────────────────────────────────────────

// rejectController has a guard that always rejects; the handler and every
// filter must stay untouched.
type rejectController struct {
	handlerRan bool
	filterRan  bool
}

func (rc *rejectController) Describe(b *metadata.ControllerBuilder) {
	b.Prefix("/locked")
	b.Get("/door", "Open", rc.Open).
		Guard(gohttp.GuardFunc(func(c *gohttp.Ctx) bool {
			c.Response().Unauthorized("no entry")
			return false
		})).
		Filter(gohttp.FilterFunc(func(err error, c *gohttp.Ctx) { rc.filterRan = true }))
}

func (rc *rejectController) Open(c *gohttp.Ctx, args ...any) (any, error) {
	rc.handlerRan = true
	return "opened", nil
}

func TestDispatch_GuardShortCircuit(t *testing.T) {
	ctrl := &rejectController{}
	router := newApp(t, &routing.Binder{}, container.Value("locked.controller", ctrl))

	rr := do(t, router, http.MethodGet, "/locked/door", "")

	assert.Equal(t, http.StatusUnauthorized, rr.Code, "the guard's own response must win")
	assert.False(t, ctrl.handlerRan, "handler must never run after a rejection")
	assert.False(t, ctrl.filterRan, "a guard rejection is not an error; no filter runs")
}

func TestDispatch_SilentGuardGets403(t *testing.T) {
	var trace []string
	ctrl := &traceController{trace: &trace}

	b := &routing.Binder{}
	c := container.New()
	c.Register(container.Value("trace.controller", ctrl))
	b.Container = c
	b.Registry = metadata.NewRegistry()
	b.Router = routing.New()
	// Pre-declare an always-false guard that writes nothing.
	b.Registry.Controller("trace.controller").
		Guard(gohttp.GuardFunc(func(c *gohttp.Ctx) bool { return false }))
	b.Bind([]string{"trace.controller"})

	rr := do(t, b.Router, http.MethodGet, "/trace/run", "")
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.NotContains(t, trace, "handler")
}

// ── Filter priority ──────────────────────────────────────────────────────────

// filteredController raises from its handler; both a class filter and a
// method filter are declared.
type filteredController struct{}

func (fc *filteredController) Describe(b *metadata.ControllerBuilder) {
	b.Prefix("/fail")
	b.Filter(gohttp.FilterFunc(func(err error, c *gohttp.Ctx) {
		c.Response().JSON(http.StatusBadGateway, map[string]string{"filter": "class"})
	}))
	b.Get("/method", "WithMethodFilter", fc.Boom).
		Filter(gohttp.FilterFunc(func(err error, c *gohttp.Ctx) {
			c.Response().JSON(http.StatusTeapot, map[string]string{"filter": "method"})
		}))
	b.Get("/class", "WithClassFilter", fc.Boom)
}

func (fc *filteredController) Boom(c *gohttp.Ctx, args ...any) (any, error) {
	return nil, errors.New("boom")
}

func TestDispatch_FilterPriority(t *testing.T) {
	router := newApp(t, &routing.Binder{}, container.Value("fail.controller", &filteredController{}))

	rr := do(t, router, http.MethodGet, "/fail/method", "")
	assert.Equal(t, http.StatusTeapot, rr.Code, "method filter must win over class filter")

	rr = do(t, router, http.MethodGet, "/fail/class", "")
	assert.Equal(t, http.StatusBadGateway, rr.Code, "class filter must win over the default")
}

func TestDispatch_GlobalAndDefaultFilters(t *testing.T) {
	globalRan := false
	b := &routing.Binder{
		Filter: gohttp.FilterFunc(func(err error, c *gohttp.Ctx) {
			globalRan = true
			c.Response().Error(http.StatusServiceUnavailable, "global")
		}),
	}

	ctrl := &plainFailController{}
	router := newApp(t, b, container.Value("plainfail.controller", ctrl))

	rr := do(t, router, http.MethodGet, "/plainfail/boom", "")
	assert.True(t, globalRan)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

type plainFailController struct{}

func (pc *plainFailController) Describe(b *metadata.ControllerBuilder) {
	b.Prefix("/plainfail")
	b.Get("/boom", "Boom", pc.Boom)
}

func (pc *plainFailController) Boom(c *gohttp.Ctx, args ...any) (any, error) {
	return nil, errors.New("boom")
}

func TestDispatch_DefaultFilterMapsErrors(t *testing.T) {
	router := newApp(t, &routing.Binder{}, container.Value("plainfail.controller", &plainFailController{}))

	rr := do(t, router, http.MethodGet, "/plainfail/boom", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "boom", "internal detail must not leak")
}

// httpErrController raises a structured HTTPException.
type httpErrController struct{}

func (hc *httpErrController) Describe(b *metadata.ControllerBuilder) {
	b.Get("/missing", "Missing", hc.Missing)
}

func (hc *httpErrController) Missing(c *gohttp.Ctx, args ...any) (any, error) {
	return nil, exception.NotFound("user 42 does not exist")
}

func TestDispatch_HTTPExceptionStatusPropagates(t *testing.T) {
	router := newApp(t, &routing.Binder{}, container.Value("httperr.controller", &httpErrController{}))

	rr := do(t, router, http.MethodGet, "/missing", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "user 42 does not exist")
}

// ── Parameter binding ────────────────────────────────────────────────────────

type echoController struct{}

func (ec *echoController) Describe(b *metadata.ControllerBuilder) {
	b.Prefix("/echo")
	b.Get("/:id", "Show", ec.Show).
		PathParam(0, "id").
		Query(1, "verbose")
	b.Post("/", "Create", ec.Create).
		Body(0, &echoInput{})
}

type echoInput struct {
	Name string `json:"name"`
}

func (ec *echoController) Show(c *gohttp.Ctx, args ...any) (any, error) {
	out := map[string]any{"id": args[0]}
	if args[1] != "" {
		out["verbose"] = args[1]
	}
	return out, nil
}

func (ec *echoController) Create(c *gohttp.Ctx, args ...any) (any, error) {
	in := args[0].(*echoInput)
	c.Status(http.StatusCreated)
	return map[string]string{"name": in.Name}, nil
}

func TestDispatch_ParamBinding(t *testing.T) {
	router := newApp(t, &routing.Binder{}, container.Value("echo.controller", &echoController{}))

	rr := do(t, router, http.MethodGet, "/echo/42?verbose=1", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, "42", out["id"])
	assert.Equal(t, "1", out["verbose"])
}

func TestDispatch_BodyBindingAndStatusOverride(t *testing.T) {
	router := newApp(t, &routing.Binder{}, container.Value("echo.controller", &echoController{}))

	rr := do(t, router, http.MethodPost, "/echo", `{"name":"Alice"}`)
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), "Alice")
}

func TestDispatch_MalformedBodyIs400(t *testing.T) {
	router := newApp(t, &routing.Binder{}, container.Value("echo.controller", &echoController{}))

	rr := do(t, router, http.MethodPost, "/echo", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// ── Pipes ────────────────────────────────────────────────────────────────────

func TestDispatch_PipeOrderGlobalThenRoute(t *testing.T) {
	appendPipe := func(suffix string) gohttp.Pipe {
		return gohttp.PipeFunc(func(v any, b gohttp.ParamBinding) (any, error) {
			return v.(string) + suffix, nil
		})
	}

	ctrl := &pipeController{routePipe: appendPipe("-route")}
	b := &routing.Binder{Pipes: []gohttp.Pipe{appendPipe("-global")}}
	router := newApp(t, b, container.Value("pipe.controller", ctrl))

	rr := do(t, router, http.MethodGet, "/pipe/x", "")
	assert.Contains(t, rr.Body.String(), "x-global-route")
}

type pipeController struct {
	routePipe gohttp.Pipe
}

func (pc *pipeController) Describe(b *metadata.ControllerBuilder) {
	b.Prefix("/pipe")
	b.Get("/{v}", "Echo", pc.Echo).
		PathParam(0, "v").
		Pipe(pc.routePipe)
}

func (pc *pipeController) Echo(c *gohttp.Ctx, args ...any) (any, error) {
	return args[0], nil
}

// ── Interceptors ─────────────────────────────────────────────────────────────

func TestDispatch_InterceptorWrapsHandler(t *testing.T) {
	var trace []string
	ic := gohttp.InterceptorFunc(func(c *gohttp.Ctx, next func() (any, error)) (any, error) {
		trace = append(trace, "before")
		v, err := next()
		trace = append(trace, "after")
		return v, err
	})

	ctrl := &traceController{trace: &trace}
	b := &routing.Binder{Interceptors: []gohttp.Interceptor{ic}}
	router := newApp(t, b, container.Value("trace.controller", ctrl))

	rr := do(t, router, http.MethodGet, "/trace/run", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"B", "C", "G1", "G2", "before", "handler", "after"}, trace)
}

// ── No content sentinel ──────────────────────────────────────────────────────

type deleteController struct{}

func (dc *deleteController) Describe(b *metadata.ControllerBuilder) {
	b.Delete("/items/{id}", "Remove", dc.Remove)
}

func (dc *deleteController) Remove(c *gohttp.Ctx, args ...any) (any, error) {
	return gohttp.NoContent, nil
}

func TestDispatch_NoContentSentinel(t *testing.T) {
	router := newApp(t, &routing.Binder{}, container.Value("delete.controller", &deleteController{}))

	rr := do(t, router, http.MethodDelete, "/items/9", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
}

// ── Request scope ────────────────────────────────────────────────────────────

// scopedController resolves a request-scoped dependency twice per request and
// reports whether both resolutions matched.
type scopedController struct{}

func (sc *scopedController) Describe(b *metadata.ControllerBuilder) {
	b.Get("/scoped", "Show", sc.Show)
}

func (sc *scopedController) Show(c *gohttp.Ctx, args ...any) (any, error) {
	a, err := c.Resolve("scope.probe")
	if err != nil {
		return nil, err
	}
	b, err := c.Resolve("scope.probe")
	if err != nil {
		return nil, err
	}
	return map[string]any{"same": a == b, "value": a.(*probe).id}, nil
}

type probe struct{ id int }

func TestDispatch_RequestScopeLifecycle(t *testing.T) {
	c := container.New()
	builds := 0
	c.Register(container.Provide("scope.probe", container.Request,
		func(deps ...any) (any, error) {
			builds++
			return &probe{id: builds}, nil
		}))
	c.Register(container.Value("scoped.controller", &scopedController{}))

	b := &routing.Binder{Container: c, Registry: metadata.NewRegistry(), Router: routing.New()}
	b.Bind([]string{"scoped.controller"})

	first := do(t, b.Router, http.MethodGet, "/scoped", "")
	second := do(t, b.Router, http.MethodGet, "/scoped", "")
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)

	assert.Contains(t, first.Body.String(), `"same":true`, "one instance per request")
	assert.Equal(t, 2, builds, "each request builds its own instance")
	assert.Equal(t, 0, c.ActiveScopes(), "request partitions must be gone after dispatch")
}

func TestDispatch_ScopeClearedOnFailure(t *testing.T) {
	c := container.New()
	c.Register(container.Provide("scope.probe", container.Request,
		func(deps ...any) (any, error) { return &probe{}, nil }))
	c.Register(container.Value("scopefail.controller", &scopeFailController{}))

	b := &routing.Binder{Container: c, Registry: metadata.NewRegistry(), Router: routing.New()}
	b.Bind([]string{"scopefail.controller"})

	rr := do(t, b.Router, http.MethodGet, "/scopefail", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, 0, c.ActiveScopes(), "cleanup must run on the failure path too")
}

type scopeFailController struct{}

func (sf *scopeFailController) Describe(b *metadata.ControllerBuilder) {
	b.Get("/scopefail", "Boom", sf.Boom)
}

func (sf *scopeFailController) Boom(c *gohttp.Ctx, args ...any) (any, error) {
	if _, err := c.Resolve("scope.probe"); err != nil {
		return nil, err
	}
	return nil, errors.New("after resolving")
}

// ── Bootstrap resilience ─────────────────────────────────────────────────────

func TestBind_BrokenControllerIsSkipped(t *testing.T) {
	c := container.New()
	c.Register(container.Provide("broken.controller", container.Singleton,
		func(deps ...any) (any, error) { return nil, nil },
		container.Needs("missing.dep"),
	))
	c.Register(container.Value("echo.controller", &echoController{}))

	b := &routing.Binder{Container: c, Registry: metadata.NewRegistry(), Router: routing.New()}
	bound := b.Bind([]string{"broken.controller", "echo.controller"})

	require.NotEmpty(t, bound, "healthy controllers must still bind")
	for _, r := range bound {
		assert.Equal(t, "echo.controller", r.Controller)
	}

	rr := do(t, b.Router, http.MethodGet, "/echo/7", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

// ── Path composition and docs ────────────────────────────────────────────────

func TestBind_GlobalPrefixAndPathNormalisation(t *testing.T) {
	b := &routing.Binder{Prefix: "/api/v1"}
	router := newApp(t, b, container.Value("echo.controller", &echoController{}))

	rr := do(t, router, http.MethodGet, "/api/v1/echo/42", "")
	assert.Equal(t, http.StatusOK, rr.Code, ":id declarations must normalise to chi params")

	rr = do(t, router, http.MethodGet, "/echo/42", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestBind_PopulatesOpenAPIDocument(t *testing.T) {
	doc := openapi.NewDocument("test", "0.0.1")
	b := &routing.Binder{Doc: doc}
	newApp(t, b, container.Value("echo.controller", &echoController{}))

	op, ok := doc.Operation("/echo/{id}", http.MethodGet)
	require.True(t, ok)
	require.Len(t, op.Parameters, 2)

	assert.Equal(t, "id", op.Parameters[0].Name)
	assert.Equal(t, "path", op.Parameters[0].In)
	assert.True(t, op.Parameters[0].Required)

	assert.Equal(t, "verbose", op.Parameters[1].Name)
	assert.Equal(t, "query", op.Parameters[1].In)
	assert.False(t, op.Parameters[1].Required)
}
