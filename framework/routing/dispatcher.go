package routing

import (
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"runtime/debug"

	"github.com/km-arc/go-nest/framework/container"
	"github.com/km-arc/go-nest/framework/exception"
	gohttp "github.com/km-arc/go-nest/framework/http"
	"github.com/km-arc/go-nest/framework/metadata"
)

// dispatcher is the per-route runtime: one instance per bound route, shared
// by every request that matches it. Per-request state lives in the Ctx and
// the container's request partition, never on the dispatcher itself.
//
// Stages per request, strictly sequential:
//
//	guards → parameter binding + pipes → interceptors → handler → response
//
// Middleware (global, class, method) wraps the dispatcher from the outside;
// the binder composes that chain. Request-scope cleanup runs on every exit
// path.
type dispatcher struct {
	container *container.Container
	class     *metadata.ControllerDescriptor
	route     *metadata.RouteDescriptor
	log       *slog.Logger

	globalPipes        []gohttp.Pipe
	globalInterceptors []gohttp.Interceptor
	globalFilter       gohttp.ExceptionFilter
}

func (d *dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := newRequestID()
	c := gohttp.NewCtx(w, r, id, d.container)
	defer d.container.ClearRequestScope(id)

	// Guards: class level then method level, in declaration order. A
	// rejecting guard owns the response; nothing further runs, including
	// filters. Not an error path.
	for _, g := range d.guards() {
		if !g.CanActivate(c) {
			if !c.Response().Written() {
				c.Response().Forbidden()
			}
			return
		}
	}

	result, err := d.invoke(c)
	if err != nil {
		d.selectFilter().Catch(err, c)
		return
	}
	d.respond(c, result)
}

func (d *dispatcher) guards() []gohttp.Guard {
	out := make([]gohttp.Guard, 0, len(d.class.Guards)+len(d.route.Guards))
	out = append(out, d.class.Guards...)
	return append(out, d.route.Guards...)
}

// invoke runs stages 4 and 5: bind and transform arguments, then call the
// handler through the interceptor chain. A panic inside either stage becomes
// an error so cleanup and filter selection still happen.
func (d *dispatcher) invoke(c *gohttp.Ctx) (result any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			d.log.Error("handler panic",
				"panic", rec,
				"stack", string(debug.Stack()),
				"method", c.Request().Method(),
				"path", c.Request().Path(),
			)
			err = fmt.Errorf("handler panic: %v", rec)
		}
	}()

	args, err := d.bindArgs(c)
	if err != nil {
		return nil, err
	}

	next := func() (any, error) { return d.route.Handler(c, args...) }

	// Interceptors wrap the handler: global, then class, then method, with
	// the global ones outermost.
	chain := make([]gohttp.Interceptor, 0,
		len(d.globalInterceptors)+len(d.class.Interceptors)+len(d.route.Interceptors))
	chain = append(chain, d.globalInterceptors...)
	chain = append(chain, d.class.Interceptors...)
	chain = append(chain, d.route.Interceptors...)
	for i := len(chain) - 1; i >= 0; i-- {
		ic := chain[i]
		inner := next
		next = func() (any, error) { return ic.Intercept(c, inner) }
	}

	return next()
}

// bindArgs extracts each declared parameter and runs it through the pipes:
// global pipes first, then route pipes, each either passing the value
// through, replacing it, or rejecting it. Unbound positions stay nil.
func (d *dispatcher) bindArgs(c *gohttp.Ctx) ([]any, error) {
	n := 0
	for _, pb := range d.route.Bindings {
		if pb.Position+1 > n {
			n = pb.Position + 1
		}
	}
	if n == 0 {
		return nil, nil
	}

	pipeline := make([]gohttp.Pipe, 0, len(d.globalPipes)+len(d.route.Pipes))
	pipeline = append(pipeline, d.globalPipes...)
	pipeline = append(pipeline, d.route.Pipes...)

	args := make([]any, n)
	for _, pb := range d.route.Bindings {
		v, err := d.extract(c, pb)
		if err != nil {
			return nil, err
		}
		for _, p := range pipeline {
			v, err = p.Transform(v, pb)
			if err != nil {
				return nil, err
			}
		}
		args[pb.Position] = v
	}
	return args, nil
}

// extract pulls the raw value for one binding out of the request.
func (d *dispatcher) extract(c *gohttp.Ctx, pb gohttp.ParamBinding) (any, error) {
	switch pb.Source {
	case gohttp.Body:
		if pb.Shape == nil {
			var m map[string]any
			if err := c.Request().BindJSON(&m); err != nil {
				return nil, exception.BadRequest("malformed request body: " + err.Error())
			}
			return m, nil
		}
		t := reflect.TypeOf(pb.Shape)
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		target := reflect.New(t).Interface()
		if err := c.Request().Bind(target); err != nil {
			return nil, exception.BadRequest("malformed request body: " + err.Error())
		}
		return target, nil
	case gohttp.RouteParam:
		return c.Param(pb.Name), nil
	case gohttp.Query:
		return c.Query(pb.Name), nil
	}
	return nil, fmt.Errorf("routing: unknown parameter source %v", pb.Source)
}

// respond serialises the handler result unless the handler already wrote.
func (d *dispatcher) respond(c *gohttp.Ctx, result any) {
	if c.Response().Written() {
		return
	}
	if result == gohttp.NoContent {
		c.Response().NoContent()
		return
	}
	c.Response().JSON(c.StatusOr(http.StatusOK), result)
}

// selectFilter picks the single filter for a failed request: method level,
// else class level, else the process-wide filter, else the built-in default.
func (d *dispatcher) selectFilter() gohttp.ExceptionFilter {
	if d.route.Filter != nil {
		return d.route.Filter
	}
	if d.class.Filter != nil {
		return d.class.Filter
	}
	if d.globalFilter != nil {
		return d.globalFilter
	}
	return &gohttp.DefaultExceptionFilter{Log: d.log}
}
