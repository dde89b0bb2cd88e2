package routing

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/km-arc/go-nest/framework/container"
	gohttp "github.com/km-arc/go-nest/framework/http"
	"github.com/km-arc/go-nest/framework/metadata"
	"github.com/km-arc/go-nest/framework/openapi"
)

// Binder turns controller declarations into mounted routes. For every
// controller token it resolves one instance through the container, collects
// the instance's declarations into the registry, composes the ordered
// handler chain and mounts it on the router. It also merges each bound
// route's documentation into the OpenAPI document, once, at bootstrap.
//
// Binding is partial-failure tolerant: a controller that fails to resolve is
// logged and skipped so the rest of the application still serves.
type Binder struct {
	Container *container.Container
	Registry  *metadata.Registry
	Router    *Router
	Doc       *openapi.Document
	Log       *slog.Logger

	// Bootstrap configuration, all optional.
	Prefix       string
	Middleware   []gohttp.Middleware
	Pipes        []gohttp.Pipe
	Interceptors []gohttp.Interceptor
	Filter       gohttp.ExceptionFilter

	described map[string]bool
}

// BoundRoute records one mounted route.
type BoundRoute struct {
	Method      string
	Path        string
	Controller  string
	HandlerName string
}

// Bind mounts every route of every controller token, in order.
func (b *Binder) Bind(tokens []string) []BoundRoute {
	log := b.Log
	if log == nil {
		log = slog.Default()
	}
	if b.described == nil {
		b.described = make(map[string]bool)
	}

	var bound []BoundRoute
	for _, token := range tokens {
		inst, err := b.Container.Make(token)
		if err != nil {
			log.Error("controller skipped", "controller", token, "error", err)
			continue
		}
		ctrl, ok := inst.(metadata.Controller)
		if !ok {
			log.Error("controller skipped",
				"controller", token,
				"error", "instance does not implement metadata.Controller")
			continue
		}

		// Declarations run once per token; a re-bind reuses the stored
		// descriptor instead of appending duplicates.
		if !b.described[token] {
			ctrl.Describe(b.Registry.Controller(token))
			b.described[token] = true
		}
		cd, _ := b.Registry.Descriptor(token)

		for _, rd := range cd.Routes {
			if rd.Method == "" || rd.Handler == nil {
				log.Warn("route skipped: incomplete declaration",
					"controller", token, "handler", rd.HandlerName)
				continue
			}

			abs := joinPath(b.Prefix, cd.Prefix, rd.Path)
			d := &dispatcher{
				container:          b.Container,
				class:              cd,
				route:              rd,
				log:                log,
				globalPipes:        b.Pipes,
				globalInterceptors: b.Interceptors,
				globalFilter:       b.Filter,
			}
			b.Router.Method(rd.Method, abs, chain(d, b.Middleware, cd.Middleware, rd.Middleware))

			if b.Doc != nil {
				b.Doc.AddOperation(abs, rd.Method, operationFor(cd, rd))
			}

			bound = append(bound, BoundRoute{
				Method:      rd.Method,
				Path:        abs,
				Controller:  token,
				HandlerName: rd.HandlerName,
			})
			log.Debug("route bound", "method", rd.Method, "path", abs,
				"controller", token, "handler", rd.HandlerName)
		}
	}
	return bound
}

// chain wraps h in the middleware lists so the first-registered middleware
// runs first: global, then class, then method.
func chain(h http.Handler, lists ...[]gohttp.Middleware) http.Handler {
	var all []gohttp.Middleware
	for _, l := range lists {
		all = append(all, l...)
	}
	for i := len(all) - 1; i >= 0; i-- {
		h = all[i](h)
	}
	return h
}

// joinPath computes globalPrefix + controllerPrefix + routePath, collapsing
/// duplicate slashes and normalising ":id" segments to chi's "{id}".
func joinPath(parts ...string) string {
	var sb strings.Builder
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p == "" {
			continue
		}
		for _, seg := range strings.Split(p, "/") {
			if strings.HasPrefix(seg, ":") {
				seg = "{" + seg[1:] + "}"
			}
			sb.WriteString("/")
			sb.WriteString(seg)
		}
	}
	if sb.Len() == 0 {
		return "/"
	}
	return sb.String()
}

// operationFor derives the OpenAPI operation for one route: controller tags,
// route documentation metadata, and parameter schemas from the bindings.
func operationFor(cd *metadata.ControllerDescriptor, rd *metadata.RouteDescriptor) openapi.Operation {
	op := openapi.Operation{
		Tags:        cd.Tags,
		Summary:     rd.Summary,
		Description: rd.Description,
		OperationID: cd.Token + "." + rd.HandlerName,
		Responses: map[string]openapi.Response{
			"200": {Description: "Successful response"},
		},
	}
	for _, pb := range rd.Bindings {
		switch pb.Source {
		case gohttp.RouteParam:
			op.Parameters = append(op.Parameters, openapi.Parameter{
				Name:     pb.Name,
				In:       "path",
				Required: true,
				Schema:   openapi.Schema{Type: "string"},
			})
		case gohttp.Query:
			op.Parameters = append(op.Parameters, openapi.Parameter{
				Name:   pb.Name,
				In:     "query",
				Schema: openapi.Schema{Type: "string"},
			})
		}
	}
	if len(cd.Guards) > 0 || len(rd.Guards) > 0 {
		op.Security = []map[string][]string{{"bearerAuth": {}}}
	}
	return op
}
