package app

import (
	"net/http"
	"os"
	"strings"

	"log/slog"

	"github.com/km-arc/go-nest/framework/config"
	"github.com/km-arc/go-nest/framework/container"
	gohttp "github.com/km-arc/go-nest/framework/http"
	"github.com/km-arc/go-nest/framework/metadata"
	"github.com/km-arc/go-nest/framework/middleware"
	"github.com/km-arc/go-nest/framework/module"
	"github.com/km-arc/go-nest/framework/openapi"
	"github.com/km-arc/go-nest/framework/routing"
)

// Application is the top-level application context. It owns the container,
// the metadata registry, the module loader and the router, and everything
// reaches them through this struct rather than package-level state.
//
// Nest: NestFactory.create(AppModule) returns the INestApplication; this is
// that object, built explicitly in main.
type Application struct {
	Config    *config.Config
	Log       *slog.Logger
	Container *container.Container
	Registry  *metadata.Registry
	Doc       *openapi.Document

	router *routing.Router
	loader *module.Loader

	prefix       string
	middleware   []gohttp.Middleware
	pipes        []gohttp.Pipe
	interceptors []gohttp.Interceptor
	filter       gohttp.ExceptionFilter

	booted bool
	bound  []routing.BoundRoute
}

// New creates an application: loads configuration, builds the logger, the
// container and the router, and exposes core services under well-known
// container tokens ("config", "logger", "registry", "openapi").
func New(envFiles ...string) *Application {
	cfg := config.Load(envFiles...)

	level := slog.LevelInfo
	if cfg.App.Debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	c := container.New()
	reg := metadata.NewRegistry()
	doc := openapi.NewDocument(cfg.Docs.Title, cfg.Docs.Version)
	router := routing.New()

	c.Register(container.Value("config", cfg))
	c.Register(container.Value("logger", log))
	c.Register(container.Value("registry", reg))
	c.Register(container.Value("openapi", doc))

	a := &Application{
		Config:    cfg,
		Log:       log,
		Container: c,
		Registry:  reg,
		Doc:       doc,
		router:    router,
		loader:    module.NewLoader(c, log),
		prefix:    cfg.App.Prefix,
	}

	if cfg.Server.BodyLimit > 0 {
		a.Use(middleware.BodyLimit(cfg.Server.BodyLimit))
	}

	return a
}

// Register loads a module graph into the container. Imports load before the
// module itself; a module seen twice loads once.
func (a *Application) Register(m *module.Module) {
	a.loader.Load(m)
}

// SetGlobalPrefix prepends prefix to every bound route, overriding APP_PREFIX.
func (a *Application) SetGlobalPrefix(prefix string) {
	a.prefix = prefix
}

// Use appends global middleware. Global middleware runs before class and
// method middleware on every route.
func (a *Application) Use(mw ...gohttp.Middleware) {
	a.middleware = append(a.middleware, mw...)
}

// UsePipes appends global pipes, which run before any route-level pipe on
// every bound parameter.
func (a *Application) UsePipes(pipes ...gohttp.Pipe) {
	a.pipes = append(a.pipes, pipes...)
}

// UseInterceptors appends global interceptors. Global interceptors wrap
// outermost around class and method interceptors.
func (a *Application) UseInterceptors(ics ...gohttp.Interceptor) {
	a.interceptors = append(a.interceptors, ics...)
}

// UseFilter installs the global exception filter, consulted when neither the
// route nor the controller declares one.
func (a *Application) UseFilter(f gohttp.ExceptionFilter) {
	a.filter = f
}

// NotFound installs the handler invoked when no route matches.
func (a *Application) NotFound(h http.HandlerFunc) {
	a.router.NotFound(h)
}

// Static serves a directory of files under prefix.
func (a *Application) Static(prefix, dir string) {
	a.router.Static(prefix, dir)
}

// Bootstrap resolves every loaded controller, binds its routes and mounts the
// documentation endpoints. Calling it again is a no-op; route declarations
// made after the first call are not picked up.
func (a *Application) Bootstrap() {
	if a.booted {
		return
	}
	a.booted = true

	b := &routing.Binder{
		Container:    a.Container,
		Registry:     a.Registry,
		Router:       a.router,
		Doc:          a.Doc,
		Log:          a.Log,
		Prefix:       a.prefix,
		Middleware:   a.middleware,
		Pipes:        a.pipes,
		Interceptors: a.interceptors,
		Filter:       a.filter,
	}
	a.bound = b.Bind(a.loader.Controllers())

	if a.Config.Docs.Enabled {
		a.router.Get(a.Config.Docs.Path, a.Doc.Handler())
		a.router.Get(yamlPath(a.Config.Docs.Path), a.Doc.HandlerYAML())
	}

	a.Log.Info("application bootstrapped",
		"routes", len(a.bound),
		"prefix", a.prefix,
		"env", a.Config.App.Env,
	)
}

// Routes returns what Bootstrap actually mounted.
func (a *Application) Routes() []routing.BoundRoute {
	return a.bound
}

// Handler bootstraps if needed and returns the root handler. Tests drive the
// whole stack through this with httptest.
func (a *Application) Handler() http.Handler {
	a.Bootstrap()
	return a.router
}

// Listen bootstraps and serves on addr, blocking until the server stops.
func (a *Application) Listen(addr string) error {
	a.Bootstrap()
	a.Log.Info("listening", "addr", addr, "app", a.Config.App.Name)
	return http.ListenAndServe(addr, a.router)
}

// Run serves on the configured APP_PORT.
func (a *Application) Run() error {
	return a.Listen(":" + a.Config.App.Port)
}

// Environment helpers.
func (a *Application) Environment() string { return a.Config.App.Env }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsDebug() bool       { return a.Config.App.Debug }

// yamlPath derives the YAML twin of the JSON docs path.
func yamlPath(p string) string {
	if strings.HasSuffix(p, ".json") {
		return strings.TrimSuffix(p, ".json") + ".yaml"
	}
	return p + ".yaml"
}
