package module

import (
	"log/slog"

	"github.com/km-arc/go-nest/framework/container"
)

// Module is a declarative grouping of providers and controllers plus the
// modules it imports — Nest: @Module({ imports, providers, controllers }).
//
// Controllers are providers too: each controller descriptor registers its
// token in the container, and the loader additionally records the token so
// the route binder knows what to bind.
type Module struct {
	Name        string
	Imports     []*Module
	Providers   []container.Descriptor
	Controllers []container.Descriptor
}

// Loader flattens a module graph into a container and an ordered controller
// list. A module identity is processed exactly once per loader, so diamond
// imports register shared providers a single time.
type Loader struct {
	container   *container.Container
	log         *slog.Logger
	visited     map[*Module]bool
	controllers []string
}

// NewLoader creates a loader writing into c.
func NewLoader(c *container.Container, log *slog.Logger) *Loader {
	if log == nil {
		log = slog.Default()
	}
	return &Loader{
		container: c,
		log:       log,
		visited:   make(map[*Module]bool),
	}
}

// Load walks m's import graph depth-first, imports before self, registering
// every provider and controller exactly once. A repeated Load of the same
// *Module is a no-op: the visited set tracks module identity, not name.
func (l *Loader) Load(m *Module) {
	if m == nil || l.visited[m] {
		return
	}
	l.visited[m] = true

	// Imports first, so an imported module's providers are registered
	// before any sibling or importing module's controllers resolve.
	for _, imp := range m.Imports {
		l.Load(imp)
	}

	for _, p := range m.Providers {
		l.container.Register(p)
	}
	for _, c := range m.Controllers {
		l.container.Register(c)
		l.controllers = append(l.controllers, c.Token)
	}

	l.log.Debug("module loaded",
		"module", m.Name,
		"providers", len(m.Providers),
		"controllers", len(m.Controllers),
	)
}

// Controllers returns the flattened controller tokens in load order.
func (l *Loader) Controllers() []string {
	out := make([]string, len(l.controllers))
	copy(out, l.controllers)
	return out
}
