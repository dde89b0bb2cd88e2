// Command nestgen generates boilerplate source files for the framework's
// building blocks.
//
//	nestgen controller users
//	nestgen service billing -dir internal/billing
//	nestgen module orders
//	nestgen guard admin
//	nestgen middleware audit
//
// Each invocation writes exactly one file named <name>_<kind>.go (modules
// write <name>_module.go) and refuses to overwrite an existing file.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

func main() {
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) < 2 {
		usage()
		os.Exit(2)
	}
	kind, name := args[0], args[1]

	fs := flag.NewFlagSet("nestgen "+kind, flag.ExitOnError)
	dir := fs.String("dir", ".", "directory to write the generated file into")
	pkg := fs.String("package", "", "package name (defaults to the directory name)")
	force := fs.Bool("force", false, "overwrite the target file if it exists")
	fs.Parse(args[2:])

	path, err := generate(kind, name, *dir, *pkg, *force)
	if err != nil {
		fmt.Fprintln(os.Stderr, "nestgen:", err)
		os.Exit(1)
	}
	fmt.Println("created", path)
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: nestgen <kind> <name> [flags]

kinds:
  controller   HTTP controller with a Describe declaration
  service      injectable singleton service
  module       module wiring providers and controllers
  guard        route guard
  middleware   global middleware

flags:
  -dir       target directory (default ".")
  -package   package name (default: directory name)
  -force     overwrite an existing file`)
}

// generate renders the template for kind into dir and returns the written path.
func generate(kind, name, dir, pkg string, force bool) (string, error) {
	tpl, ok := templates[kind]
	if !ok {
		return "", fmt.Errorf("unknown kind %q", kind)
	}
	if !identifier(name) {
		return "", fmt.Errorf("name %q must be a lowercase identifier", name)
	}

	if pkg == "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return "", err
		}
		pkg = filepath.Base(abs)
	}

	data := templateData{
		Package: pkg,
		Name:    name,
		Title:   strings.ToUpper(name[:1]) + name[1:],
		Token:   name,
	}

	path := filepath.Join(dir, name+"_"+kind+".go")
	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("%s already exists (use -force to overwrite)", path)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	t, err := template.New(kind).Parse(tpl)
	if err != nil {
		return "", err
	}
	if err := t.Execute(f, data); err != nil {
		return "", err
	}
	return path, nil
}

type templateData struct {
	Package string
	Name    string
	Title   string // exported form of Name
	Token   string
}

// identifier reports whether s is usable as both a file stem and a Go
// identifier fragment.
func identifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r == '_' && i > 0:
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

var templates = map[string]string{
	"controller": `package {{.Package}}

import (
	gohttp "github.com/km-arc/go-nest/framework/http"
	"github.com/km-arc/go-nest/framework/metadata"
)

// {{.Title}}Controller handles /{{.Name}} routes.
type {{.Title}}Controller struct {
	svc *{{.Title}}Service
}

func New{{.Title}}Controller(svc *{{.Title}}Service) *{{.Title}}Controller {
	return &{{.Title}}Controller{svc: svc}
}

func (c *{{.Title}}Controller) Describe(b *metadata.ControllerBuilder) {
	b.Prefix("/{{.Name}}")
	b.Tags("{{.Name}}")
	b.Get("/:id", "Show", c.Show).
		PathParam(0, "id")
}

func (c *{{.Title}}Controller) Show(ctx *gohttp.Ctx, args ...any) (any, error) {
	id := args[0].(string)
	return c.svc.Find(id)
}
`,

	"service": `package {{.Package}}

// {{.Title}}Service holds the business logic for {{.Name}}.
type {{.Title}}Service struct{}

func New{{.Title}}Service() *{{.Title}}Service {
	return &{{.Title}}Service{}
}

func (s *{{.Title}}Service) Find(id string) (any, error) {
	return map[string]string{"id": id}, nil
}
`,

	"module": `package {{.Package}}

import (
	"github.com/km-arc/go-nest/framework/container"
	"github.com/km-arc/go-nest/framework/module"
)

// {{.Title}}Module wires the {{.Name}} providers and controllers.
func {{.Title}}Module() *module.Module {
	return &module.Module{
		Name: "{{.Token}}",
		Providers: []container.Descriptor{
			container.Provide("{{.Token}}.service", container.Singleton,
				func(deps ...any) (any, error) {
					return New{{.Title}}Service(), nil
				}),
		},
		Controllers: []container.Descriptor{
			container.Provide("{{.Token}}.controller", container.Singleton,
				func(deps ...any) (any, error) {
					return New{{.Title}}Controller(deps[0].(*{{.Title}}Service)), nil
				},
				container.Needs("{{.Token}}.service"),
			),
		},
	}
}
`,

	"guard": `package {{.Package}}

import (
	gohttp "github.com/km-arc/go-nest/framework/http"
)

// {{.Title}}Guard decides whether a request may reach its handler.
type {{.Title}}Guard struct{}

func (g *{{.Title}}Guard) CanActivate(c *gohttp.Ctx) bool {
	// TODO: replace with a real policy for {{.Name}}.
	return c.Request().BearerToken() != ""
}
`,

	"middleware": `package {{.Package}}

import (
	"net/http"

	gohttp "github.com/km-arc/go-nest/framework/http"
)

// {{.Title}} returns middleware for {{.Name}}.
func {{.Title}}() gohttp.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
		})
	}
}
`,
}
