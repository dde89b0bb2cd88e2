package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/km-arc/go-nest/framework/app"
	"github.com/km-arc/go-nest/framework/container"
	"github.com/km-arc/go-nest/framework/exception"
	gohttp "github.com/km-arc/go-nest/framework/http"
	"github.com/km-arc/go-nest/framework/http/validation"
	"github.com/km-arc/go-nest/framework/metadata"
	"github.com/km-arc/go-nest/framework/middleware"
	"github.com/km-arc/go-nest/framework/module"
	"github.com/km-arc/go-nest/framework/pipes"
)

func main() {
	application := app.New() // loads .env automatically

	application.Use(
		middleware.RequestID(),
		middleware.Logger(application.Log),
		middleware.Recovery(application.Log),
		middleware.Throttle(middleware.ThrottleConfig{Rate: 20, Burst: 40}),
	)
	application.UsePipes(pipes.Validation())

	application.Register(UsersModule())
	application.Register(AuthModule())

	if err := application.Run(); err != nil {
		application.Log.Error("server stopped", "error", err)
	}
}

// ── Users ────────────────────────────────────────────────────────────────────

// UsersModule wires an in-memory user store, a request-scoped call context
// and the users controller.
func UsersModule() *module.Module {
	return &module.Module{
		Name: "users",
		Providers: []container.Descriptor{
			container.Provide("users.service", container.Singleton,
				func(deps ...any) (any, error) { return NewUsersService(), nil }),
			container.Provide("request.context", container.Request,
				func(deps ...any) (any, error) {
					return &RequestContext{Start: time.Now()}, nil
				}),
		},
		Controllers: []container.Descriptor{
			container.Provide("users.controller", container.Singleton,
				func(deps ...any) (any, error) {
					return &UsersController{Users: deps[0].(*UsersService)}, nil
				},
				container.Needs("users.service"),
			),
		},
	}
}

// RequestContext carries per-request state; a fresh one is built for every
// HTTP request and torn down with it.
type RequestContext struct {
	Start time.Time
}

type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UsersService is an in-memory stand-in for a real repository.
type UsersService struct {
	nextID int
	users  map[int]User
}

func NewUsersService() *UsersService {
	return &UsersService{
		nextID: 3,
		users: map[int]User{
			1: {ID: 1, Name: "Alice", Email: "alice@example.com"},
			2: {ID: 2, Name: "Bob", Email: "bob@example.com"},
		},
	}
}

func (s *UsersService) All() []User {
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	return out
}

func (s *UsersService) Find(id int) (User, error) {
	u, ok := s.users[id]
	if !ok {
		return User{}, exception.NotFound(fmt.Sprintf("user %d does not exist", id))
	}
	return u, nil
}

func (s *UsersService) Create(name, email string) User {
	u := User{ID: s.nextID, Name: name, Email: email}
	s.users[u.ID] = u
	s.nextID++
	return u
}

func (s *UsersService) Remove(id int) error {
	if _, ok := s.users[id]; !ok {
		return exception.NotFound(fmt.Sprintf("user %d does not exist", id))
	}
	delete(s.users, id)
	return nil
}

// CreateUserInput is the POST /users payload.
type CreateUserInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   string `json:"age"`
}

func (in *CreateUserInput) Rules() validation.Rules {
	return validation.Rules{
		"name":  "required|min:2|max:100",
		"email": "required|email",
		"age":   "required|numeric|gte:18",
	}
}

type UsersController struct {
	Users *UsersService
}

func (uc *UsersController) Describe(b *metadata.ControllerBuilder) {
	b.Prefix("/users")
	b.Tags("users")

	b.Get("/", "Index", uc.Index).
		Summary("List all users")

	b.Get("/:id", "Show", uc.Show).
		PathParam(0, "id").
		Pipe(pipes.ParseInt("id")).
		Summary("Fetch one user")

	b.Post("/", "Store", uc.Store).
		Body(0, &CreateUserInput{}).
		Summary("Create a user")

	b.Delete("/:id", "Destroy", uc.Destroy).
		PathParam(0, "id").
		Pipe(pipes.ParseInt("id")).
		Guard(&JWTGuard{}).
		Summary("Delete a user")
}

func (uc *UsersController) Index(c *gohttp.Ctx, args ...any) (any, error) {
	return uc.Users.All(), nil
}

func (uc *UsersController) Show(c *gohttp.Ctx, args ...any) (any, error) {
	return uc.Users.Find(int(args[0].(int64)))
}

func (uc *UsersController) Store(c *gohttp.Ctx, args ...any) (any, error) {
	in := args[0].(*CreateUserInput)
	c.Status(http.StatusCreated)
	return uc.Users.Create(in.Name, in.Email), nil
}

func (uc *UsersController) Destroy(c *gohttp.Ctx, args ...any) (any, error) {
	if err := uc.Users.Remove(int(args[0].(int64))); err != nil {
		return nil, err
	}
	return gohttp.NoContent, nil
}

// ── Auth ─────────────────────────────────────────────────────────────────────

// demoSigningKey is for the examples only; a real deployment reads APP_KEY.
var demoSigningKey = []byte("change-me-in-production")

// AuthModule issues demo JWTs so the guarded routes are exercisable.
func AuthModule() *module.Module {
	return &module.Module{
		Name: "auth",
		Controllers: []container.Descriptor{
			container.Value("auth.controller", &AuthController{}),
		},
	}
}

type AuthController struct{}

func (ac *AuthController) Describe(b *metadata.ControllerBuilder) {
	b.Prefix("/auth")
	b.Tags("auth")
	b.Post("/token", "Token", ac.Token).
		Summary("Issue a short-lived demo token")
}

func (ac *AuthController) Token(c *gohttp.Ctx, args ...any) (any, error) {
	claims := jwt.RegisteredClaims{
		Subject:   "demo",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(demoSigningKey)
	if err != nil {
		return nil, err
	}
	return map[string]string{"token": token}, nil
}

// JWTGuard admits requests carrying a valid bearer token.
type JWTGuard struct{}

func (g *JWTGuard) CanActivate(c *gohttp.Ctx) bool {
	raw := c.Request().BearerToken()
	if raw == "" {
		c.Response().Unauthorized("missing bearer token")
		return false
	}
	_, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return demoSigningKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		c.Response().Unauthorized("invalid token")
		return false
	}
	return true
}
