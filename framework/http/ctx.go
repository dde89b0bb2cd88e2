package http

import (
	"context"
	"net/http"

	"github.com/km-arc/go-nest/framework/container"
)

// Ctx is the per-request execution context handed to guards, pipes,
// interceptors, handlers and filters — Nest: ExecutionContext.
//
// It carries the wrapped request and response, the request id that keys the
// container's request scope, and a handle to the container so request-scoped
// providers resolve against the right partition.
type Ctx struct {
	req       *Request
	res       *Response
	requestID string
	container *container.Container

	status int // handler-set success status override
}

// NewCtx builds the context for one dispatch.
func NewCtx(w http.ResponseWriter, r *http.Request, requestID string, c *container.Container) *Ctx {
	return &Ctx{
		req:       NewRequest(r),
		res:       NewResponse(w),
		requestID: requestID,
		container: c,
	}
}

// Request returns the wrapped request.
func (c *Ctx) Request() *Request { return c.req }

// Response returns the wrapped response.
func (c *Ctx) Response() *Response { return c.res }

// RequestID returns the id keying this request's container scope.
func (c *Ctx) RequestID() string { return c.requestID }

// Context returns the request's context.Context.
func (c *Ctx) Context() context.Context { return c.req.Raw().Context() }

// Resolve resolves a provider token within this request's scope.
//
//	svc, err := c.Resolve("users.service")
func (c *Ctx) Resolve(token string) (any, error) {
	return c.container.MakeScoped(c.requestID, token)
}

// Param returns a URL path parameter.
func (c *Ctx) Param(name string) string { return c.req.RouteParam(name) }

// Query returns a query-string value.
func (c *Ctx) Query(name string, fallback ...string) string {
	return c.req.Query(name, fallback...)
}

// Status sets the success status for the serialised handler result.
//
//	func (uc *UsersController) Create(c *gohttp.Ctx, args ...any) (any, error) {
//	    c.Status(http.StatusCreated)
//	    return user, nil
//	}
func (c *Ctx) Status(code int) *Ctx {
	c.status = code
	return c
}

// StatusOr returns the handler-set status, or fallback when none was set.
func (c *Ctx) StatusOr(fallback int) int {
	if c.status != 0 {
		return c.status
	}
	return fallback
}
