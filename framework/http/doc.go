// Package http provides the per-request vocabulary of the framework: request
// and response wrappers, the dispatch context, and the pipeline extension
// points (middleware, guards, pipes, interceptors, exception filters).
//
// # Request / Response
//
//	req := gohttp.NewRequest(r)
//
//	var payload CreateUserInput
//	if err := req.Bind(&payload); err != nil { ... }
//
//	id    := req.RouteParam("id")
//	page  := req.Query("page", "1")
//	token := req.BearerToken()
//
//	res := gohttp.NewResponse(w)
//	res.JSON(200, data)
//	res.NoContent()
//	res.Error(404, "Resource not found")
//
// # Ctx
//
// Ctx is handed to every pipeline stage. It exposes the wrapped request and
// response, the request id, and scoped provider resolution:
//
//	func (uc *UsersController) Show(c *gohttp.Ctx, args ...any) (any, error) {
//	    svc, err := c.Resolve("users.service")
//	    ...
//	}
//
// # Extension points
//
//	Guard        — Nest: CanActivate       pre-handler check, may terminate
//	Pipe         — Nest: PipeTransform     per-parameter transform/validation
//	Interceptor  — Nest: NestInterceptor   wraps handler invocation
//	ExceptionFilter — Nest: ExceptionFilter terminal error-to-response mapping
//
// Each interface has a Func adapter (GuardFunc, PipeFunc, InterceptorFunc,
// FilterFunc) for inline declarations.
package http
