package exception

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/km-arc/go-nest/framework/http/validation"
)

// StatusCoder is implemented by errors that carry an HTTP status code.
type StatusCoder interface {
	StatusCode() int
}

// ── HTTPException ─────────────────────────────────────────────────────────────

// HTTPException is a deliberate, structured failure raised by handler logic —
// Nest: HttpException. Exception filters propagate its status and message
// verbatim.
type HTTPException struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (e *HTTPException) Error() string { return e.Message }

// StatusCode returns the carried HTTP status code.
func (e *HTTPException) StatusCode() int { return e.Status }

// New returns an HTTPException with the given status and message.
//
//	// Nest: throw new HttpException('Forbidden', HttpStatus.FORBIDDEN)
//	return nil, exception.New(http.StatusForbidden, "Forbidden")
func New(status int, message string) *HTTPException {
	return &HTTPException{Status: status, Message: message}
}

// Newf returns a formatted HTTPException.
func Newf(status int, format string, args ...any) *HTTPException {
	return &HTTPException{Status: status, Message: fmt.Sprintf(format, args...)}
}

// Common constructors — Nest: BadRequestException, NotFoundException, ...

func BadRequest(message string) *HTTPException   { return New(http.StatusBadRequest, message) }
func Unauthorized(message string) *HTTPException { return New(http.StatusUnauthorized, message) }
func Forbidden(message string) *HTTPException    { return New(http.StatusForbidden, message) }
func NotFound(message string) *HTTPException     { return New(http.StatusNotFound, message) }
func Conflict(message string) *HTTPException     { return New(http.StatusConflict, message) }

// ── ValidationException ───────────────────────────────────────────────────────

// ValidationException carries the complete set of field-level rule violations
// for one request. Filters map it to a client error, never a 500.
type ValidationException struct {
	Errors *validation.Errors
}

func (e *ValidationException) Error() string {
	n := 0
	for _, msgs := range e.Errors.Bag {
		n += len(msgs)
	}
	return fmt.Sprintf("validation failed: %d violation(s)", n)
}

// StatusCode returns 422 Unprocessable Entity.
func (e *ValidationException) StatusCode() int { return http.StatusUnprocessableEntity }

// ── Helpers ───────────────────────────────────────────────────────────────────

// Status extracts the HTTP status carried by err, or 500 for unclassified
// errors.
func Status(err error) int {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return http.StatusInternalServerError
}
