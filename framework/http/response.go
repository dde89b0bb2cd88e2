package http

import (
	"encoding/json"
	"net/http"

	"github.com/km-arc/go-nest/framework/http/validation"
)

// ── Response ─────────────────────────────────────────────────────────────────

// Response wraps http.ResponseWriter with framework helpers.
// It records whether headers have been sent so the dispatcher can tell a
// guard or handler that already wrote from one that did not.
type Response struct {
	w       http.ResponseWriter
	status  int
	written bool
}

// NewResponse wraps a ResponseWriter.
func NewResponse(w http.ResponseWriter) *Response {
	return &Response{w: w}
}

// Raw returns the underlying ResponseWriter.
func (res *Response) Raw() http.ResponseWriter { return res.w }

// Written reports whether headers have been sent.
func (res *Response) Written() bool { return res.written }

// StatusSent returns the status code sent, or 0 when nothing was written.
func (res *Response) StatusSent() int { return res.status }

// WriteHeader sends the status line once; later calls are ignored.
func (res *Response) WriteHeader(status int) {
	if res.written {
		return
	}
	res.written = true
	res.status = status
	res.w.WriteHeader(status)
}

// Write sends raw bytes, defaulting the status to 200.
func (res *Response) Write(b []byte) (int, error) {
	if !res.written {
		res.WriteHeader(http.StatusOK)
	}
	return res.w.Write(b)
}

// Header exposes the response header map.
func (res *Response) Header() http.Header { return res.w.Header() }

// ── JSON responses ───────────────────────────────────────────────────────────

// JSON sends a JSON response.
//
//	res.JSON(http.StatusOK, map[string]any{"message": "ok"})
func (res *Response) JSON(status int, data any) {
	res.w.Header().Set("Content-Type", "application/json")
	res.WriteHeader(status)
	_ = json.NewEncoder(res.w).Encode(data)
}

// Success sends 200 with the payload as the body.
func (res *Response) Success(v any) {
	res.JSON(http.StatusOK, v)
}

// Created sends 201 with the payload as the body.
func (res *Response) Created(v any) {
	res.JSON(http.StatusCreated, v)
}

// NoContent sends 204 with no body.
func (res *Response) NoContent() {
	res.WriteHeader(http.StatusNoContent)
}

// Error sends a JSON error response.
//
//	res.Error(http.StatusNotFound, "Resource not found")
func (res *Response) Error(status int, message string) {
	res.JSON(status, envelope{"status": status, "message": message})
}

// Unauthorized sends 401.
func (res *Response) Unauthorized(message ...string) {
	res.Error(http.StatusUnauthorized, first(message, "Unauthorized"))
}

// Forbidden sends 403.
func (res *Response) Forbidden(message ...string) {
	res.Error(http.StatusForbidden, first(message, "Forbidden"))
}

// NotFound sends 404.
func (res *Response) NotFound(message ...string) {
	res.Error(http.StatusNotFound, first(message, "Not Found"))
}

// ServerError sends 500 with a generic message. Internal detail never leaks
// through this path.
func (res *Response) ServerError(message ...string) {
	res.Error(http.StatusInternalServerError, first(message, "Internal server error"))
}

// ValidationError sends 422 with the full error bag:
// {"errors": {"field": ["msg1", "msg2"]}}
func (res *Response) ValidationError(errors *validation.Errors) {
	res.JSON(http.StatusUnprocessableEntity, errors)
}

// ── Redirects ────────────────────────────────────────────────────────────────

// RedirectTo performs a 302 redirect.
func (res *Response) RedirectTo(url string) {
	res.w.Header().Set("Location", url)
	res.WriteHeader(http.StatusFound)
}

// ── Helpers ──────────────────────────────────────────────────────────────────

type envelope map[string]any

func first(ss []string, fallback string) string {
	if len(ss) > 0 && ss[0] != "" {
		return ss[0]
	}
	return fallback
}
