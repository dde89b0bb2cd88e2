package http

import (
	"errors"
	"log/slog"

	"github.com/km-arc/go-nest/framework/exception"
)

// DefaultExceptionFilter is the built-in terminal filter — Nest:
// BaseExceptionFilter. It maps:
//
//   - *exception.ValidationException → 422 with the full violation bag
//   - any exception.StatusCoder      → its status and message verbatim
//   - anything else                  → 500 with a generic message
type DefaultExceptionFilter struct {
	Log *slog.Logger
}

// Catch writes the mapped response for err.
func (f *DefaultExceptionFilter) Catch(err error, c *Ctx) {
	var ve *exception.ValidationException
	if errors.As(err, &ve) {
		c.Response().ValidationError(ve.Errors)
		return
	}

	var sc exception.StatusCoder
	if errors.As(err, &sc) {
		c.Response().Error(sc.StatusCode(), err.Error())
		return
	}

	if f.Log != nil {
		f.Log.Error("unhandled error",
			"error", err,
			"method", c.Request().Method(),
			"path", c.Request().Path(),
			"request_id", c.RequestID(),
		)
	}
	c.Response().ServerError()
}
