package exception_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-nest/framework/exception"
	"github.com/km-arc/go-nest/framework/http/validation"
)

func TestHTTPException_Status(t *testing.T) {
	err := exception.New(http.StatusConflict, "already exists")
	assert.Equal(t, http.StatusConflict, err.StatusCode())
	assert.Equal(t, "already exists", err.Error())
}

func TestShortcuts(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{exception.BadRequest("x"), http.StatusBadRequest},
		{exception.Unauthorized("x"), http.StatusUnauthorized},
		{exception.Forbidden("x"), http.StatusForbidden},
		{exception.NotFound("x"), http.StatusNotFound},
		{exception.Conflict("x"), http.StatusConflict},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, exception.Status(tc.err))
	}
}

func TestStatus_WrappedError(t *testing.T) {
	inner := exception.NotFound("gone")
	wrapped := fmt.Errorf("loading user: %w", inner)
	assert.Equal(t, http.StatusNotFound, exception.Status(wrapped))
}

func TestStatus_PlainErrorIs500(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, exception.Status(errors.New("boom")))
}

func TestValidationException(t *testing.T) {
	v := validation.Make(
		map[string]string{"name": "", "email": "bad"},
		validation.Rules{"name": "required", "email": "email"},
	)
	require.True(t, v.Fails())

	err := &exception.ValidationException{Errors: v.Errors()}
	assert.Equal(t, http.StatusUnprocessableEntity, err.StatusCode())
	assert.Contains(t, err.Error(), "2")

	var ve *exception.ValidationException
	require.ErrorAs(t, fmt.Errorf("creating user: %w", err), &ve)
}
