package pipes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-nest/framework/exception"
	gohttp "github.com/km-arc/go-nest/framework/http"
	"github.com/km-arc/go-nest/framework/http/validation"
	"github.com/km-arc/go-nest/framework/pipes"
)

type signupInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   int    `json:"age"`
}

func (signupInput) Rules() validation.Rules {
	return validation.Rules{
		"name":  "required|min:2",
		"email": "required|email",
		"age":   "required|numeric|gte:18",
	}
}

func bodyBinding() gohttp.ParamBinding {
	return gohttp.ParamBinding{Position: 0, Source: gohttp.Body}
}

func TestValidationPipe_Passes(t *testing.T) {
	p := pipes.Validation()
	in := &signupInput{Name: "Alice", Email: "alice@example.com", Age: 30}

	out, err := p.Transform(in, bodyBinding())
	require.NoError(t, err)
	assert.Same(t, in, out, "a valid shape passes through unchanged")
}

func TestValidationPipe_CollectsEveryViolation(t *testing.T) {
	p := pipes.Validation()
	in := &signupInput{Name: "A", Email: "not-an-email", Age: 30}

	_, err := p.Transform(in, bodyBinding())
	require.Error(t, err)

	var ve *exception.ValidationException
	require.ErrorAs(t, err, &ve)
	assert.NotEmpty(t, ve.Errors.Bag["name"])
	assert.NotEmpty(t, ve.Errors.Bag["email"], "both violated fields must be reported at once")
	assert.Equal(t, 422, ve.StatusCode())
}

func TestValidationPipe_MissingFields(t *testing.T) {
	p := pipes.Validation()

	_, err := p.Transform(&signupInput{}, bodyBinding())

	var ve *exception.ValidationException
	require.ErrorAs(t, err, &ve)
	assert.GreaterOrEqual(t, len(ve.Errors.All()), 3, "every required field must be flagged")
}

func TestValidationPipe_NoopForPlainValues(t *testing.T) {
	p := pipes.Validation()

	for _, v := range []any{"hello", 42, map[string]any{"k": "v"}, []string{"a"}, struct{ X int }{1}} {
		out, err := p.Transform(v, bodyBinding())
		require.NoError(t, err)
		assert.Equal(t, v, out)
	}
}

func TestParseIntPipe(t *testing.T) {
	p := pipes.ParseInt("id")
	b := gohttp.ParamBinding{Position: 0, Source: gohttp.RouteParam, Name: "id"}

	out, err := p.Transform("42", b)
	require.NoError(t, err)
	assert.Equal(t, int64(42), out)

	_, err = p.Transform("not-a-number", b)
	require.Error(t, err)
	assert.Equal(t, 400, exception.Status(err))
}

func TestParseIntPipe_IgnoresOtherBindings(t *testing.T) {
	p := pipes.ParseInt("id")

	out, err := p.Transform("abc", gohttp.ParamBinding{Source: gohttp.Query, Name: "verbose"})
	require.NoError(t, err)
	assert.Equal(t, "abc", out)

	body := &signupInput{}
	out, err = p.Transform(body, bodyBinding())
	require.NoError(t, err)
	assert.Same(t, body, out)
}
