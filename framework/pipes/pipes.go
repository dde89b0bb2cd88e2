package pipes

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/km-arc/go-nest/framework/exception"
	gohttp "github.com/km-arc/go-nest/framework/http"
	"github.com/km-arc/go-nest/framework/http/validation"
)

// ── ValidationPipe ───────────────────────────────────────────────────────────

// Validatable is implemented by body shapes that declare validation rules —
// the Go stand-in for class-validator decorators.
//
//	type CreateUserInput struct {
//	    Name  string `json:"name"`
//	    Email string `json:"email"`
//	}
//
//	func (CreateUserInput) Rules() validation.Rules {
//	    return validation.Rules{
//	        "name":  "required|min:2|max:100",
//	        "email": "required|email",
//	    }
//	}
type Validatable interface {
	Rules() validation.Rules
}

// ValidationPipe enforces a shape's declared rules — Nest: ValidationPipe.
//
// Values that do not declare rules (strings, numbers, maps, slices, plain
// structs) pass through untouched. For a Validatable shape every rule runs
// and every violation is collected; a non-empty list raises
// *exception.ValidationException carrying the full bag.
type ValidationPipe struct{}

// Validation returns the pipe, ready to attach globally or per route.
func Validation() gohttp.Pipe { return &ValidationPipe{} }

// Transform validates value when it declares rules.
func (p *ValidationPipe) Transform(value any, _ gohttp.ParamBinding) (any, error) {
	va, ok := value.(Validatable)
	if !ok {
		return value, nil
	}

	v := validation.Make(fieldMap(va), va.Rules()).Collect()
	if v.Fails() {
		return nil, &exception.ValidationException{Errors: v.Errors()}
	}
	return value, nil
}

// fieldMap flattens a shape's exported fields into the string map the rule
// engine consumes. Keys follow the json tag, falling back to the lower-cased
// field name.
func fieldMap(shape any) map[string]string {
	out := make(map[string]string)

	rv := reflect.ValueOf(shape)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return out
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return out
	}

	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		key := strings.ToLower(f.Name)
		if tag, ok := f.Tag.Lookup("json"); ok {
			name, _, _ := strings.Cut(tag, ",")
			if name == "-" {
				continue
			}
			if name != "" {
				key = name
			}
		}

		fv := rv.Field(i)
		if fv.Kind() == reflect.String {
			out[key] = fv.String()
			continue
		}
		if fv.IsZero() {
			// A zero non-string field reads as absent so "required" fires.
			out[key] = ""
			continue
		}
		out[key] = fmt.Sprint(fv.Interface())
	}
	return out
}

// ── ParseIntPipe ─────────────────────────────────────────────────────────────

// ParseIntPipe converts a string path or query parameter to int64 —
// Nest: ParseIntPipe. Body bindings pass through untouched.
type ParseIntPipe struct {
	// Name restricts the pipe to one binding name; empty applies to every
	// path and query binding on the route.
	Name string
}

// ParseInt returns a pipe converting the named parameter to int64.
func ParseInt(name string) gohttp.Pipe { return &ParseIntPipe{Name: name} }

// Transform parses the bound string, rejecting non-numeric input with 400.
func (p *ParseIntPipe) Transform(value any, b gohttp.ParamBinding) (any, error) {
	if b.Source == gohttp.Body {
		return value, nil
	}
	if p.Name != "" && b.Name != p.Name {
		return value, nil
	}
	s, ok := value.(string)
	if !ok {
		return value, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, exception.Newf(400, "parameter %q must be an integer", b.Name)
	}
	return n, nil
}
