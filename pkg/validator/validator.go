// Package validator validates request structs with go-playground/validator
// and turns failures into translatable field errors.
package validator

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	playground "github.com/go-playground/validator/v10"
)

var (
	instance *playground.Validate
	once     sync.Once
)

func validate() *playground.Validate {
	once.Do(func() {
		instance = playground.New(playground.WithRequiredStructEnabled())
		// Report form field names rather than Go field names.
		instance.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
	})
	return instance
}

// FieldError is one failed rule on one field.
type FieldError struct {
	Values  map[string]any
	Field   string
	Rule    string
	Message string
}

// Key is the translation key for the failure, e.g. "validation.required".
func (e FieldError) Key() string { return "validation." + e.Rule }

// ValidationErrors collects every failed field.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, e := range v {
		parts = append(parts, e.Field+": "+e.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field failed any rule.
func (v ValidationErrors) Has(field string) bool {
	for _, e := range v {
		if e.Field == field {
			return true
		}
	}
	return false
}

// Translate replaces each Message using fn(key, values).
func (v ValidationErrors) Translate(fn func(key string, values map[string]any) string) {
	if fn == nil {
		return
	}
	for i := range v {
		v[i].Message = fn(v[i].Key(), v[i].Values)
	}
}

// Struct validates s. It returns ValidationErrors for rule failures and
// the underlying error for misuse such as passing a non-struct.
func Struct(s any) error {
	err := validate().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs playground.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		values := map[string]any{"field": fe.Field()}
		if fe.Param() != "" {
			values["param"] = fe.Param()
		}
		out = append(out, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Values:  values,
			Message: fe.Error(),
		})
	}
	return out
}

// IsValidationError reports whether err carries field errors.
func IsValidationError(err error) bool {
	var v ValidationErrors
	return errors.As(err, &v)
}
