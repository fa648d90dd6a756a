// Package validation collects per-field input errors through chained rules.
//
//	v := validation.New()
//	v.Field("username", req.Username).Required().Max(60)
//	v.Field("per_page", perPage).Min(1).Max(100)
//	if err := v.Err(); err != nil {
//		return err
//	}
//
// Only the first failing rule of each field is reported.
package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/spec-kit/storefront-api/pkg/util/errorutil"
)

var engine = validator.New()

// Validator accumulates field errors.
type Validator struct {
	errs []apperrors.FieldError
}

// New returns an empty Validator.
func New() *Validator {
	return &Validator{}
}

// Field starts a rule chain for a named value.
func (v *Validator) Field(name string, value any) *Field {
	return &Field{v: v, name: name, value: value}
}

// Errors returns the collected field errors.
func (v *Validator) Errors() []apperrors.FieldError {
	return v.errs
}

// Valid reports whether no rule failed.
func (v *Validator) Valid() bool {
	return len(v.errs) == 0
}

// Err returns a 422 validation error, or nil when all rules passed.
func (v *Validator) Err() error {
	if v.Valid() {
		return nil
	}
	return apperrors.NewValidationError("validation failed", v.errs)
}

// Field is one value under validation.
type Field struct {
	v      *Validator
	name   string
	value  any
	failed bool
	skip   bool
}

// Optional skips the remaining rules when the value is its zero value.
func (f *Field) Optional() *Field {
	if engine.Var(f.value, "required") != nil {
		f.skip = true
	}
	return f
}

// Required fails on zero values: empty strings, 0, nil.
func (f *Field) Required() *Field {
	return f.check("required", "required", fmt.Sprintf("%s is required", f.name))
}

// Min enforces a minimum length for strings or a minimum value for numbers.
func (f *Field) Min(n int) *Field {
	return f.check(fmt.Sprintf("min=%d", n), "min", f.boundMessage("at least", n))
}

// Max enforces a maximum length for strings or a maximum value for numbers.
func (f *Field) Max(n int) *Field {
	return f.check(fmt.Sprintf("max=%d", n), "max", f.boundMessage("at most", n))
}

// In requires the value to be one of options. Options must not contain spaces.
func (f *Field) In(options ...string) *Field {
	return f.check("oneof="+strings.Join(options, " "), "in",
		fmt.Sprintf("%s must be one of: %s", f.name, strings.Join(options, ", ")))
}

// Email requires a well-formed e-mail address.
func (f *Field) Email() *Field {
	return f.check("email", "email", fmt.Sprintf("%s must be a valid email address", f.name))
}

// Positive requires a number greater than zero.
func (f *Field) Positive() *Field {
	return f.check("gt=0", "positive", fmt.Sprintf("%s must be greater than zero", f.name))
}

// Custom records message when ok is false.
func (f *Field) Custom(ok bool, rule, message string) *Field {
	if f.failed || f.skip || ok {
		return f
	}
	f.fail(rule, message)
	return f
}

func (f *Field) check(tag, rule, message string) *Field {
	if f.failed || f.skip {
		return f
	}
	if err := engine.Var(f.value, tag); err != nil {
		f.fail(rule, message)
	}
	return f
}

func (f *Field) fail(rule, message string) {
	f.failed = true
	f.v.errs = append(f.v.errs, apperrors.FieldError{Field: f.name, Rule: rule, Message: message})
}

func (f *Field) boundMessage(qualifier string, n int) string {
	if _, ok := f.value.(string); ok {
		return fmt.Sprintf("%s must be %s %d characters", f.name, qualifier, n)
	}
	return fmt.Sprintf("%s must be %s %d", f.name, qualifier, n)
}
