package validation

import (
	"fmt"
	"strings"

	"github.com/kbukum/localdiscovery/errors"
)

// FieldError is a single field validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator collects programmatic validation failures.
//
//	v := validation.New()
//	v.Range("server.port", port, 0, 65535)
//	if err := v.Validate(); err != nil { ... }
type Validator struct {
	errors []FieldError
}

// New creates an empty Validator.
func New() *Validator {
	return &Validator{}
}

// AddError records a failure for field.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any check failed.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns the collected failures.
func (v *Validator) Errors() []FieldError {
	return v.errors
}

// Validate returns nil or an AppError listing every failure.
func (v *Validator) Validate() error {
	if !v.HasErrors() {
		return nil
	}
	msgs := make([]string, 0, len(v.errors))
	for _, e := range v.errors {
		msgs = append(msgs, e.Field+": "+e.Message)
	}
	return errors.Validation(strings.Join(msgs, "; ")).WithDetail("fields", v.errors)
}

// Required fails when value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required")
	}
	return v
}

// Range fails when value is outside [lo, hi].
func (v *Validator) Range(field string, value, lo, hi int) *Validator {
	if value < lo || value > hi {
		v.AddError(field, fmt.Sprintf("must be between %d and %d (got: %d)", lo, hi, value))
	}
	return v
}

// OneOf fails when value is not one of allowed.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.AddError(field, fmt.Sprintf("must be one of %v (got: %q)", allowed, value))
	return v
}

// Check records message for field when ok is false.
func (v *Validator) Check(ok bool, field, message string) *Validator {
	if !ok {
		v.AddError(field, message)
	}
	return v
}
