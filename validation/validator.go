package validation

import (
	"errors"
	"slices"
	"strings"
)

// FieldError is a single failed check. Field is the dotted config key.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (f FieldError) String() string {
	if f.Field == "" {
		return f.Message
	}
	return f.Field + ": " + f.Message
}

// ValidationError carries every field that failed validation.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	messages := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		messages[i] = f.String()
	}
	return "validation failed: " + strings.Join(messages, "; ")
}

// Has reports whether field failed.
func (e *ValidationError) Has(field string) bool {
	return slices.ContainsFunc(e.Fields, func(f FieldError) bool { return f.Field == field })
}

// Validator accumulates failed checks so a config reports every problem at
// once. The zero value is ready to use.
type Validator struct {
	errors []FieldError
}

func New() *Validator {
	return &Validator{}
}

// AddError records a failure for field.
func (v *Validator) AddError(field, message string) *Validator {
	v.errors = append(v.errors, FieldError{Field: field, Message: message})
	return v
}

func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns the failures recorded so far.
func (v *Validator) Errors() []FieldError {
	return slices.Clone(v.errors)
}

// Validate returns a *ValidationError holding every failure, or nil.
func (v *Validator) Validate() error {
	if !v.HasErrors() {
		return nil
	}
	return &ValidationError{Fields: slices.Clone(v.errors)}
}

// Required fails when value is empty or only whitespace.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required")
	}
	return v
}

// OneOf fails when value is set and not in allowed. Empty values pass; pair
// with Required when the field is mandatory.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value != "" && !slices.Contains(allowed, value) {
		v.AddError(field, "must be one of: "+strings.Join(allowed, ", "))
	}
	return v
}

// Check records message for field unless ok holds.
func (v *Validator) Check(ok bool, field, message string) *Validator {
	if !ok {
		v.AddError(field, message)
	}
	return v
}

// Merge folds err into v. Fields of a *ValidationError are re-rooted under
// prefix ("logging" turns "level" into "logging.level"); any other error is
// recorded against prefix itself. A nil err is a no-op.
func (v *Validator) Merge(prefix string, err error) *Validator {
	if err == nil {
		return v
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		return v.AddError(prefix, err.Error())
	}
	for _, f := range ve.Fields {
		v.AddError(join(prefix, f.Field), f.Message)
	}
	return v
}

func join(prefix, field string) string {
	switch {
	case prefix == "":
		return field
	case field == "":
		return prefix
	default:
		return prefix + "." + field
	}
}
