package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps JSON field names to a list of validation error messages.
type FieldErrors map[string][]string

// ValidationError satisfies httpx.DomainProblem structurally, without
// importing internal/httpx. This avoids cycles and lets httpx.ToProblem
// format it.
type ValidationError struct {
	summary string
	fields  FieldErrors
}

func (e *ValidationError) Error() string { return e.summary }

func (e *ValidationError) ProblemCode() string    { return "ErrValidation" }
func (e *ValidationError) ProblemStatus() int     { return 400 }
func (e *ValidationError) ProblemTitle() string   { return "Validation error" }
func (e *ValidationError) ProblemDetail() string  { return e.summary }
func (e *ValidationError) ProblemTypeURI() string { return "urn:problem:validation-error" }
func (e *ValidationError) ProblemContext() any    { return map[string]any{"fields": e.fields} }

// Fields exposes the per-field messages for tests and handlers.
func (e *ValidationError) Fields() FieldErrors { return e.fields }

// ValidateStruct validates a struct instance according to `validate` tags.
// On failure it returns a *ValidationError carrying a short summary and a
// map of JSON field name to messages. Validation failures carry no security
// sensitivity, so they are reported field by field.
func ValidateStruct(v any) error {
	validate := validator.New()

	// Report JSON tag names instead of Go struct field names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.Split(fld.Tag.Get("json"), ",")[0]
		if name == "" || name == "-" {
			return lowerFirst(fld.Name)
		}
		return name
	})

	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return &ValidationError{summary: "validation failed", fields: FieldErrors{}}
	}

	// ValidationErrors is ordered by struct field, so the summary always
	// names the same error for the same input.
	fields := make(FieldErrors)
	var firstField, firstMsg string
	for i, fe := range verrs {
		msg := messageForTag(fe)
		if i == 0 {
			firstField, firstMsg = fe.Field(), msg
		}
		fields[fe.Field()] = append(fields[fe.Field()], msg)
	}

	summary := fmt.Sprintf("%s %s", firstField, firstMsg)
	if others := total(fields) - 1; others > 0 {
		summary = fmt.Sprintf("%s, and %d other error%s", summary, others, plural(others))
	}

	return &ValidationError{summary: summary, fields: fields}
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return "is invalid"
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func total(m FieldErrors) int {
	n := 0
	for _, list := range m {
		n += len(list)
	}
	return n
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
