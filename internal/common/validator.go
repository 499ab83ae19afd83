package common

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RequestValidator adapts go-playground/validator to echo's Validator interface.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New()}
}

// Validate returns a *ValidationError keyed by lower-cased field name.
func (v *RequestValidator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Fields: map[string]string{"request": err.Error()}}
	}
	return &ValidationError{Fields: FormatValidationErrors(verrs)}
}

// FormatValidationErrors turns validator errors into field -> message pairs.
func FormatValidationErrors(errs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			out[field] = "is required"
		case "min":
			out[field] = "must be at least " + e.Param()
		case "max":
			out[field] = "must be at most " + e.Param()
		case "gte":
			out[field] = "must be greater than or equal to " + e.Param()
		case "gt":
			out[field] = "must be greater than " + e.Param()
		default:
			out[field] = "failed on " + e.Tag()
		}
	}
	return out
}
