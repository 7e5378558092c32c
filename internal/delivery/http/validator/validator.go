// Package validator adapts go-playground/validator to echo's Validator interface.
package validator

import (
	"reflect"
	"strings"

	domainerrors "userhub/internal/domain/errors"

	playground "github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Validator validates request payloads bound by echo handlers.
type Validator struct {
	validate *playground.Validate
}

// New creates a Validator that reports field names by their json tag.
func New() *Validator {
	validate := playground.New(playground.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	return &Validator{validate: validate}
}

// Validate implements echo.Validator. Failures are returned as ErrValidationFailed
// with one "field: rule" entry per violated constraint.
func (v *Validator) Validate(i any) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs playground.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.Wrap(err, "validate request")
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fieldErr := range fieldErrs {
		messages = append(messages, describe(fieldErr))
	}

	return domainerrors.ErrValidationFailed.WithDetails(strings.Join(messages, "; "))
}

func describe(fieldErr playground.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return fieldErr.Field() + ": is required"
	case "email":
		return fieldErr.Field() + ": must be a valid email address"
	case "min":
		return fieldErr.Field() + ": must not be empty"
	case "max":
		return fieldErr.Field() + ": must be at most " + fieldErr.Param() + " characters"
	default:
		return fieldErr.Field() + ": failed " + fieldErr.Tag()
	}
}
