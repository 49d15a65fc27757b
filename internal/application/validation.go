package application

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var inputValidator = newInputValidator()

func newInputValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		if label := field.Tag.Get("label"); label != "" {
			return label
		}
		return strings.ToLower(field.Name)
	})
	return v
}

// validateInput runs the struct tags of input and converts violations into a
// field keyed ValidationError.
func validateInput(input any) *ValidationError {
	vErr := &ValidationError{}
	err := inputValidator.Struct(input)
	if err == nil {
		return vErr
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		vErr.add("input", err.Error())
		return vErr
	}
	for _, fe := range fieldErrs {
		vErr.add(fe.Field(), fieldMessage(fe))
	}
	return vErr
}

func fieldMessage(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "email":
		return name + " is invalid"
	case "datetime":
		return name + " must be a date formatted YYYY-MM-DD"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "http_url":
		return name + " must be an absolute http or https URL"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
	default:
		return name + " is invalid"
	}
}

// parseDate parses a validated YYYY-MM-DD string as midnight UTC.
func parseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(value), time.UTC)
}

func trimPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	return &trimmed
}
