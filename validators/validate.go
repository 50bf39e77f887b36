package validators

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields under their JSON names.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// Struct validates the `validate` tags of req and returns one message per
// failing field, keyed by JSON name. It returns nil when req is valid.
func Struct(req interface{}) map[string]string {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return map[string]string{"body": err.Error()}
	}

	out := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required!", fe.Field())
	case "email":
		return "Invalid email!"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long!", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long!", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s!", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s!", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid!", fe.Field())
	}
}
