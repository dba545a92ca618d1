package web

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// GetErrorMsg builds a readable message from the first binding validation error.
func GetErrorMsg(ve validator.ValidationErrors) string {
	if len(ve) == 0 {
		return ""
	}

	field := ve[0]

	switch field.Tag() {
	case "required":
		return field.Field() + " field is required"
	case "email":
		return field.Field() + " field must contain a valid email"
	case "alphanum":
		return field.Field() + " field must contain only letters and numbers"
	case "numeric":
		return field.Field() + " field must be numeric"
	case "min":
		return fmt.Sprintf("%s field must be at least %s characters or greater", field.Field(), field.Param())
	case "max":
		return fmt.Sprintf("%s field must be %s characters or less", field.Field(), field.Param())
	case "oneof":
		return fmt.Sprintf("%s field must be one of: %s", field.Field(), field.Param())
	case "len":
		return fmt.Sprintf("%s field must be exactly %s characters", field.Field(), field.Param())
	}

	return field.Field() + " field is invalid"
}
