package dto

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance. Struct tags are read once
// and cached, so a single instance serves all request types.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate runs struct-tag validation on a request DTO.
func Validate(req any) error {
	return validate.Struct(req)
}

// ValidationMessage converts a validator error into a client-facing
// message naming the first offending field.
func ValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Field '%s' is required", field)
	case "max":
		return fmt.Sprintf("Field '%s' exceeds maximum length %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("Field '%s' is below minimum %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("Field '%s' must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("Field '%s' is invalid", field)
	}
}
