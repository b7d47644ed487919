package serverutils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest runs struct-tag validation and flattens the failures
// into a single error message suitable for a 400 body.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}

		messages := make([]string, 0, len(validationErrors))
		for _, fieldErr := range validationErrors {
			switch fieldErr.Tag() {
			case "required":
				messages = append(messages, fmt.Sprintf("%s is required", fieldErr.Field()))
			case "min":
				messages = append(messages, fmt.Sprintf("%s must be at least %s", fieldErr.Field(), fieldErr.Param()))
			case "max":
				messages = append(messages, fmt.Sprintf("%s must be at most %s", fieldErr.Field(), fieldErr.Param()))
			case "uuid":
				messages = append(messages, fmt.Sprintf("%s must be a valid uuid", fieldErr.Field()))
			default:
				messages = append(messages, fmt.Sprintf("%s is invalid", fieldErr.Field()))
			}
		}
		return fmt.Errorf("%s", strings.Join(messages, "; "))
	}
	return nil
}
