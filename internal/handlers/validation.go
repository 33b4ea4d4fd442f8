package handlers

import (
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Shared validator instance, reused across all handlers
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// max counts runes; bcrypt caps passwords at 72 bytes. maxbytes checks
	// the encoded length so multi-byte passwords cannot slip past
	// validation and fail inside the hasher.
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= limit
	})

	return v
}

// ValidateRequest validates a request struct against its validate tags.
// It returns one message per failing field, or nil when the struct is valid.
func ValidateRequest(req interface{}) []string {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{"invalid request"}
	}

	fields := make([]string, 0, len(ve))
	for _, fieldError := range ve {
		fields = append(fields, fmt.Sprintf("%s: %s", fieldError.Field(), formatValidationError(fieldError)))
	}
	return fields
}

func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must have a minimum of %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must have a maximum of %s characters", fe.Param())
	case "maxbytes":
		return fmt.Sprintf("must be at most %s bytes", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}
