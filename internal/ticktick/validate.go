package ticktick

import (
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// validate is a singleton validator instance reporting JSON field names.
var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// validateInput checks v against its validate tags and returns the first
// violation as a ValidationError.
func validateInput(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return NewValidationError(fe.Field(), "is required")
	case "oneof":
		return NewValidationError(fe.Field(), "must be one of [%s], got %v", fe.Param(), fe.Value())
	default:
		return NewValidationError(fe.Field(), "failed %q validation", fe.Tag())
	}
}
