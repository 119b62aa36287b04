package registration

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/skillproof/backend/internal/models"
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// toValidationError reports the first failing field as a models.ValidationError.
func toValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	var msg string
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "email":
		msg = "must be a valid email address"
	case "url":
		msg = "must be a valid URL"
	case "min", "gte":
		msg = fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		msg = fmt.Sprintf("must be at most %s", fe.Param())
	default:
		msg = "is invalid"
	}
	return models.NewValidationError(fe.Field(), msg)
}
