package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	internal_errors "github.com/itchan-dev/feed/shared/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their json names, the way clients sent them
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	// maxbytes bounds the encoded length; max counts runes
	v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= limit
	})
	return v
}

// Struct validates v by its `validate` tags. Rule violations come back as a
// 422 ErrorWithStatusCode listing every rejected field under message.
func Struct(message string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate %T: %w", v, err)
	}

	fields := make([]internal_errors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, internal_errors.FieldError{Field: fe.Field(), Message: describe(fe)})
	}
	return internal_errors.Validation(message, fields...)
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s should not be empty.", field)
	case "email":
		return "Please enter a valid email."
	case "min":
		return fmt.Sprintf("%s length should be at least %s.", capitalize(field), fe.Param())
	case "max":
		return fmt.Sprintf("%s length should be at most %s.", capitalize(field), fe.Param())
	case "maxbytes":
		return fmt.Sprintf("%s should be at most %s bytes long.", capitalize(field), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid.", field)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
