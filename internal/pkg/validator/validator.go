package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"clickservice/internal/domain"

	"github.com/go-playground/validator/v10"
)

var phonePattern = regexp.MustCompile(`^[0-9+\-\s()]{8,20}$`)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
}

// Struct runs tag validation and returns every violation in field order.
// The result is never nil so callers can append cross-field checks to it.
func Struct(v any) *domain.ValidationError {
	verr := domain.NewValidationError()
	err := validate.Struct(v)
	if err == nil {
		return verr
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		verr.Add("_", err.Error())
		return verr
	}
	for _, fe := range errs {
		verr.Add(fe.Field(), message(fe))
	}
	return verr
}

// Validate is Struct reduced to an error.
func Validate(v any) error {
	return Struct(v).OrNil()
}

func message(fe validator.FieldError) string {
	isText := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if isText {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if isText {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "phone":
		return "must be 8-20 characters of digits, spaces, '+', '-', '(' or ')'"
	default:
		return "failed " + fe.Tag()
	}
}
