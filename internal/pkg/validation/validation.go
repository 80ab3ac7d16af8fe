// Package validation wraps go-playground/validator with the project's custom
// tags and converts failures into apperr field errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/OkontaEhis/myhitmeup-backend/internal/pkg/apperr"

	"github.com/go-playground/validator/v10"
)

var (
	// phoneRe is E.164: a plus, a nonzero digit, then up to 14 more digits.
	phoneRe = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)
	ninRe   = regexp.MustCompile(`^\d{11}$`)
)

// ValidPhone reports whether s is an E.164 phone number.
func ValidPhone(s string) bool { return phoneRe.MatchString(s) }

// ValidNIN reports whether s is an 11-digit national identification number.
func ValidNIN(s string) bool { return ninRe.MatchString(s) }

// New returns a validator with the "phone" and "nin" tags registered and
// field names taken from json tags.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return ValidPhone(fl.Field().String())
	})
	_ = v.RegisterValidation("nin", func(fl validator.FieldLevel) bool {
		return ValidNIN(fl.Field().String())
	})
	return v
}

// Struct validates s and returns an *apperr.Error listing every bad field.
func Struct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Internal("validate input", err)
	}
	fields := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperr.FieldError{Field: fe.Field(), Error: message(fe)})
	}
	return apperr.Validation(summary(fields), fields...)
}

func summary(fields []apperr.FieldError) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.Field+" "+f.Error)
	}
	return "Validation failed: " + strings.Join(parts, "; ")
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "phone":
		return "must be in E.164 format (+ followed by 2 to 15 digits, first digit nonzero)"
	case "nin":
		return "must be exactly 11 digits"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", fe.Param())
		}
		return fmt.Sprintf("must not exceed %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("failed %s:%s", fe.Tag(), fe.Param())
		}
		return "failed " + fe.Tag()
	}
}
