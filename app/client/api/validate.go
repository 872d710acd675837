package api

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}

			return name
		})
	})

	return validate
}

// Validate checks a request payload before it is sent. Failures carry the
// same shape as a server 422: status_code and per-field messages.
func Validate(payload any) error {
	err := validatorInstance().Struct(payload)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return oops.Errorf("failed to validate payload: %w", err)
	}

	fields := make(map[string][]string, len(validationErrs))
	for _, fieldErr := range validationErrs {
		fields[fieldErr.Field()] = append(fields[fieldErr.Field()], describeField(fieldErr))
	}

	return newError(ErrAPI, http.StatusUnprocessableEntity, MsgValidation, fields)
}

func describeField(fieldErr validator.FieldError) string {
	label := strings.ReplaceAll(fieldErr.Field(), "_", " ")

	switch fieldErr.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "email":
		return "Please enter a valid email address"
	case "min":
		if fieldErr.Kind() == reflect.Slice {
			return fmt.Sprintf("select at least %s %s", fieldErr.Param(), label)
		}
		return fmt.Sprintf("%s must be at least %s characters", label, fieldErr.Param())
	case "eqfield":
		return "Passwords don't match"
	case "nefield":
		return "New password must be different from the current password"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", label, fieldErr.Param())
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}
