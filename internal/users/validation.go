package users

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/membership/internal/shared"
)

const emailTakenMessage = "The email has already been taken."

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

type inputValidator struct {
	validate *validator.Validate
}

func newInputValidator() *inputValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("bcryptlen", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= maxPasswordBytes
	})
	return &inputValidator{validate: v}
}

// check runs the struct rules and returns collected messages, never nil.
func (v *inputValidator) check(input any) (*shared.ValidationError, error) {
	verr := &shared.ValidationError{}
	err := v.validate.Struct(input)
	if err == nil {
		return verr, nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, err
	}
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), fieldMessage(fe))
	}
	return verr, nil
}

func fieldMessage(fe validator.FieldError) string {
	attr := shared.Attribute(fe.Field())
	switch fe.Tag() {
	case "required":
		return "The " + attr + " field is required."
	case "email":
		return "The " + attr + " field must be a valid email address."
	case "max":
		if isNumeric(fe.Kind()) {
			return "The " + attr + " field must not be greater than " + fe.Param() + "."
		}
		return "The " + attr + " field must not be greater than " + fe.Param() + " characters."
	case "min":
		if isNumeric(fe.Kind()) {
			return "The " + attr + " field must be at least " + fe.Param() + "."
		}
		return "The " + attr + " field must be at least " + fe.Param() + " characters."
	case "bcryptlen":
		return "The " + attr + " field must not be greater than " + strconv.Itoa(maxPasswordBytes) + " bytes."
	case "eqfield":
		return "The " + attr + " field confirmation does not match."
	default:
		return "The " + attr + " field is invalid."
	}
}

func isNumeric(kind reflect.Kind) bool {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func normalizeStatus(status *string) string {
	if status == nil {
		return DefaultStatus
	}
	trimmed := strings.TrimSpace(*status)
	if trimmed == "" {
		return DefaultStatus
	}
	return trimmed
}
