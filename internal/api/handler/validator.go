package handler

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/froker/lending-system/internal/core/domain"
)

// echoValidator adapts go-playground/validator to the echo.Validator
// interface so handlers can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator builds the request validator with the custom dob rule
// registered. dob checks the DD.MM.YYYY date-of-birth wire format.
func NewValidator() *echoValidator {
	v := validator.New()
	_ = v.RegisterValidation("dob", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(domain.DateOfBirthLayout, fl.Field().String())
		return err == nil
	})
	return &echoValidator{v: v}
}

// Validate satisfies echo.Validator.
func (ev *echoValidator) Validate(i any) error {
	err := ev.v.Struct(i)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fieldError(fe))
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

func fieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, fe.Param())
	case "numeric":
		return field + " must contain only digits"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "dob":
		return field + " must be a date in DD.MM.YYYY format"
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
