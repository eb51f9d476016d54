package client

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/bobmcallan/feedpulse/internal/models"
)

// ErrValidation wraps request bodies rejected before they are sent.
var ErrValidation = errors.New("validation failed")

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterValidation("feedback_source", func(fl validator.FieldLevel) bool {
			return models.ValidFeedbackSources[fl.Field().String()]
		})
		validate.RegisterValidation("spec_status", func(fl validator.FieldLevel) bool {
			return models.ValidSpecStatuses[fl.Field().String()]
		})
	})
	return validate
}

// Validate checks a request body against its validate tags. The returned
// error wraps ErrValidation and lists every failing field.
func Validate(v any) error {
	err := requestValidator().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "url":
		return field + " must be a valid URL"
	case "datetime":
		return fmt.Sprintf("%s must match %s", field, fe.Param())
	case "feedback_source":
		return field + " is not a known feedback source"
	case "spec_status":
		return field + " must be draft, final or shared"
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}
