package lexia

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func paramsValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		_ = v.RegisterValidation("queue_status", func(fl validator.FieldLevel) bool {
			switch fl.Field().String() {
			case QueueStatusNew, QueueStatusInProgress, QueueStatusSuccessful, QueueStatusFailed:
				return true
			}
			return false
		})

		validate = v
	})
	return validate
}

// validateParams checks params against their validate tags. Failures are
// KindInvalidInput errors whose Detail maps field names to messages.
func validateParams(params any) error {
	err := paramsValidator().Struct(params)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return newError(KindInvalidInput, "invalid parameters", err)
	}

	detail := make(map[string]string, len(fieldErrs))
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fe.Field()
		if field == "" {
			field = fe.StructField()
		}
		msg := fieldMessage(field, fe)
		detail[field] = msg
		msgs = append(msgs, msg)
	}
	return inputError(strings.Join(msgs, "; "), detail)
}

func fieldMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "notblank":
		return field + " must not be blank"
	case "queue_status":
		return fmt.Sprintf("%s must be one of %q, %q, %q, %q", field,
			QueueStatusNew, QueueStatusInProgress, QueueStatusSuccessful, QueueStatusFailed)
	case "min":
		return fmt.Sprintf("%s must contain at least %s element(s)", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation on '%s'", field, fe.Tag())
	}
}
