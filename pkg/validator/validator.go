package validator

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"anoa.com/practiceforum/pkg/apperror"
	"github.com/go-playground/validator/v10"
)

var (
	instance *validator.Validate
	once     sync.Once
)

// Get returns the shared validator with the custom rules registered.
func Get() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		_ = instance.RegisterValidation("hhmm", validateHHMM)
	})
	return instance
}

// Struct validates s and converts failures into an apperror.ValidationError.
func Struct(s interface{}) error {
	err := Get().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		return apperror.NewValidationError(getFieldName(validationErrors[0].Field()), FormatValidationError(err))
	}
	return apperror.NewValidationError("", err.Error())
}

func validateHHMM(fl validator.FieldLevel) bool {
	_, err := time.Parse("15:04", fl.Field().String())
	return err == nil
}

func FormatValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, fieldError := range validationErrors {
			message := getFieldErrorMessage(fieldError)
			messages = append(messages, message)
		}
		return strings.Join(messages, "; ")
	}
	return err.Error()
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := getFieldName(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_if":
		return fmt.Sprintf("%s is required when auto-generation is enabled", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "hhmm":
		return fmt.Sprintf("%s must use the HH:MM format", field)
	case "timezone":
		return fmt.Sprintf("%s must be a valid IANA timezone", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gtefield":
		return fmt.Sprintf("%s must not be lower than %s", field, getFieldName(fe.Param()))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "min":
		if fe.Type().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Type().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"Time":         "time",
		"Timezone":     "timezone",
		"Period":       "period",
		"TitlePrompt":  "title_prompt",
		"PostPrompt":   "post_prompt",
		"WordLimitMin": "word_limit_min",
		"WordLimitMax": "word_limit_max",
		"Value":        "value",
		"Email":        "email",
		"Password":     "password",
	}

	if name, ok := fieldNames[field]; ok {
		return name
	}
	return field
}
