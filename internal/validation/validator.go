// Package validation validates request payloads against their struct
// tags and produces user-facing error messages.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// idPattern matches the identifier grammar shared by Slack and Linear
// IDs: letters, digits, hyphens and underscores.
var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

func init() {
	mustRegister("custom_id", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			// Empty values are the 'required' tag's business.
			return true
		}

		return idPattern.MatchString(s)
	})

	mustRegister("ymd_date", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}

		_, err := time.Parse("2006-01-02", s)

		return err == nil
	})
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("failed to register custom validation: %v", err))
	}
}

// ValidationError collects every failed field so the caller can report
// them all at once instead of stopping at the first.
type ValidationError struct {
	Errors []string
}

// Error returns a single string concatenating all validation error messages.
func (v *ValidationError) Error() string {
	return strings.Join(v.Errors, ", ")
}

// ValidateStruct checks s against its validation tags and returns a
// *ValidationError describing every violation, or nil when s is valid.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var messages []string
	for _, fieldErr := range err.(validator.ValidationErrors) {
		messages = append(messages, messageFor(fieldErr))
	}

	return &ValidationError{Errors: messages}
}

func messageFor(err validator.FieldError) string {
	switch err.Tag() {
	case "custom_id":
		return fmt.Sprintf(
			"field '%s' must contain only letters, numbers, hyphens, and underscores",
			err.Field(),
		)
	case "ymd_date":
		return fmt.Sprintf(
			"field '%s' must be a date in YYYY-MM-DD form",
			err.Field(),
		)
	default:
		return fmt.Sprintf(
			"field '%s' failed on the '%s' tag",
			err.Field(),
			err.Tag(),
		)
	}
}
