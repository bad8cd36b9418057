package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to user-facing labels
var FieldLabels = map[string]string{
	"Name":      "Name",
	"Address":   "Address",
	"Telephone": "Telephone",
	"Mobile":    "Mobile",
	"Email":     "Email",
	"Country":   "Country",
}

// FirstMessage returns the message for the first failing rule. Blank
// required fields are reported before any other rule so that the
// name, mobile, country order holds regardless of what else is wrong.
func FirstMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}
	if len(validationErrors) == 0 {
		return ""
	}

	for _, e := range validationErrors {
		if e.Tag() == "not_blank" || e.Tag() == "required" {
			return formatSingleError(e)
		}
	}
	return formatSingleError(validationErrors[0])
}

func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())

	switch e.Tag() {
	case "required", "not_blank":
		return fmt.Sprintf("%s field cannot be empty", label)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, e.Param())
	case "email":
		return fmt.Sprintf("%s is not a valid email address", label)
	default:
		return fmt.Sprintf("%s failed validation (%s)", label, e.Tag())
	}
}

func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return formatCamelCase(fieldName)
}

// formatCamelCase converts CamelCase to spaced words
func formatCamelCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune(' ')
		}
		result.WriteRune(r)
	}
	return result.String()
}
