package validation

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// Optional leading +, then digits separated by spaces, dashes, dots or parentheses
	phoneRegex = regexp.MustCompile(`^\+?[0-9 ().-]+$`)

	// builtin runs stock tags on values the custom validators derive
	builtin = validator.New()
)

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("valid_phone", ValidPhone)
	_ = v.RegisterValidation("not_blank", NotBlank)
	_ = v.RegisterValidation("trimmed_email", TrimmedEmail)
}

// ValidPhone validates a phone number structure: 7-15 digits once separators are removed
func ValidPhone(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	if !phoneRegex.MatchString(val) {
		return false
	}
	digits := 0
	for _, r := range val {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 7 && digits <= 15
}

// NotBlank rejects strings that are empty after trimming whitespace
func NotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// TrimmedEmail applies the email rule after trimming surrounding whitespace
func TrimmedEmail(fl validator.FieldLevel) bool {
	return builtin.Var(strings.TrimSpace(fl.Field().String()), "email") == nil
}
