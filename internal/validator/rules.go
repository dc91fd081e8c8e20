package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// standardCharsPattern matches anything OUTSIDE the accepted alphabet:
// latin, cyrillic (including Ukrainian іїєґ letters), digits and common
// punctuation. A field passes when no such character is present.
var standardCharsPattern = regexp.MustCompile(`[^a-zA-Zа-яА-ЯёЁіІїЇєЄґҐ0-9!@#$%^&*()_+=\-,.;\s]`)

// registerCustomRules wires the project-specific validation tags into
// the validator instance. Registration failure aborts startup.
func registerCustomRules(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"standard_chars": validateStandardChars,
		"is-user-role":   validateUserRole,
		"is-currency":    validateCurrency,
	}

	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func validateStandardChars(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // 'required' handles empties
	}
	return !standardCharsPattern.MatchString(value)
}

func validateUserRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch value {
	case "user", "admin", "dev":
		return true
	default:
		return false
	}
}

func validateCurrency(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch value {
	case "usd", "uah", "eur":
		return true
	default:
		return false
	}
}
