package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validator is a function that validates a string value and returns an error message if invalid.
type Validator func(v string) string

// Required validates that a field is not empty and does not exceed maxLen characters.
// Uses rune count for proper Unicode support.
func Required(fieldName string, maxLen int) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return fieldName + " is required"
		}
		if utf8.RuneCountInString(v) > maxLen {
			return fmt.Sprintf("%s must be less than %d characters", fieldName, maxLen+1)
		}
		return ""
	}
}

// RequiredRange validates that a field is not empty and is between minLen and maxLen characters.
func RequiredRange(fieldName string, minLen, maxLen int) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return fieldName + " is required"
		}
		n := utf8.RuneCountInString(v)
		if n < minLen {
			return fmt.Sprintf("%s must be at least %d characters", fieldName, minLen)
		}
		if n > maxLen {
			return fmt.Sprintf("%s must be less than %d characters", fieldName, maxLen+1)
		}
		return ""
	}
}

// MinLength validates an untrimmed secret such as a password.
func MinLength(fieldName string, minLen int) Validator {
	return func(v string) string {
		if v == "" {
			return fieldName + " is required"
		}
		if utf8.RuneCountInString(v) < minLen {
			return fmt.Sprintf("%s must be at least %d characters", fieldName, minLen)
		}
		return ""
	}
}

// Equals validates a confirmation field against the value it must repeat.
func Equals(other, emptyMsg, mismatchMsg string) Validator {
	return func(v string) string {
		if v == "" {
			return emptyMsg
		}
		if v != other {
			return mismatchMsg
		}
		return ""
	}
}

// Pattern validates that a non-empty field matches re; msg is returned otherwise.
func Pattern(re *regexp.Regexp, msg string) Validator {
	return func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return ""
		}
		if !re.MatchString(v) {
			return msg
		}
		return ""
	}
}

// Optional validates that an optional field does not exceed maxLen characters if provided.
func Optional(fieldName string, maxLen int) Validator {
	return func(v string) string {
		if utf8.RuneCountInString(strings.TrimSpace(v)) > maxLen {
			return fmt.Sprintf("%s must be less than %d characters", fieldName, maxLen+1)
		}
		return ""
	}
}

// MaxItems validates a comma-separated list.
func MaxItems(fieldName string, maxItems int) Validator {
	return func(v string) string {
		if len(SplitList(v)) > maxItems {
			return fmt.Sprintf("Choose at most %d %s", maxItems, fieldName)
		}
		return ""
	}
}

// SplitList splits a comma-separated value, dropping blanks and keeping order.
func SplitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// FieldValidator provides a fluent API for validating multiple fields.
type FieldValidator struct {
	errors map[string]string
}

// New creates a new FieldValidator instance.
func New() *FieldValidator {
	return &FieldValidator{errors: make(map[string]string)}
}

// Validate validates a field with one or more validators.
// It stops at the first error for each field.
func (fv *FieldValidator) Validate(field, value string, validators ...Validator) *FieldValidator {
	for _, v := range validators {
		if err := v(value); err != "" {
			fv.errors[field] = err
			break
		}
	}
	return fv
}

// Errors returns the accumulated validation errors.
func (fv *FieldValidator) Errors() map[string]string {
	return fv.errors
}

// Valid reports whether no field failed.
func (fv *FieldValidator) Valid() bool { return len(fv.errors) == 0 }
