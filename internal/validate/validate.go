// Package validate checks form input before it reaches the identity
// provider or the store, returning user-facing messages per field.
package validate

import (
	"fmt"
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Rules describes the checks applied to a single field. Zero values
// disable the corresponding check.
type Rules struct {
	Required  bool
	Email     bool
	MinLength int
	MaxLength int
	Pattern   *regexp.Regexp
	// Match holds the value of another field the input must equal,
	// e.g. a password confirmation.
	Match *string
}

// Field returns the messages for every rule the value fails. An empty
// slice means the value is valid.
func Field(value string, rules Rules) []string {
	var errs []string

	if rules.Required && value == "" {
		errs = append(errs, "This field is required")
	}
	if rules.Email && value != "" && !emailPattern.MatchString(value) {
		errs = append(errs, "Please enter a valid email address")
	}
	if rules.MinLength > 0 && len(value) < rules.MinLength {
		errs = append(errs, fmt.Sprintf("Must be at least %d characters", rules.MinLength))
	}
	if rules.MaxLength > 0 && len(value) > rules.MaxLength {
		errs = append(errs, fmt.Sprintf("Must be no more than %d characters", rules.MaxLength))
	}
	if rules.Pattern != nil && value != "" && !rules.Pattern.MatchString(value) {
		errs = append(errs, "Please enter a valid value")
	}
	if rules.Match != nil && value != *rules.Match {
		errs = append(errs, "Values do not match")
	}
	return errs
}

const passwordSpecials = "!@#$%^&*"

// Password returns the strength requirements a password fails to meet.
func Password(password string) []string {
	var errs []string

	if len(password) < 8 {
		errs = append(errs, "Password must be at least 8 characters")
	}
	if !strings.ContainsFunc(password, func(r rune) bool { return r >= 'A' && r <= 'Z' }) {
		errs = append(errs, "Password must contain at least one uppercase letter")
	}
	if !strings.ContainsFunc(password, func(r rune) bool { return r >= 'a' && r <= 'z' }) {
		errs = append(errs, "Password must contain at least one lowercase letter")
	}
	if !strings.ContainsFunc(password, func(r rune) bool { return r >= '0' && r <= '9' }) {
		errs = append(errs, "Password must contain at least one number")
	}
	if !strings.ContainsAny(password, passwordSpecials) {
		errs = append(errs, "Password must contain at least one special character (!@#$%^&*)")
	}
	return errs
}
