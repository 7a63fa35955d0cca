package validation

import (
	"regexp"
	"strings"

	"quizhive/internal/domain"
)

const (
	maxUsernameLength = 64
	maxPasswordLength = 128
)

var validULID = regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateCredentials validates a register or login payload.
func (v *Validator) ValidateCredentials(username, password string) domain.ValidationErrors {
	var errs domain.ValidationErrors

	if strings.TrimSpace(username) == "" {
		errs = append(errs, domain.NewMissingFieldError("username"))
	} else if len(username) > maxUsernameLength {
		errs = append(errs, domain.NewInvalidFormatError("username", username))
	}

	if password == "" {
		errs = append(errs, domain.NewMissingFieldError("password"))
	} else if len(password) > maxPasswordLength {
		errs = append(errs, domain.NewInvalidFormatError("password", "(redacted)"))
	}

	return errs
}

// ValidateID validates a ULID path parameter.
func (v *Validator) ValidateID(field, id string) domain.ValidationErrors {
	var errs domain.ValidationErrors

	if strings.TrimSpace(id) == "" {
		errs = append(errs, domain.NewMissingFieldError(field))
	} else if !IsValidULID(id) {
		errs = append(errs, domain.NewInvalidFormatError(field, id))
	}

	return errs
}

// IsValidULID checks if the string is a valid ULID (26 chars, Crockford's
// Base32).
func IsValidULID(s string) bool {
	if len(s) != 26 {
		return false
	}
	return validULID.MatchString(s)
}
