package domain

import "time"

// User represents a registered account. Passwords are stored as given: the
// original product decision not to hash them is preserved as a known gap, not
// silently fixed.
type User struct {
	ID        string
	Username  string
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate validates the user
func (u *User) Validate() error {
	var errs ValidationErrors
	if u.Username == "" {
		errs = append(errs, NewMissingFieldError("username"))
	}
	if u.Password == "" {
		errs = append(errs, NewMissingFieldError("password"))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
