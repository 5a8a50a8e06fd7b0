package domain

import (
	"net/mail"
	"strings"
	"time"
)

// User represents an account managed through the admin panel.
// PasswordHash holds a bcrypt hash; the cleartext password is never stored.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
}

// CreateUserRequest holds a validated create-form submission.
// Permissions and Groups are the full assignment sets for the new user.
type CreateUserRequest struct {
	Active      bool
	Username    string
	Email       string
	Password    string
	PassConfirm string
	Permissions []int64
	Groups      []int64
}

// UpdateUserRequest holds an update-form submission. Password is optional:
// when empty the stored hash is retained. Permissions and Groups replace
// the user's current assignment sets entirely.
type UpdateUserRequest struct {
	Active      bool
	Username    string
	Email       string
	Password    string
	PassConfirm string
	Permissions []int64
	Groups      []int64
}

// Validate checks the shape of the request. Uniqueness of username and
// email is checked separately against the store.
func (r *CreateUserRequest) Validate() map[string]string {
	fields := map[string]string{}
	validateUsername(fields, r.Username)
	validateEmail(fields, r.Email)
	if r.Password == "" {
		fields["password"] = "The password field is required."
	} else if r.PassConfirm != r.Password {
		fields["pass_confirm"] = "The password confirmation does not match."
	}
	validateAssignments(fields, r.Permissions, r.Groups)
	return fields
}

// Validate checks the shape of the request; the password is only
// validated when one was supplied.
func (r *UpdateUserRequest) Validate() map[string]string {
	fields := map[string]string{}
	validateUsername(fields, r.Username)
	validateEmail(fields, r.Email)
	if r.Password != "" && r.PassConfirm != r.Password {
		fields["pass_confirm"] = "The password confirmation does not match."
	}
	validateAssignments(fields, r.Permissions, r.Groups)
	return fields
}

func validateUsername(fields map[string]string, username string) {
	switch {
	case username == "":
		fields["username"] = "The username field is required."
	case len([]rune(username)) < 3:
		fields["username"] = "The username must be at least 3 characters long."
	case !isAlphaNumericSpace(username):
		fields["username"] = "The username may only contain letters, numbers, and spaces."
	}
}

func validateEmail(fields map[string]string, email string) {
	if email == "" {
		fields["email"] = "The email field is required."
		return
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		fields["email"] = "The email must be a valid email address."
	}
}

func validateAssignments(fields map[string]string, permissions, groups []int64) {
	if len(permissions) == 0 {
		fields["permission"] = "Select at least one permission."
	}
	if len(groups) == 0 {
		fields["role"] = "Select at least one role."
	}
}

func isAlphaNumericSpace(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == ' ':
		default:
			return false
		}
	}
	return strings.TrimSpace(s) != ""
}
