package session

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/matheuskafuri/articles/internal/api"
)

const (
	minUsernameLen = 3
	minPasswordLen = 8
)

// ValidateCredentials checks the trimmed lengths the login form requires
// before it can be submitted.
func ValidateCredentials(creds api.Credentials) error {
	username := strings.TrimSpace(creds.Username)
	password := strings.TrimSpace(creds.Password)
	return validation.Errors{
		"username": validation.Validate(username,
			validation.Required.Error("username is required"),
			validation.RuneLength(minUsernameLen, 0).Error("username must be at least 3 characters"),
		),
		"password": validation.Validate(password,
			validation.Required.Error("password is required"),
			validation.RuneLength(minPasswordLen, 0).Error("password must be at least 8 characters"),
		),
	}.Filter()
}

// CanSubmit reports whether the login submit control is enabled.
func CanSubmit(creds api.Credentials) bool {
	return ValidateCredentials(creds) == nil
}
