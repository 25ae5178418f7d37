// Package auth drives the login and password reset flows on the client.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"github.com/caredesk/caredesk/internal/api"
	"github.com/caredesk/caredesk/internal/form"
)

// MinPasswordLength is the shortest accepted new password.
const MinPasswordLength = 8

// ErrInvalidCredentials is returned when the API rejects email/password.
var ErrInvalidCredentials = errors.New("incorrect email or password")

// LoginAPI is the subset of the API client used to sign in.
type LoginAPI interface {
	LoginUser(ctx context.Context, email, password string) (*api.Session, error)
}

// ValidateLogin checks the login form before any request is made.
func ValidateLogin(email, password string) error {
	errs := form.Errors{}
	errs.Check("email", form.Email(email))
	if password == "" {
		errs.Add("password", "is required")
	}
	return errs.Err()
}

// ValidatePassword enforces the new-password rules.
func ValidatePassword(password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return fmt.Errorf("must be at least %d characters", MinPasswordLength)
	}
	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return fmt.Errorf("must contain a letter and a digit")
	}
	return nil
}

// Login validates the form and signs in. A 401 from the API becomes
// ErrInvalidCredentials.
func Login(ctx context.Context, client LoginAPI, email, password string) (*api.Session, error) {
	email = strings.TrimSpace(email)
	if err := ValidateLogin(email, password); err != nil {
		return nil, err
	}
	session, err := client.LoginUser(ctx, email, password)
	if err != nil {
		if api.IsStatus(err, http.StatusUnauthorized) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return session, nil
}
