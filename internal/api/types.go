// Package api is the HTTP client for the CareDesk hospital API.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/caredesk/caredesk/internal/registration"
)

// User is the signed-in staff member.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Session is returned by a successful login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

// ResetTicket authorises a single password change after code verification.
type ResetTicket struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Receipt confirms a submitted registration.
type Receipt struct {
	ID        string            `json:"id"`
	Fees      registration.Fees `json:"fees"`
	CreatedAt time.Time         `json:"created_at"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ResetRequest is the body of POST /auth/reset.
type ResetRequest struct {
	Email string `json:"email"`
}

// VerifyRequest is the body of POST /auth/verify.
type VerifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// PasswordRequest is the body of POST /auth/password.
type PasswordRequest struct {
	Ticket   string `json:"ticket"`
	Password string `json:"password"`
}

// Error is a non-2xx API response.
type Error struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// IsStatus reports whether err is an *Error with the given status.
func IsStatus(err error, status int) bool {
	apiErr, ok := asError(err)
	return ok && apiErr.Status == status
}
