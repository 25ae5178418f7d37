package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/caredesk/caredesk/internal/api"
	"github.com/caredesk/caredesk/internal/form"
)

// CodeLength is the number of digits in a verification code.
const CodeLength = 6

// MaxVerifyAttempts is how many wrong codes are accepted before the flow
// must be restarted.
const MaxVerifyAttempts = 5

// Reset flow errors.
var (
	ErrWrongStage       = errors.New("reset flow is not at this stage")
	ErrTooManyAttempts  = errors.New("too many incorrect codes; request a new one")
	ErrInvalidCode      = errors.New("incorrect verification code")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// ResetStage is a point in the reset flow.
type ResetStage int

// Reset stages in order.
const (
	StageRequest ResetStage = iota
	StageVerify
	StageNewPassword
	StageDone
)

func (s ResetStage) String() string {
	switch s {
	case StageRequest:
		return "request"
	case StageVerify:
		return "verify"
	case StageNewPassword:
		return "new-password"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}

// ResetAPI is the subset of the API client the reset flow needs.
type ResetAPI interface {
	ResetPassword(ctx context.Context, email string) error
	VerifyToken(ctx context.Context, email, code string) (*api.ResetTicket, error)
	SetNewPassword(ctx context.Context, ticket, password string) error
}

// ResetFlow walks request -> verify -> new password -> done.
type ResetFlow struct {
	client   ResetAPI
	stage    ResetStage
	email    string
	ticket   string
	attempts int
}

// NewResetFlow starts a flow at the request stage.
func NewResetFlow(client ResetAPI) *ResetFlow {
	return &ResetFlow{client: client}
}

// Stage returns the current stage.
func (f *ResetFlow) Stage() ResetStage { return f.stage }

// Email returns the address the code was sent to.
func (f *ResetFlow) Email() string { return f.email }

// AttemptsLeft is the number of codes that may still be tried.
func (f *ResetFlow) AttemptsLeft() int { return MaxVerifyAttempts - f.attempts }

// Request sends a verification code to email.
func (f *ResetFlow) Request(ctx context.Context, email string) error {
	if f.stage != StageRequest {
		return ErrWrongStage
	}
	email = strings.TrimSpace(email)
	errs := form.Errors{}
	errs.Check("email", form.Email(email))
	if err := errs.Err(); err != nil {
		return err
	}

	if err := f.client.ResetPassword(ctx, email); err != nil {
		return err
	}
	f.email = email
	f.attempts = 0
	f.stage = StageVerify
	return nil
}

// Resend asks for another code. It does not restore spent attempts; once
// they run out only Restart helps.
func (f *ResetFlow) Resend(ctx context.Context) error {
	if f.stage != StageVerify {
		return ErrWrongStage
	}
	if f.attempts >= MaxVerifyAttempts {
		return ErrTooManyAttempts
	}
	return f.client.ResetPassword(ctx, f.email)
}

// Verify checks the emailed code.
func (f *ResetFlow) Verify(ctx context.Context, code string) error {
	if f.stage != StageVerify {
		return ErrWrongStage
	}
	if f.attempts >= MaxVerifyAttempts {
		return ErrTooManyAttempts
	}
	code = strings.TrimSpace(code)
	errs := form.Errors{}
	errs.Check("code", form.Digits(code, CodeLength))
	if err := errs.Err(); err != nil {
		return err
	}

	f.attempts++
	ticket, err := f.client.VerifyToken(ctx, f.email, code)
	if err != nil {
		switch {
		case api.IsStatus(err, http.StatusTooManyRequests):
			f.attempts = MaxVerifyAttempts
			return ErrTooManyAttempts
		case api.IsStatus(err, http.StatusUnauthorized), api.IsStatus(err, http.StatusBadRequest):
			if f.attempts >= MaxVerifyAttempts {
				return ErrTooManyAttempts
			}
			return ErrInvalidCode
		}
		return err
	}

	f.ticket = ticket.Token
	f.stage = StageNewPassword
	return nil
}

// SetPassword sets the new password using the verified ticket.
func (f *ResetFlow) SetPassword(ctx context.Context, password, confirm string) error {
	if f.stage != StageNewPassword {
		return ErrWrongStage
	}
	errs := form.Errors{}
	errs.Check("password", ValidatePassword(password))
	if password != confirm {
		errs.Add("confirm", ErrPasswordMismatch.Error())
	}
	if err := errs.Err(); err != nil {
		return err
	}

	if err := f.client.SetNewPassword(ctx, f.ticket, password); err != nil {
		return err
	}
	f.ticket = ""
	f.stage = StageDone
	return nil
}

// Restart returns to the request stage, forgetting the email and ticket.
func (f *ResetFlow) Restart() {
	*f = ResetFlow{client: f.client}
}
