package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caredesk/caredesk/internal/api"
	"github.com/caredesk/caredesk/internal/form"
)

type fakeAPI struct {
	password    string
	code        string
	requests    []string
	newPassword string
	verifyErr   error
}

func (f *fakeAPI) LoginUser(ctx context.Context, email, password string) (*api.Session, error) {
	if password != f.password {
		return nil, &api.Error{Status: http.StatusUnauthorized, Message: "invalid credentials"}
	}
	return &api.Session{Token: "tok", ExpiresAt: time.Now().Add(time.Hour), User: api.User{Email: email}}, nil
}

func (f *fakeAPI) ResetPassword(ctx context.Context, email string) error {
	f.requests = append(f.requests, email)
	return nil
}

func (f *fakeAPI) VerifyToken(ctx context.Context, email, code string) (*api.ResetTicket, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	if code != f.code {
		return nil, &api.Error{Status: http.StatusUnauthorized, Message: "invalid code"}
	}
	return &api.ResetTicket{Token: "ticket-" + email}, nil
}

func (f *fakeAPI) SetNewPassword(ctx context.Context, ticket, password string) error {
	if ticket == "" {
		return &api.Error{Status: http.StatusUnauthorized}
	}
	f.newPassword = password
	return nil
}

func TestValidateLogin(t *testing.T) {
	require.NoError(t, ValidateLogin("nurse@hospital.org", "secret"))

	err := ValidateLogin("nurse", "")
	var fe *form.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, []string{"email", "password"}, fe.Fields.Fields())
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("correct1horse"))
	assert.Error(t, ValidatePassword("short1"))
	assert.Error(t, ValidatePassword("lettersonly"))
	assert.Error(t, ValidatePassword("1234567890"))
}

func TestLogin(t *testing.T) {
	client := &fakeAPI{password: "hunter22"}

	session, err := Login(context.Background(), client, " nurse@hospital.org ", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "nurse@hospital.org", session.User.Email)

	_, err = Login(context.Background(), client, "nurse@hospital.org", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResetFlowHappyPath(t *testing.T) {
	ctx := context.Background()
	client := &fakeAPI{code: "246810"}
	flow := NewResetFlow(client)

	require.NoError(t, flow.Request(ctx, "nurse@hospital.org"))
	assert.Equal(t, StageVerify, flow.Stage())
	assert.Equal(t, []string{"nurse@hospital.org"}, client.requests)

	require.NoError(t, flow.Verify(ctx, "246810"))
	assert.Equal(t, StageNewPassword, flow.Stage())

	err := flow.SetPassword(ctx, "newpass123", "newpass124")
	var fe *form.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, ErrPasswordMismatch.Error(), fe.Fields["confirm"])

	require.NoError(t, flow.SetPassword(ctx, "newpass123", "newpass123"))
	assert.Equal(t, StageDone, flow.Stage())
	assert.Equal(t, "newpass123", client.newPassword)
}

func TestResetFlowStageGuards(t *testing.T) {
	ctx := context.Background()
	flow := NewResetFlow(&fakeAPI{code: "000000"})

	require.ErrorIs(t, flow.Verify(ctx, "000000"), ErrWrongStage)
	require.ErrorIs(t, flow.SetPassword(ctx, "abcdefg1", "abcdefg1"), ErrWrongStage)
	require.ErrorIs(t, flow.Resend(ctx), ErrWrongStage)

	require.Error(t, flow.Request(ctx, "not-an-email"))
	assert.Equal(t, StageRequest, flow.Stage())
}

func TestResetFlowLimitsAttempts(t *testing.T) {
	ctx := context.Background()
	flow := NewResetFlow(&fakeAPI{code: "111111"})
	require.NoError(t, flow.Request(ctx, "nurse@hospital.org"))

	// Malformed codes are rejected locally and do not count.
	require.Error(t, flow.Verify(ctx, "12ab"))
	assert.Equal(t, MaxVerifyAttempts, flow.AttemptsLeft())

	for i := 0; i < MaxVerifyAttempts-1; i++ {
		require.ErrorIs(t, flow.Verify(ctx, "999999"), ErrInvalidCode)
	}
	require.ErrorIs(t, flow.Verify(ctx, "999999"), ErrTooManyAttempts)
	require.ErrorIs(t, flow.Verify(ctx, "111111"), ErrTooManyAttempts, "even the right code is refused now")
	require.ErrorIs(t, flow.Resend(ctx), ErrTooManyAttempts)

	flow.Restart()
	assert.Equal(t, StageRequest, flow.Stage())
	assert.Empty(t, flow.Email())
	require.NoError(t, flow.Request(ctx, "nurse@hospital.org"))
	require.NoError(t, flow.Verify(ctx, "111111"))
}

func TestResetFlowServerLockout(t *testing.T) {
	ctx := context.Background()
	client := &fakeAPI{verifyErr: &api.Error{Status: http.StatusTooManyRequests}}
	flow := NewResetFlow(client)
	require.NoError(t, flow.Request(ctx, "nurse@hospital.org"))

	require.ErrorIs(t, flow.Verify(ctx, "123456"), ErrTooManyAttempts)
	assert.Zero(t, flow.AttemptsLeft())
}

func TestResetFlowPassesThroughTransportErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection refused")
	flow := NewResetFlow(&fakeAPI{verifyErr: boom})
	require.NoError(t, flow.Request(ctx, "nurse@hospital.org"))
	require.ErrorIs(t, flow.Verify(ctx, "123456"), boom)
	assert.Equal(t, StageVerify, flow.Stage())
}
