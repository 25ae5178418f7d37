package devserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caredesk/caredesk/internal/api"
	"github.com/caredesk/caredesk/internal/registration"
)

var testNow = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, mutate ...func(*Options)) *Server {
	t.Helper()
	nop := zerolog.Nop()
	opts := Options{
		Secret:  []byte("test-secret"),
		NewCode: func() string { return "123456" },
		Now:     func() time.Time { return testNow },
		Logger:  &nop,
	}
	for _, fn := range mutate {
		fn(&opts)
	}
	srv, err := New(opts)
	require.NoError(t, err)
	return srv
}

func call(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, srv *Server, email, password string) string {
	t.Helper()
	rec := call(t, srv, http.MethodPost, "/auth/login", "", api.LoginRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var session api.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	return session.Token
}

func TestLogin(t *testing.T) {
	srv := newTestServer(t)

	rec := call(t, srv, http.MethodPost, "/auth/login", "", api.LoginRequest{Email: "Reception@CareDesk.local", Password: "reception123"})
	require.Equal(t, http.StatusOK, rec.Code)
	var session api.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "u-reception", session.User.ID)
	assert.Equal(t, testNow.Add(DefaultSessionTTL), session.ExpiresAt.UTC())

	rec = call(t, srv, http.MethodPost, "/auth/login", "", api.LoginRequest{Email: "reception@caredesk.local", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = call(t, srv, http.MethodPost, "/auth/login", "", api.LoginRequest{Email: "nobody@caredesk.local", Password: "reception123"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	srv := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, call(t, srv, http.MethodGet, "/doctors/assigned", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, call(t, srv, http.MethodGet, "/doctors/assigned", "garbage", nil).Code)

	// A reset ticket is not a session.
	ticket, _, err := srv.tokens.issue("u-reception", "reception@caredesk.local", "", purposeReset, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, call(t, srv, http.MethodGet, "/doctors/assigned", ticket, nil).Code)
}

func TestAssignedDoctors(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv, "nurse@caredesk.local", "nurse12345")

	rec := call(t, srv, http.MethodGet, "/doctors/assigned", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var doctors []registration.Doctor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doctors))
	require.Len(t, doctors, 1)
	assert.Equal(t, "doc-lindqvist", doctors[0].ID)
}

func TestServicesArePublic(t *testing.T) {
	srv := newTestServer(t)
	rec := call(t, srv, http.MethodGet, "/services", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var services []registration.Service
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &services))
	assert.Len(t, services, len(DefaultCatalog().Services))
}

func TestPasswordResetFlow(t *testing.T) {
	srv := newTestServer(t)
	email := "reception@caredesk.local"

	// Unknown addresses get the same answer.
	assert.Equal(t, http.StatusAccepted, call(t, srv, http.MethodPost, "/auth/reset", "", api.ResetRequest{Email: "ghost@caredesk.local"}).Code)
	require.Equal(t, http.StatusAccepted, call(t, srv, http.MethodPost, "/auth/reset", "", api.ResetRequest{Email: email}).Code)

	rec := call(t, srv, http.MethodPost, "/auth/verify", "", api.VerifyRequest{Email: email, Code: "000000"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = call(t, srv, http.MethodPost, "/auth/verify", "", api.VerifyRequest{Email: email, Code: "123456"})
	require.Equal(t, http.StatusOK, rec.Code)
	var ticket api.ResetTicket
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ticket))

	rec = call(t, srv, http.MethodPost, "/auth/password", "", api.PasswordRequest{Ticket: ticket.Token, Password: "short"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, srv, http.MethodPost, "/auth/password", "", api.PasswordRequest{Ticket: ticket.Token, Password: "newpass42"})
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Tickets are single use.
	rec = call(t, srv, http.MethodPost, "/auth/password", "", api.PasswordRequest{Ticket: ticket.Token, Password: "another99"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	login(t, srv, email, "newpass42")
	rec = call(t, srv, http.MethodPost, "/auth/login", "", api.LoginRequest{Email: email, Password: "reception123"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVerifyLocksAfterMaxAttempts(t *testing.T) {
	srv := newTestServer(t)
	email := "nurse@caredesk.local"
	require.Equal(t, http.StatusAccepted, call(t, srv, http.MethodPost, "/auth/reset", "", api.ResetRequest{Email: email}).Code)

	for i := 1; i < DefaultMaxAttempts; i++ {
		rec := call(t, srv, http.MethodPost, "/auth/verify", "", api.VerifyRequest{Email: email, Code: "999999"})
		require.Equal(t, http.StatusUnauthorized, rec.Code, "attempt %d", i)
	}
	rec := call(t, srv, http.MethodPost, "/auth/verify", "", api.VerifyRequest{Email: email, Code: "999999"})
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Even the right code is refused now.
	rec = call(t, srv, http.MethodPost, "/auth/verify", "", api.VerifyRequest{Email: email, Code: "123456"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestVerifyRejectsExpiredCode(t *testing.T) {
	now := testNow
	nop := zerolog.Nop()
	srv, err := New(Options{
		NewCode: func() string { return "123456" },
		Now:     func() time.Time { return now },
		Logger:  &nop,
	})
	require.NoError(t, err)

	email := "nurse@caredesk.local"
	require.Equal(t, http.StatusAccepted, call(t, srv, http.MethodPost, "/auth/reset", "", api.ResetRequest{Email: email}).Code)
	now = now.Add(DefaultCodeTTL + time.Second)

	rec := call(t, srv, http.MethodPost, "/auth/verify", "", api.VerifyRequest{Email: email, Code: "123456"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func validRegistration() registration.Registration {
	return registration.Registration{
		Patient: registration.Patient{
			FirstName:   "Maria",
			LastName:    "Garcia",
			Phone:       "+34 600 123 456",
			Email:       "maria@example.com",
			DateOfBirth: time.Date(1988, 4, 2, 0, 0, 0, 0, time.UTC),
			Gender:      registration.GenderFemale,
		},
		Appointment: registration.Appointment{
			ServiceID: "svc-cardio",
			DoctorID:  "doc-lindqvist",
			Date:      testNow.AddDate(0, 0, 2),
			TimeSlot:  "10:30",
			Visit:     registration.VisitNew,
		},
		Insurance: registration.Insurance{HasInsurance: true, Provider: "Acme", PolicyNumber: "P-77", CoveragePercent: 50},
	}
}

func TestCreateRegistrationRecomputesFees(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv, "reception@caredesk.local", "reception123")

	reg := validRegistration()
	reg.Fees = registration.Fees{PayableCents: 1}

	rec := call(t, srv, http.MethodPost, "/registrations", token, reg)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var receipt api.Receipt
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &receipt))

	assert.Regexp(t, `^REG-[0-9A-F-]{8}$`, receipt.ID)
	assert.Equal(t, registration.Fees{
		ServiceCents:      100000,
		DoctorCents:       85000,
		SubtotalCents:     185000,
		RegistrationCents: registration.DefaultRegistrationFeeCents,
		CoveredCents:      92500,
		PayableCents:      142500,
	}, receipt.Fees)
	assert.Equal(t, 1, srv.Registrations())
}

func TestCreateRegistrationValidates(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv, "reception@caredesk.local", "reception123")

	reg := validRegistration()
	reg.Appointment.DoctorID = "doc-tanaka"
	reg.Patient.Phone = ""

	rec := call(t, srv, http.MethodPost, "/registrations", token, reg)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "doctor")
	assert.Contains(t, rec.Body.String(), "phone")
	assert.Zero(t, srv.Registrations())
}
