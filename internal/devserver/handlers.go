package devserver

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/caredesk/caredesk/internal/api"
	"github.com/caredesk/caredesk/internal/auth"
	"github.com/caredesk/caredesk/internal/form"
	"github.com/caredesk/caredesk/internal/registration"
)

const claimsKey = "devserver.claims"

func (s *Server) handleLogin(c echo.Context) error {
	var req api.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	s.mu.Lock()
	u, ok := s.users[strings.ToLower(strings.TrimSpace(req.Email))]
	var hash []byte
	if ok {
		hash = u.hash
	}
	s.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword(hash, []byte(req.Password)) != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	token, expires, err := s.tokens.issue(u.ID, u.Email, u.Role, purposeSession, s.opts.SessionTTL)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, api.Session{
		Token:     token,
		ExpiresAt: expires,
		User:      api.User{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role},
	})
}

// handleReset always answers 202 so the endpoint does not reveal which
// addresses have accounts.
func (s *Server) handleReset(c echo.Context) error {
	var req api.ResetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	s.mu.Lock()
	_, known := s.users[email]
	var code string
	if known {
		code = s.opts.NewCode()
		s.resets[email] = &resetState{code: code, expiresAt: s.opts.Now().Add(s.opts.CodeTTL)}
	}
	s.mu.Unlock()

	if known {
		// No mail delivery in development; the code goes to the log.
		s.logger.Info().Str("email", email).Str("code", code).Msg("password reset code issued")
	}
	return c.NoContent(http.StatusAccepted)
}

func (s *Server) handleVerify(c echo.Context) error {
	var req api.VerifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.resets[email]
	u := s.users[email]
	if !ok || u == nil || s.opts.Now().After(state.expiresAt) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired code")
	}
	if state.attempts >= s.opts.MaxAttempts {
		return echo.NewHTTPError(http.StatusTooManyRequests, "too many attempts")
	}
	state.attempts++
	if subtle.ConstantTimeCompare([]byte(state.code), []byte(strings.TrimSpace(req.Code))) != 1 {
		if state.attempts >= s.opts.MaxAttempts {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many attempts")
		}
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired code")
	}

	token, expires, err := s.tokens.issue(u.ID, u.Email, "", purposeReset, s.opts.TicketTTL)
	if err != nil {
		return err
	}
	claims, err := s.tokens.parse(token, purposeReset)
	if err != nil {
		return err
	}
	state.ticketID = claims.ID
	state.code = ""

	return c.JSON(http.StatusOK, api.ResetTicket{Token: token, ExpiresAt: expires})
}

func (s *Server) handlePassword(c echo.Context) error {
	var req api.PasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	claims, err := s.tokens.parse(req.Ticket, purposeReset)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "password "+err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	email := strings.ToLower(claims.Email)
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.resets[email]
	u := s.users[email]
	if !ok || u == nil || state.ticketID == "" || state.ticketID != claims.ID {
		return echo.NewHTTPError(http.StatusUnauthorized, "ticket already used")
	}
	u.hash = hash
	delete(s.resets, email)

	s.logger.Info().Str("email", email).Msg("password changed")
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleServices(c echo.Context) error {
	return c.JSON(http.StatusOK, s.catalog.Services)
}

func (s *Server) handleAssignedDoctors(c echo.Context) error {
	sess := c.Get(claimsKey).(*claims)

	s.mu.Lock()
	u := s.users[strings.ToLower(sess.Email)]
	var assigned []string
	if u != nil {
		assigned = u.AssignedDoctorIDs
	}
	s.mu.Unlock()

	doctors := make([]registration.Doctor, 0, len(assigned))
	if len(assigned) == 0 {
		doctors = append(doctors, s.catalog.Doctors...)
	}
	for _, id := range assigned {
		if d, ok := s.catalog.Doctor(id); ok {
			doctors = append(doctors, d)
		}
	}
	return c.JSON(http.StatusOK, doctors)
}

func (s *Server) handleCreateRegistration(c echo.Context) error {
	sess := c.Get(claimsKey).(*claims)

	var reg registration.Registration
	if err := c.Bind(&reg); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	now := s.opts.Now()
	errs := form.Errors{}
	for _, step := range []form.Errors{
		registration.ValidatePatient(reg.Patient, now),
		registration.ValidateAppointment(reg.Appointment, s.catalog, now),
		registration.ValidateInsurance(reg.Insurance),
	} {
		for field, msg := range step {
			errs.Add(field, msg)
		}
	}
	if err := errs.Err(); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	// Fees are always recomputed; the client's figures are advisory.
	service, _ := s.catalog.Service(reg.Appointment.ServiceID)
	var doctor *registration.Doctor
	if d, ok := s.catalog.Doctor(reg.Appointment.DoctorID); ok {
		doctor = &d
	}
	reg.Fees = registration.ComputeFees(service, doctor, reg.Appointment.Visit, reg.Insurance, s.opts.RegistrationFeeCents)

	stored := storedRegistration{
		ID:           "REG-" + strings.ToUpper(uuid.New().String()[:8]),
		UserID:       sess.Subject,
		Registration: reg,
		CreatedAt:    now.UTC(),
	}
	s.mu.Lock()
	s.registrations = append(s.registrations, stored)
	s.mu.Unlock()

	s.logger.Info().
		Str("id", stored.ID).
		Str("service", reg.Appointment.ServiceID).
		Int64("payable_cents", reg.Fees.PayableCents).
		Msg("registration received")

	return c.JSON(http.StatusCreated, api.Receipt{ID: stored.ID, Fees: reg.Fees, CreatedAt: stored.CreatedAt})
}

// requireSession rejects requests without a valid session token.
func (s *Server) requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
		}
		claims, err := s.tokens.parse(parts[1], purposeSession)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		}
		c.Set(claimsKey, claims)
		return next(c)
	}
}

// Registrations returns how many registrations were accepted.
func (s *Server) Registrations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.registrations)
}
