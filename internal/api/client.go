package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/caredesk/caredesk/internal/logging"
	"github.com/caredesk/caredesk/internal/registration"
)

// DefaultTimeout bounds each request when no HTTP client is supplied.
const DefaultTimeout = 15 * time.Second

// ErrNotAuthenticated is returned by calls that need a session when none
// is set.
var ErrNotAuthenticated = errors.New("api: not signed in")

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithToken starts the client with an existing session token.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// Client calls the hospital API. It is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  zerolog.Logger

	mu    sync.RWMutex
	token string
}

// New creates a client for baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api base url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  logging.Component("api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Token returns the current session token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the session token; empty signs out.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// LoginUser signs in and keeps the session token for later calls.
func (c *Client) LoginUser(ctx context.Context, email, password string) (*Session, error) {
	var session Session
	if err := c.do(ctx, http.MethodPost, "/auth/login", LoginRequest{Email: email, Password: password}, &session, false); err != nil {
		return nil, err
	}
	c.SetToken(session.Token)
	return &session, nil
}

// ResetPassword asks the API to send a verification code to email.
func (c *Client) ResetPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/auth/reset", ResetRequest{Email: email}, nil, false)
}

// VerifyToken exchanges the emailed code for a reset ticket.
func (c *Client) VerifyToken(ctx context.Context, email, code string) (*ResetTicket, error) {
	var ticket ResetTicket
	if err := c.do(ctx, http.MethodPost, "/auth/verify", VerifyRequest{Email: email, Code: code}, &ticket, false); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// SetNewPassword completes a reset.
func (c *Client) SetNewPassword(ctx context.Context, ticket, password string) error {
	return c.do(ctx, http.MethodPost, "/auth/password", PasswordRequest{Ticket: ticket, Password: password}, nil, false)
}

// GetAssignedDoctors lists the doctors assigned to the signed-in user.
func (c *Client) GetAssignedDoctors(ctx context.Context) ([]registration.Doctor, error) {
	var doctors []registration.Doctor
	if err := c.do(ctx, http.MethodGet, "/doctors/assigned", nil, &doctors, true); err != nil {
		return nil, err
	}
	return doctors, nil
}

// ListServices lists bookable services.
func (c *Client) ListServices(ctx context.Context) ([]registration.Service, error) {
	var services []registration.Service
	if err := c.do(ctx, http.MethodGet, "/services", nil, &services, false); err != nil {
		return nil, err
	}
	return services, nil
}

// Catalog fetches services and assigned doctors together.
func (c *Client) Catalog(ctx context.Context) (registration.Catalog, error) {
	services, err := c.ListServices(ctx)
	if err != nil {
		return registration.Catalog{}, err
	}
	doctors, err := c.GetAssignedDoctors(ctx)
	if err != nil {
		return registration.Catalog{}, err
	}
	return registration.Catalog{Services: services, Doctors: doctors}, nil
}

// RegisterPatient submits a completed registration.
func (c *Client) RegisterPatient(ctx context.Context, reg registration.Registration) (*Receipt, error) {
	var receipt Receipt
	if err := c.do(ctx, http.MethodPost, "/registrations", reg, &receipt, true); err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, authenticated bool) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	endpoint := c.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		token := c.Token()
		if token == "" {
			return ErrNotAuthenticated
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if len(data) > 0 {
			if jsonErr := json.Unmarshal(data, apiErr); jsonErr != nil {
				apiErr.Message = strings.TrimSpace(string(data))
			}
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func asError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
