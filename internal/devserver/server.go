// Package devserver is an in-memory hospital API for running and testing
// the CareDesk client offline.
package devserver

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/caredesk/caredesk/internal/logging"
	"github.com/caredesk/caredesk/internal/registration"
)

// Defaults for Options.
const (
	DefaultAddr        = "127.0.0.1:8787"
	DefaultSessionTTL  = 12 * time.Hour
	DefaultCodeTTL     = 10 * time.Minute
	DefaultTicketTTL   = 10 * time.Minute
	DefaultMaxAttempts = 5
)

// Options configure the dev server. Zero values take the defaults.
type Options struct {
	Secret               []byte
	SessionTTL           time.Duration
	CodeTTL              time.Duration
	TicketTTL            time.Duration
	MaxAttempts          int
	RegistrationFeeCents int64
	Users                []SeedUser
	Catalog              *registration.Catalog
	NewCode              func() string
	Now                  func() time.Time
	Logger               *zerolog.Logger
}

type user struct {
	SeedUser
	hash []byte
}

type resetState struct {
	code      string
	expiresAt time.Time
	attempts  int
	ticketID  string
}

type storedRegistration struct {
	ID           string
	UserID       string
	Registration registration.Registration
	CreatedAt    time.Time
}

// Server is the dev API.
type Server struct {
	echo    *echo.Echo
	tokens  tokenIssuer
	opts    Options
	logger  zerolog.Logger
	catalog registration.Catalog

	mu            sync.Mutex
	users         map[string]*user // by lower-case email
	resets        map[string]*resetState
	registrations []storedRegistration
}

// New builds a server with seeded users and catalog.
func New(opts Options) (*Server, error) {
	if len(opts.Secret) == 0 {
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate secret: %w", err)
		}
		opts.Secret = secret
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}
	if opts.CodeTTL <= 0 {
		opts.CodeTTL = DefaultCodeTTL
	}
	if opts.TicketTTL <= 0 {
		opts.TicketTTL = DefaultTicketTTL
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.RegistrationFeeCents <= 0 {
		opts.RegistrationFeeCents = registration.DefaultRegistrationFeeCents
	}
	if opts.Users == nil {
		opts.Users = DefaultUsers()
	}
	if opts.NewCode == nil {
		opts.NewCode = randomCode
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	logger := logging.Component("devserver")
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	catalog := DefaultCatalog()
	if opts.Catalog != nil {
		catalog = *opts.Catalog
	}

	s := &Server{
		tokens:  tokenIssuer{secret: opts.Secret, issuer: "caredesk-devserver", now: opts.Now},
		opts:    opts,
		logger:  logger,
		catalog: catalog,
		users:   make(map[string]*user),
		resets:  make(map[string]*resetState),
	}

	for _, seed := range opts.Users {
		hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.MinCost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", seed.Email, err)
		}
		s.users[strings.ToLower(seed.Email)] = &user{SeedUser: seed, hash: hash}
	}

	s.echo = s.routes()
	return s, nil
}

func (s *Server) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(s.requestLogger())

	e.POST("/auth/login", s.handleLogin)
	e.POST("/auth/reset", s.handleReset)
	e.POST("/auth/verify", s.handleVerify)
	e.POST("/auth/password", s.handlePassword)
	e.GET("/services", s.handleServices)

	authed := e.Group("", s.requireSession)
	authed.GET("/doctors/assigned", s.handleAssignedDoctors)
	authed.POST("/registrations", s.handleCreateRegistration)
	return e
}

// Handler exposes the server for httptest or embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("dev API listening")
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info().Msg("dev API shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("dev API server error: %w", err)
		}
		return nil
	}
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			s.logger.Debug().
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Int("status", c.Response().Status).
				Dur("elapsed", time.Since(start)).
				Msg("request")
			return nil
		}
	}
}

func randomCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		panic(fmt.Sprintf("crypto/rand: %v", err))
	}
	return fmt.Sprintf("%06d", n.Int64())
}
