package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/caredesk/caredesk/internal/api"
	"github.com/caredesk/caredesk/internal/auth"
	"github.com/caredesk/caredesk/internal/events"
	"github.com/caredesk/caredesk/internal/models"
	"github.com/caredesk/caredesk/internal/prefs"
	"github.com/caredesk/caredesk/internal/registration"
	"github.com/caredesk/caredesk/internal/theme"
)

// ThemeChangedMsg reports that the theme state moved.
type ThemeChangedMsg struct {
	Snapshot theme.Snapshot
}

// themeSubscriber bridges theme.State to the program. State notifies
// synchronously, possibly from inside Update, so delivery hops to a
// goroutine; the model re-reads the state when the message arrives.
type themeSubscriber struct {
	program *tea.Program
}

func (s *themeSubscriber) onThemeChange(snap theme.Snapshot) {
	if s.program != nil {
		go s.program.Send(ThemeChangedMsg{Snapshot: snap})
	}
}

// SubscribeToTheme forwards theme changes to program and returns the
// function that stops forwarding.
func SubscribeToTheme(state *theme.State, program *tea.Program) (unsubscribe func()) {
	sub := &themeSubscriber{program: program}
	return state.Subscribe(sub.onThemeChange)
}

type loginResultMsg struct {
	session *api.Session
	err     error
}

type catalogMsg struct {
	catalog registration.Catalog
	err     error
}

// resetResultMsg carries the flow's position after a call, read inside the
// command so the view never touches the flow while a call is in flight.
type resetResultMsg struct {
	stage        auth.ResetStage
	email        string
	attemptsLeft int
	notice       string
	err          error
}

type submitResultMsg struct {
	registration registration.Registration
	receipt      *api.Receipt
	err          error
}

type historyMsg struct {
	records []*models.RegistrationRecord
	err     error
}

func (m model) loginCmd(email, password string) tea.Cmd {
	ctx, client := m.ctx, m.cfg.Client
	return func() tea.Msg {
		session, err := auth.Login(ctx, client, email, password)
		switch {
		case err == nil:
			m.audit(func(ctx context.Context, repo events.Repository) error {
				return events.LogLoginSucceeded(ctx, repo, email, models.SessionPayload{
					StaffID: session.User.ID,
					Name:    session.User.Name,
					Role:    session.User.Role,
				})
			})
		case errors.Is(err, auth.ErrInvalidCredentials):
			m.audit(func(ctx context.Context, repo events.Repository) error {
				return events.LogLoginFailed(ctx, repo, email, err.Error())
			})
		}
		return loginResultMsg{session: session, err: err}
	}
}

func loadCatalogCmd(ctx context.Context, client *api.Client) tea.Cmd {
	return func() tea.Msg {
		catalog, err := client.Catalog(ctx)
		return catalogMsg{catalog: catalog, err: err}
	}
}

func resetCmd(flow *auth.ResetFlow, notice string, call func() error) tea.Cmd {
	return func() tea.Msg {
		err := call()
		return resetResultMsg{
			stage:        flow.Stage(),
			email:        flow.Email(),
			attemptsLeft: flow.AttemptsLeft(),
			notice:       notice,
			err:          err,
		}
	}
}

func loadHistoryCmd(ctx context.Context, history RegistrationHistory) tea.Cmd {
	return func() tea.Msg {
		if history == nil {
			return historyMsg{}
		}
		records, err := history.List(ctx, historyLimit)
		return historyMsg{records: records, err: err}
	}
}

// submitCmd records the registration locally, sends it, then marks the
// local record with the outcome. The audit log is keyed on the record ID
// whether or not local history is configured. History and audit failures
// are logged, never shown.
func (m model) submitCmd(reg registration.Registration) tea.Cmd {
	ctx, client, history, logger := m.ctx, m.cfg.Client, m.cfg.History, m.logger
	return func() tea.Msg {
		record := recordFor(reg)
		stored := false
		if history != nil {
			if err := history.Create(ctx, record); err != nil {
				logger.Warn().Err(err).Msg("failed to record registration locally")
			} else {
				stored = true
			}
		}
		m.audit(func(ctx context.Context, repo events.Repository) error {
			return events.LogRegistrationSubmitted(ctx, repo, record)
		})

		receipt, err := client.RegisterPatient(ctx, reg)

		if stored {
			var markErr error
			if err != nil {
				markErr = history.MarkFailed(ctx, record.ID)
			} else {
				markErr = history.MarkConfirmed(ctx, record.ID, receipt.ID)
			}
			if markErr != nil {
				logger.Warn().Err(markErr).Str("id", record.ID).Msg("failed to update local registration")
			}
		}

		remoteID := ""
		if receipt != nil {
			remoteID = receipt.ID
		}
		m.audit(func(ctx context.Context, repo events.Repository) error {
			return events.LogRegistrationOutcome(ctx, repo, record, remoteID, err)
		})
		return submitResultMsg{registration: reg, receipt: receipt, err: err}
	}
}

// audit writes one event synchronously. It is only called from commands,
// off the update loop.
func (m model) audit(write func(context.Context, events.Repository) error) {
	if m.cfg.Audit == nil {
		return
	}
	if err := write(m.ctx, m.cfg.Audit); err != nil {
		m.logger.Warn().Err(err).Msg("failed to write audit event")
	}
}

func (m model) auditThemeChange(mode theme.Mode) tea.Cmd {
	if m.cfg.Audit == nil {
		return nil
	}
	return func() tea.Msg {
		m.audit(func(ctx context.Context, repo events.Repository) error {
			return events.LogThemeModeChanged(ctx, repo, prefs.ThemeModeKey, string(mode), events.SourceTUI)
		})
		return nil
	}
}
