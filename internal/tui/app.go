// Package tui implements the CareDesk terminal user interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/caredesk/caredesk/internal/api"
	"github.com/caredesk/caredesk/internal/events"
	"github.com/caredesk/caredesk/internal/logging"
	"github.com/caredesk/caredesk/internal/models"
	"github.com/caredesk/caredesk/internal/registration"
	"github.com/caredesk/caredesk/internal/theme"
	"github.com/caredesk/caredesk/internal/tui/components"
	"github.com/caredesk/caredesk/internal/tui/styles"
)

// RegistrationHistory keeps submitted registrations on this machine.
type RegistrationHistory interface {
	Create(ctx context.Context, record *models.RegistrationRecord) error
	MarkConfirmed(ctx context.Context, id, remoteID string) error
	MarkFailed(ctx context.Context, id string) error
	List(ctx context.Context, limit int) ([]*models.RegistrationRecord, error)
}

// Config wires the TUI to the rest of the application.
type Config struct {
	// Theme is the application theme state. When nil it is taken from the
	// context passed to Run.
	Theme *theme.State
	// Client is required.
	Client *api.Client
	// History is optional.
	History RegistrationHistory
	// Audit receives sign-in, reset, registration and theme events. Optional.
	Audit                events.Repository
	RegistrationFeeCents int64
	Now                  func() time.Time
}

// Run launches the TUI program and blocks until it exits.
func Run(ctx context.Context, cfg Config) error {
	m, err := newModel(ctx, cfg)
	if err != nil {
		return err
	}

	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	unsubscribe := SubscribeToTheme(m.cfg.Theme, program)
	defer unsubscribe()

	_, err = program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

type screenID int

const (
	screenLogin screenID = iota
	screenReset
	screenWizard
	screenSettings
	screenHistory
)

const (
	minWidth     = 60
	minHeight    = 20
	historyLimit = 50
)

type model struct {
	ctx    context.Context
	cfg    Config
	logger zerolog.Logger

	width  int
	height int

	snapshot theme.Snapshot
	styles   styles.Styles

	screen   screenID
	returnTo screenID
	session  *api.Session

	status        string
	statusIsError bool

	login    loginScreen
	reset    resetScreen
	wizard   wizardScreen
	settings settingsScreen
	history  historyScreen
}

func newModel(ctx context.Context, cfg Config) (model, error) {
	if cfg.Client == nil {
		return model{}, errors.New("tui: api client is required")
	}
	if cfg.Theme == nil {
		cfg.Theme = theme.MustFromContext(ctx)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	opts := []registration.Option{registration.WithClock(cfg.Now)}
	if cfg.RegistrationFeeCents > 0 {
		opts = append(opts, registration.WithRegistrationFee(cfg.RegistrationFeeCents))
	}

	m := model{
		ctx:    ctx,
		cfg:    cfg,
		logger: logging.Component("tui"),
		screen: screenLogin,
		login:  newLoginScreen(),
		reset:  newResetScreen(cfg.Client),
		wizard: newWizardScreen(registration.NewWizard(registration.Catalog{}, opts...)),
	}
	m.settings = newSettingsScreen(cfg.Theme.Mode())
	m.restyle()
	return m, nil
}

// Init re-reads the theme once the program runs. Run subscribes only after
// the model is built, so a load that finished in between reaches the model here.
func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.syncTheme())
}

func (m model) syncTheme() tea.Cmd {
	state := m.cfg.Theme
	return func() tea.Msg {
		return ThemeChangedMsg{Snapshot: state.Snapshot()}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case ThemeChangedMsg:
		m.restyle()
		if m.screen != screenSettings {
			m.settings.selected = m.snapshot.Mode
		}
		return m, nil
	case loginResultMsg:
		return m.handleLoginResult(msg)
	case catalogMsg:
		return m.handleCatalog(msg)
	case resetResultMsg:
		return m.handleResetResult(msg)
	case submitResultMsg:
		return m.handleSubmitResult(msg)
	case historyMsg:
		m.history.loading = false
		m.history.records = msg.records
		m.history.err = msg.err
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+t":
			return m, m.cycleTheme()
		case "f2":
			m.open(screenSettings)
			m.settings.selected = m.snapshot.Mode
			return m, nil
		case "f3":
			if m.session != nil {
				m.open(screenHistory)
				m.history.loading = true
				return m, loadHistoryCmd(m.ctx, m.cfg.History)
			}
		}
		return m.updateScreen(msg)
	}

	// Cursor blinks and other input-level messages go to the focused field.
	if fs := m.activeFields(); fs != nil {
		if f := fs.focused(); f != nil && f.kind == textField {
			var cmd tea.Cmd
			f.input, cmd = f.input.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m model) updateScreen(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.screen {
	case screenReset:
		return m.updateReset(msg)
	case screenWizard:
		return m.updateWizard(msg)
	case screenSettings:
		return m.updateSettings(msg)
	case screenHistory:
		if msg.String() == "esc" {
			m.close()
		}
		return m, nil
	default:
		return m.updateLogin(msg)
	}
}

// open shows an overlay screen that esc returns from.
func (m *model) open(screen screenID) {
	if m.screen != screenSettings && m.screen != screenHistory {
		m.returnTo = m.screen
	}
	m.screen = screen
}

func (m *model) close() {
	m.screen = m.returnTo
}

func (m *model) cycleTheme() tea.Cmd {
	next := m.cfg.Theme.Mode().Next()
	if err := m.cfg.Theme.SetMode(next); err != nil {
		m.setError(err)
		return nil
	}
	m.restyle()
	m.settings.selected = next
	m.setStatus("Theme: " + string(next))
	return m.auditThemeChange(next)
}

// restyle re-reads the theme state and rebuilds every style from the
// current palette.
func (m *model) restyle() {
	m.snapshot = m.cfg.Theme.Snapshot()
	m.styles = styles.ForSnapshot(m.snapshot)
	m.login.fields.restyle(m.styles)
	m.reset.request.restyle(m.styles)
	m.reset.verify.restyle(m.styles)
	m.reset.password.restyle(m.styles)
	m.wizard.patient.restyle(m.styles)
	m.wizard.appointment.restyle(m.styles)
	m.wizard.insurance.restyle(m.styles)
}

func (m *model) activeFields() *fieldSet {
	switch m.screen {
	case screenLogin:
		return &m.login.fields
	case screenReset:
		return m.reset.fields()
	case screenWizard:
		return m.wizard.current()
	default:
		return nil
	}
}

func (m *model) setStatus(text string) {
	m.status = text
	m.statusIsError = false
}

func (m *model) setError(err error) {
	m.status = err.Error()
	m.statusIsError = true
	m.logger.Debug().Err(err).Msg("screen error")
}

func (m model) View() string {
	if m.width > 0 && m.height > 0 && (m.width < minWidth || m.height < minHeight) {
		return strings.Join([]string{
			m.styles.Warning.Render(fmt.Sprintf("Terminal too small (%dx%d).", m.width, m.height)),
			m.styles.Muted.Render(fmt.Sprintf("Resize to at least %dx%d.", minWidth, minHeight)),
		}, "\n")
	}

	var body string
	switch m.screen {
	case screenReset:
		body = m.viewReset()
	case screenWizard:
		body = m.viewWizard()
	case screenSettings:
		body = m.viewSettings()
	case screenHistory:
		body = m.viewHistory()
	default:
		body = m.viewLogin()
	}

	sections := []string{m.viewHeader(), "", body}
	if m.status != "" {
		style := m.styles.Success
		if m.statusIsError {
			style = m.styles.Error
		}
		sections = append(sections, "", style.Render(m.status))
	}
	sections = append(sections, "", components.RenderKeyHints(m.styles, components.GlobalHints(m.session != nil)))

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	if m.width > 0 && m.height > 0 {
		return m.styles.App.Width(m.width).Height(m.height).Render(content)
	}
	return content
}

func (m model) viewHeader() string {
	left := m.styles.Title.Render("CareDesk")
	if m.session != nil {
		left += m.styles.Muted.Render("  " + m.session.User.Name)
	}
	badge := components.RenderThemeBadge(m.styles, m.snapshot)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(badge)
	if gap < 2 {
		gap = 2
	}
	return left + strings.Repeat(" ", gap) + badge
}
