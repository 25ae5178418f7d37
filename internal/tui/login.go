package tui

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/caredesk/caredesk/internal/auth"
)

type loginScreen struct {
	fields fieldSet
	busy   bool
}

func newLoginScreen() loginScreen {
	return loginScreen{fields: newFieldSet(
		newTextField("email", "Email", "you@hospital.org"),
		newPasswordField("password", "Password"),
	)}
}

func (m model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.login.busy {
		return m, nil
	}
	fs := &m.login.fields

	switch msg.String() {
	case "tab", "down":
		return m, fs.next()
	case "shift+tab", "up":
		return m, fs.prev()
	case "ctrl+r":
		return m, m.openReset(fs.value("email"))
	case "enter":
		if !fs.onLast() && fs.value("password") == "" {
			return m, fs.next()
		}
		email, password := fs.value("email"), fs.value("password")
		if err := auth.ValidateLogin(email, password); err != nil {
			return m, fs.setErrors(err)
		}
		fs.clearErrors()
		m.login.busy = true
		m.setStatus("Signing in…")
		return m, m.loginCmd(email, password)
	}

	_, cmd := fs.update(msg)
	return m, cmd
}

func (m model) handleLoginResult(msg loginResultMsg) (tea.Model, tea.Cmd) {
	m.login.busy = false
	m.login.fields.get("password").input.Reset()

	if msg.err != nil {
		if errors.Is(msg.err, auth.ErrInvalidCredentials) {
			m.setError(msg.err)
			return m, m.login.fields.focusKey("password")
		}
		if fields := fieldErrors(msg.err); fields != nil {
			m.status = ""
			return m, m.login.fields.setErrors(msg.err)
		}
		m.setError(msg.err)
		return m, nil
	}

	m.session = msg.session
	m.screen = screenWizard
	m.setStatus("Signed in as " + msg.session.User.Name + ". Loading services…")
	m.logger.Info().Str("user", msg.session.User.Email).Msg("signed in")
	return m, tea.Batch(loadCatalogCmd(m.ctx, m.cfg.Client), m.wizard.current().focusIndex(0))
}

func (m model) viewLogin() string {
	st := m.styles
	var b strings.Builder
	b.WriteString(st.Title.Render("Sign in") + "\n\n")
	b.WriteString(m.login.fields.view(st))

	button := "Sign in"
	if m.login.busy {
		button = "Signing in…"
	}
	b.WriteString("\n" + st.Button.Render(button) + "\n\n")
	b.WriteString(st.Link.Render("Forgot password?") + st.Muted.Render("  ctrl+r"))
	return st.Panel.Render(b.String())
}
