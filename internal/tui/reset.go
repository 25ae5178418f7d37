package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/caredesk/caredesk/internal/auth"
	"github.com/caredesk/caredesk/internal/events"
)

type resetScreen struct {
	flow         *auth.ResetFlow
	stage        auth.ResetStage
	email        string
	attemptsLeft int
	busy         bool

	request  fieldSet
	verify   fieldSet
	password fieldSet
}

func newResetScreen(client auth.ResetAPI) resetScreen {
	return resetScreen{
		flow:         auth.NewResetFlow(client),
		attemptsLeft: auth.MaxVerifyAttempts,
		request:      newFieldSet(newTextField("email", "Email", "you@hospital.org")),
		verify:       newFieldSet(newTextField("code", "Verification code", "6 digits")),
		password: newFieldSet(
			newPasswordField("password", "New password"),
			newPasswordField("confirm", "Confirm password"),
		),
	}
}

func (r *resetScreen) fields() *fieldSet {
	switch r.stage {
	case auth.StageVerify:
		return &r.verify
	case auth.StageNewPassword:
		return &r.password
	default:
		return &r.request
	}
}

// openReset starts a fresh reset flow. It must not run while a reset call
// is in flight.
func (m *model) openReset(email string) tea.Cmd {
	m.reset.flow.Restart()
	m.reset.stage = auth.StageRequest
	m.reset.email = ""
	m.reset.attemptsLeft = auth.MaxVerifyAttempts
	m.reset.request.reset()
	m.reset.verify.reset()
	m.reset.password.reset()
	m.reset.request.get("email").setValue(email)
	m.screen = screenReset
	m.status = ""
	return m.reset.request.focusIndex(0)
}

func (m model) updateReset(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.reset.busy {
		return m, nil
	}
	r := &m.reset
	fs := r.fields()
	flow := r.flow

	switch msg.String() {
	case "esc":
		flow.Restart()
		m.screen = screenLogin
		m.status = ""
		return m, m.login.fields.focusIndex(0)
	case "ctrl+r":
		return m, m.openReset(r.email)
	case "tab", "down":
		return m, fs.next()
	case "shift+tab", "up":
		return m, fs.prev()
	case "ctrl+n":
		if r.stage != auth.StageVerify {
			return m, nil
		}
		r.busy = true
		return m, resetCmd(flow, "A new code was sent.", func() error { return flow.Resend(m.ctx) })
	case "enter":
		fs.clearErrors()
		switch r.stage {
		case auth.StageRequest:
			email := fs.value("email")
			r.busy = true
			return m, resetCmd(flow, "If the address has an account, a code is on its way.", func() error {
				return flow.Request(m.ctx, email)
			})
		case auth.StageVerify:
			code := fs.value("code")
			r.busy = true
			return m, resetCmd(flow, "Code accepted. Choose a new password.", func() error {
				return flow.Verify(m.ctx, code)
			})
		case auth.StageNewPassword:
			if !fs.onLast() && fs.value("confirm") == "" {
				return m, fs.next()
			}
			password, confirm := fs.value("password"), fs.value("confirm")
			r.busy = true
			return m, resetCmd(flow, "", func() error {
				if err := flow.SetPassword(m.ctx, password, confirm); err != nil {
					return err
				}
				m.audit(func(ctx context.Context, repo events.Repository) error {
					return events.LogPasswordReset(ctx, repo, flow.Email())
				})
				return nil
			})
		}
		return m, nil
	}

	_, cmd := fs.update(msg)
	return m, cmd
}

func (m model) handleResetResult(msg resetResultMsg) (tea.Model, tea.Cmd) {
	r := &m.reset
	r.busy = false
	moved := msg.stage != r.stage
	r.stage = msg.stage
	r.email = msg.email
	r.attemptsLeft = msg.attemptsLeft

	if msg.err != nil {
		switch {
		case errors.Is(msg.err, auth.ErrTooManyAttempts):
			m.setError(fmt.Errorf("%w (ctrl+r to start over)", msg.err))
		case fieldErrors(msg.err) != nil:
			m.status = ""
			return m, r.fields().setErrors(msg.err)
		default:
			m.setError(msg.err)
		}
		return m, nil
	}

	if r.stage == auth.StageDone {
		r.flow.Restart()
		r.stage = auth.StageRequest
		m.screen = screenLogin
		m.login.fields.get("email").setValue(r.email)
		m.setStatus("Password updated. Sign in with your new password.")
		return m, m.login.fields.focusKey("password")
	}

	if msg.notice != "" {
		m.setStatus(msg.notice)
	}
	if moved {
		return m, r.fields().focusIndex(0)
	}
	return m, nil
}

func (m model) viewReset() string {
	st := m.styles
	r := m.reset
	var b strings.Builder
	b.WriteString(st.Title.Render("Reset password") + "\n")

	switch r.stage {
	case auth.StageVerify:
		b.WriteString(st.Muted.Render("Enter the code sent to "+r.email+".") + "\n\n")
	case auth.StageNewPassword:
		b.WriteString(st.Muted.Render(fmt.Sprintf("At least %d characters with a letter and a digit.", auth.MinPasswordLength)) + "\n\n")
	default:
		b.WriteString(st.Muted.Render("We will email you a verification code.") + "\n\n")
	}

	if r.busy {
		b.WriteString(st.Info.Render("Working…") + "\n")
		return st.Panel.Render(b.String())
	}

	b.WriteString(r.fields().view(st))
	if r.stage == auth.StageVerify {
		left := st.Muted
		if r.attemptsLeft <= 2 {
			left = st.Warning
		}
		b.WriteString(left.Render(fmt.Sprintf("%d attempts left", r.attemptsLeft)) + st.Muted.Render("  ctrl+n resend") + "\n")
	}
	b.WriteString("\n" + st.Muted.Render("esc back to sign in"))
	return st.Panel.Render(b.String())
}
