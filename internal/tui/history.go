package tui

import (
	"fmt"
	"strings"

	"github.com/caredesk/caredesk/internal/models"
	"github.com/caredesk/caredesk/internal/registration"
	"github.com/caredesk/caredesk/internal/tui/components"
)

type historyScreen struct {
	loading bool
	records []*models.RegistrationRecord
	err     error
}

func (m model) viewHistory() string {
	st := m.styles
	h := m.history
	var b strings.Builder
	b.WriteString(st.Title.Render("Recent registrations") + "\n\n")

	switch {
	case h.loading:
		b.WriteString(st.Info.Render("Loading…") + "\n")
	case h.err != nil:
		b.WriteString(st.Error.Render("Could not read history: "+h.err.Error()) + "\n")
	case len(h.records) == 0:
		b.WriteString(components.EmptyHistory().Render(st) + "\n")
	default:
		for _, r := range h.records {
			status := st.Muted
			switch r.Status {
			case models.RegistrationStatusConfirmed:
				status = st.Success
			case models.RegistrationStatusFailed:
				status = st.Error
			}
			ref := r.RemoteID
			if ref == "" {
				ref = "-"
			}
			b.WriteString(fmt.Sprintf("%s  %s %s  %s  %s  %s\n",
				st.Muted.Render(r.SubmittedAt.Local().Format("Jan 02 15:04")),
				st.Text.Render(fmt.Sprintf("%-22s", r.PatientName)),
				st.Muted.Render(r.AppointmentDate.Format(dateLayout)+" "+r.TimeSlot),
				st.Text.Render(registration.FormatCents(r.PayableCents)),
				status.Render(fmt.Sprintf("%-9s", r.Status)),
				st.Muted.Render(ref),
			))
		}
	}

	b.WriteString("\n" + st.Muted.Render("esc close"))
	return st.Panel.Render(b.String())
}
