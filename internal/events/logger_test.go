package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/caredesk/caredesk/internal/models"
)

type fakeRepo struct {
	events []*models.Event
}

func (r *fakeRepo) Create(ctx context.Context, event *models.Event) error {
	if err := event.Validate(); err != nil {
		return err
	}
	r.events = append(r.events, event)
	return nil
}

func (r *fakeRepo) last(t *testing.T) *models.Event {
	t.Helper()
	if len(r.events) == 0 {
		t.Fatal("expected an event to be created")
	}
	return r.events[len(r.events)-1]
}

func TestLogLoginEvents(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}

	if err := LogLoginSucceeded(ctx, repo, " Reception@CareDesk.local ", models.SessionPayload{StaffID: "u-reception", Role: "receptionist"}); err != nil {
		t.Fatalf("LogLoginSucceeded: %v", err)
	}
	event := repo.last(t)
	if event.Type != models.EventTypeLoginSucceeded || event.EntityType != models.EntityTypeStaff {
		t.Fatalf("unexpected event: %+v", event)
	}
	if event.EntityID != "reception@caredesk.local" {
		t.Errorf("entity id = %q", event.EntityID)
	}

	if err := LogLoginFailed(ctx, repo, "reception@caredesk.local", "invalid credentials"); err != nil {
		t.Fatalf("LogLoginFailed: %v", err)
	}
	var payload models.SessionPayload
	if err := json.Unmarshal(repo.last(t).Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Reason != "invalid credentials" {
		t.Errorf("reason = %q", payload.Reason)
	}

	if err := LogPasswordReset(ctx, repo, "nurse@caredesk.local"); err != nil {
		t.Fatalf("LogPasswordReset: %v", err)
	}
	if repo.last(t).Type != models.EventTypePasswordReset {
		t.Errorf("unexpected type %q", repo.last(t).Type)
	}
}

func TestLogRegistrationEvents(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	reg := &models.RegistrationRecord{ID: "local-1", PatientName: "Ada Lovelace", ServiceID: "svc-lab", PayableCents: 15000}

	if err := LogRegistrationSubmitted(ctx, repo, reg); err != nil {
		t.Fatalf("LogRegistrationSubmitted: %v", err)
	}
	if err := LogRegistrationOutcome(ctx, repo, reg, "REG-1", nil); err != nil {
		t.Fatalf("LogRegistrationOutcome: %v", err)
	}
	confirmed := repo.last(t)
	if confirmed.Type != models.EventTypeRegistrationConfirmed || confirmed.EntityID != "local-1" {
		t.Fatalf("unexpected event: %+v", confirmed)
	}
	var payload models.RegistrationPayload
	if err := json.Unmarshal(confirmed.Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.RemoteID != "REG-1" {
		t.Errorf("remote id = %q", payload.RemoteID)
	}

	if err := LogRegistrationOutcome(ctx, repo, reg, "", errors.New("api down")); err != nil {
		t.Fatalf("LogRegistrationOutcome: %v", err)
	}
	if repo.last(t).Type != models.EventTypeRegistrationFailed {
		t.Errorf("unexpected type %q", repo.last(t).Type)
	}

	if err := LogRegistrationSubmitted(ctx, repo, nil); err == nil {
		t.Error("expected error for nil registration")
	}
}

func TestLogRequiresRepository(t *testing.T) {
	if err := LogThemeModeChanged(context.Background(), nil, "theme.mode", "dark", SourceCLI); err == nil {
		t.Fatal("expected error without a repository")
	}

	repo := &fakeRepo{}
	if err := LogThemeModeChanged(context.Background(), repo, "theme.mode", "dark", SourceCLI); err != nil {
		t.Fatalf("LogThemeModeChanged: %v", err)
	}
	if repo.last(t).EntityID != "theme.mode" {
		t.Errorf("entity id = %q", repo.last(t).EntityID)
	}

	// An empty entity fails validation in the repository.
	if err := LogLoginFailed(context.Background(), repo, "  ", "blank"); !errors.Is(err, models.ErrInvalidEvent) {
		t.Errorf("expected ErrInvalidEvent, got %v", err)
	}
}
