// Package events records audit events for front-desk activity.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/caredesk/caredesk/internal/models"
)

// Sources recorded in event metadata.
const (
	SourceTUI = "tui"
	SourceCLI = "cli"
)

// Repository is the minimal interface needed to write events.
type Repository interface {
	Create(ctx context.Context, event *models.Event) error
}

// LogLoginSucceeded records a staff sign-in.
func LogLoginSucceeded(ctx context.Context, repo Repository, email string, payload models.SessionPayload) error {
	return record(ctx, repo, models.EventTypeLoginSucceeded, models.EntityTypeStaff, normalizeEmail(email), payload)
}

// LogLoginFailed records a rejected sign-in. The password is never
// recorded.
func LogLoginFailed(ctx context.Context, repo Repository, email, reason string) error {
	return record(ctx, repo, models.EventTypeLoginFailed, models.EntityTypeStaff, normalizeEmail(email), models.SessionPayload{Reason: reason})
}

// LogPasswordReset records a completed password reset.
func LogPasswordReset(ctx context.Context, repo Repository, email string) error {
	return record(ctx, repo, models.EventTypePasswordReset, models.EntityTypeStaff, normalizeEmail(email), models.SessionPayload{})
}

// LogRegistrationSubmitted records a registration sent to the API.
func LogRegistrationSubmitted(ctx context.Context, repo Repository, reg *models.RegistrationRecord) error {
	if reg == nil {
		return fmt.Errorf("registration is required")
	}
	return record(ctx, repo, models.EventTypeRegistrationSubmitted, models.EntityTypeRegistration, reg.ID, models.RegistrationPayload{
		PatientName:  reg.PatientName,
		ServiceID:    reg.ServiceID,
		PayableCents: reg.PayableCents,
	})
}

// LogRegistrationOutcome records whether the API accepted a registration.
func LogRegistrationOutcome(ctx context.Context, repo Repository, reg *models.RegistrationRecord, remoteID string, submitErr error) error {
	if reg == nil {
		return fmt.Errorf("registration is required")
	}
	if submitErr != nil {
		return record(ctx, repo, models.EventTypeRegistrationFailed, models.EntityTypeRegistration, reg.ID, models.RegistrationPayload{
			PatientName: reg.PatientName,
			Error:       submitErr.Error(),
		})
	}
	return record(ctx, repo, models.EventTypeRegistrationConfirmed, models.EntityTypeRegistration, reg.ID, models.RegistrationPayload{
		PatientName:  reg.PatientName,
		PayableCents: reg.PayableCents,
		RemoteID:     remoteID,
	})
}

// LogThemeModeChanged records an explicit theme selection.
func LogThemeModeChanged(ctx context.Context, repo Repository, key, mode, source string) error {
	return record(ctx, repo, models.EventTypeThemeModeChanged, models.EntityTypePreference, key, models.ThemeModePayload{
		Mode:   mode,
		Source: source,
	})
}

func record(ctx context.Context, repo Repository, typ models.EventType, entityType models.EntityType, entityID string, payload any) error {
	if repo == nil {
		return fmt.Errorf("event repository is required")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", typ, err)
	}

	return repo.Create(ctx, &models.Event{
		Type:       typ,
		EntityType: entityType,
		EntityID:   entityID,
		Payload:    data,
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
