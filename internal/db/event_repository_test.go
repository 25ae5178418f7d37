package db

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/caredesk/caredesk/internal/models"
)

func TestEventRepositoryCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository(openTestDB(t))

	event := &models.Event{
		Type:       models.EventTypeLoginSucceeded,
		EntityType: models.EntityTypeStaff,
		EntityID:   "reception@caredesk.local",
		Payload:    json.RawMessage(`{"staff_id":"u-reception"}`),
		Metadata:   map[string]string{"source": "tui"},
	}
	if err := repo.Create(ctx, event); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if event.ID == "" || event.Timestamp.IsZero() {
		t.Fatalf("expected ID and timestamp to be filled, got %+v", event)
	}

	got, err := repo.Get(ctx, event.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Type != models.EventTypeLoginSucceeded || got.EntityID != event.EntityID {
		t.Errorf("unexpected event: %+v", got)
	}
	if string(got.Payload) != `{"staff_id":"u-reception"}` {
		t.Errorf("payload = %s", got.Payload)
	}
	if got.Metadata["source"] != "tui" {
		t.Errorf("metadata = %v", got.Metadata)
	}
	if !got.Timestamp.Equal(event.Timestamp) {
		t.Errorf("timestamp = %v, want %v", got.Timestamp, event.Timestamp)
	}

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("expected ErrEventNotFound, got %v", err)
	}
}

func TestEventRepositoryRejectsIncompleteEvents(t *testing.T) {
	repo := NewEventRepository(openTestDB(t))

	err := repo.Create(context.Background(), &models.Event{Type: models.EventTypeLoginFailed})
	if !errors.Is(err, models.ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
}

func TestEventRepositoryQueryPaginates(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository(openTestDB(t))

	base := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		typ := models.EventTypeRegistrationSubmitted
		if i%2 == 1 {
			typ = models.EventTypeRegistrationConfirmed
		}
		if err := repo.Create(ctx, &models.Event{
			Type:       typ,
			EntityType: models.EntityTypeRegistration,
			EntityID:   "reg-1",
			Timestamp:  base.Add(time.Duration(i) * 500 * time.Millisecond),
		}); err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
	}

	page, err := repo.Query(ctx, EventQuery{Limit: 2})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(page.Events) != 2 || page.NextCursor == "" {
		t.Fatalf("expected a full first page with a cursor, got %d events, cursor %q", len(page.Events), page.NextCursor)
	}
	if !page.Events[0].Timestamp.Equal(base) {
		t.Errorf("expected oldest first, got %v", page.Events[0].Timestamp)
	}

	var seen int
	cursor := ""
	for {
		page, err := repo.Query(ctx, EventQuery{Limit: 2, Cursor: cursor})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		seen += len(page.Events)
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	if seen != 5 {
		t.Errorf("expected 5 events across pages, got %d", seen)
	}

	confirmed := models.EventTypeRegistrationConfirmed
	page, err = repo.Query(ctx, EventQuery{Type: &confirmed})
	if err != nil {
		t.Fatalf("Query by type: %v", err)
	}
	if len(page.Events) != 2 {
		t.Errorf("expected 2 confirmed events, got %d", len(page.Events))
	}

	since := base.Add(time.Second)
	page, err = repo.Query(ctx, EventQuery{Since: &since})
	if err != nil {
		t.Fatalf("Query since: %v", err)
	}
	if len(page.Events) != 3 {
		t.Errorf("expected 3 events since +1s, got %d", len(page.Events))
	}
}

func TestEventRepositoryRecentAndPrune(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository(openTestDB(t))

	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if err := repo.Create(ctx, &models.Event{
			Type:       models.EventTypeThemeModeChanged,
			EntityType: models.EntityTypePreference,
			EntityID:   "theme.mode",
			Timestamp:  base.AddDate(0, 0, i*7),
		}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	recent, err := repo.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 || !recent[0].Timestamp.Equal(base.AddDate(0, 0, 14)) {
		t.Fatalf("expected newest first, got %+v", recent)
	}

	removed, err := repo.Prune(ctx, base.AddDate(0, 0, 10))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 2 {
		t.Errorf("expected 2 pruned, got %d", removed)
	}
	recent, err = repo.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 1 {
		t.Errorf("expected 1 event left, got %d", len(recent))
	}
}
