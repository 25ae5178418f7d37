package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/caredesk/caredesk/internal/models"
)

// ErrEventNotFound is returned by Get for an unknown ID.
var ErrEventNotFound = errors.New("event not found")

// Fixed-width UTC timestamps so that text order matches time order.
const eventTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const defaultEventLimit = 100

// EventRepository stores the local audit log.
type EventRepository struct {
	db *DB
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

// EventQuery defines filters for querying events.
type EventQuery struct {
	Type       *models.EventType
	EntityType *models.EntityType
	EntityID   *string
	Since      *time.Time // inclusive
	Until      *time.Time // exclusive
	Cursor     string     // ID of the last event of the previous page
	Limit      int
}

// EventPage is one page of query results.
type EventPage struct {
	Events     []*models.Event
	NextCursor string
}

// Create appends event to the log, filling in ID and Timestamp when unset.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if err := event.Validate(); err != nil {
		return err
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	} else {
		event.Timestamp = event.Timestamp.UTC()
	}

	var payloadJSON *string
	if len(event.Payload) > 0 {
		s := string(event.Payload)
		payloadJSON = &s
	}

	var metadataJSON *string
	if event.Metadata != nil {
		data, err := json.Marshal(event.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
		s := string(data)
		metadataJSON = &s
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO events (`+eventColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		event.ID,
		event.Timestamp.Format(eventTimeLayout),
		string(event.Type),
		string(event.EntityType),
		event.EntityID,
		payloadJSON,
		metadataJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

const eventColumns = `id, timestamp, type, entity_type, entity_id, payload_json, metadata_json`

// Get retrieves an event by ID.
func (r *EventRepository) Get(ctx context.Context, id string) (*models.Event, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)

	event, err := r.scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	return event, err
}

// where renders the filters of q as a WHERE clause.
func (q EventQuery) where() (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		conds = append(conds, cond)
		args = append(args, arg)
	}

	if q.Type != nil {
		add("type = ?", string(*q.Type))
	}
	if q.EntityType != nil {
		add("entity_type = ?", string(*q.EntityType))
	}
	if q.EntityID != nil {
		add("entity_id = ?", *q.EntityID)
	}
	if q.Since != nil {
		add("timestamp >= ?", q.Since.UTC().Format(eventTimeLayout))
	}
	if q.Until != nil {
		add("timestamp < ?", q.Until.UTC().Format(eventTimeLayout))
	}
	if q.Cursor != "" {
		add("(timestamp, id) > (SELECT timestamp, id FROM events WHERE id = ?)", q.Cursor)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Query returns events oldest first, paginated by cursor.
func (r *EventRepository) Query(ctx context.Context, q EventQuery) (*EventPage, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultEventLimit
	}

	where, args := q.where()
	// One extra row tells us whether another page exists.
	events, err := r.list(ctx, `SELECT `+eventColumns+` FROM events`+where+` ORDER BY timestamp, id LIMIT ?`, append(args, limit+1)...)
	if err != nil {
		return nil, err
	}

	page := &EventPage{Events: events}
	if len(events) > limit {
		page.Events = events[:limit]
		page.NextCursor = events[limit-1].ID
	}
	return page, nil
}

// Recent returns the newest events first.
func (r *EventRepository) Recent(ctx context.Context, limit int) ([]*models.Event, error) {
	if limit <= 0 {
		limit = defaultEventLimit
	}
	return r.list(ctx, `SELECT `+eventColumns+` FROM events ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
}

func (r *EventRepository) list(ctx context.Context, query string, args ...any) ([]*models.Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event, err := r.scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}
	return events, nil
}

// Prune deletes events older than before and returns how many went.
func (r *EventRepository) Prune(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE timestamp < ?`, before.UTC().Format(eventTimeLayout))
	if err != nil {
		return 0, fmt.Errorf("failed to prune events: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func (r *EventRepository) scanEvent(row rowScanner) (*models.Event, error) {
	var event models.Event
	var timestamp, eventType, entityType string
	var payloadJSON, metadataJSON sql.NullString

	if err := row.Scan(
		&event.ID,
		&timestamp,
		&eventType,
		&entityType,
		&event.EntityID,
		&payloadJSON,
		&metadataJSON,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}

	event.Type = models.EventType(eventType)
	event.EntityType = models.EntityType(entityType)

	if t, err := time.Parse(eventTimeLayout, timestamp); err == nil {
		event.Timestamp = t
	}

	if payloadJSON.Valid {
		event.Payload = json.RawMessage(payloadJSON.String)
	}
	if metadataJSON.Valid {
		if err := json.Unmarshal([]byte(metadataJSON.String), &event.Metadata); err != nil {
			r.db.logger.Warn().Err(err).Str("event_id", event.ID).Msg("failed to parse event metadata")
		}
	}

	return &event, nil
}
