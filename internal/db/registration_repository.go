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

// Registration repository errors.
var (
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrInvalidRegistration  = errors.New("invalid registration")
)

const dateLayout = "2006-01-02"

// RegistrationRepository keeps the local history of submitted registrations.
type RegistrationRepository struct {
	db *DB
}

// NewRegistrationRepository creates a new RegistrationRepository.
func NewRegistrationRepository(db *DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// Create inserts a registration record.
func (r *RegistrationRepository) Create(ctx context.Context, record *models.RegistrationRecord) error {
	if record.PatientName == "" || record.ServiceID == "" || record.TimeSlot == "" {
		return ErrInvalidRegistration
	}

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.SubmittedAt.IsZero() {
		record.SubmittedAt = time.Now().UTC()
	}
	if record.Status == "" {
		record.Status = models.RegistrationStatusSubmitted
	}

	var metadataJSON *string
	if record.Metadata != nil {
		data, err := json.Marshal(record.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
		s := string(data)
		metadataJSON = &s
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO registrations (
			id, remote_id, patient_name, patient_phone, service_id, doctor_id,
			appointment_date, time_slot, visit_type,
			subtotal_cents, covered_cents, payable_cents,
			status, submitted_at, metadata_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		record.ID,
		nullString(record.RemoteID),
		record.PatientName,
		nullString(record.PatientPhone),
		record.ServiceID,
		nullString(record.DoctorID),
		record.AppointmentDate.Format(dateLayout),
		record.TimeSlot,
		record.VisitType,
		record.SubtotalCents,
		record.CoveredCents,
		record.PayableCents,
		string(record.Status),
		record.SubmittedAt.UTC().Format(time.RFC3339),
		metadataJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to insert registration: %w", err)
	}

	return nil
}

// Get retrieves a registration by local ID.
func (r *RegistrationRepository) Get(ctx context.Context, id string) (*models.RegistrationRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, remote_id, patient_name, patient_phone, service_id, doctor_id,
			appointment_date, time_slot, visit_type,
			subtotal_cents, covered_cents, payable_cents,
			status, submitted_at, metadata_json
		FROM registrations WHERE id = ?
	`, id)

	return scanRegistration(row)
}

// List returns the most recent registrations first.
func (r *RegistrationRepository) List(ctx context.Context, limit int) ([]*models.RegistrationRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, remote_id, patient_name, patient_phone, service_id, doctor_id,
			appointment_date, time_slot, visit_type,
			subtotal_cents, covered_cents, payable_cents,
			status, submitted_at, metadata_json
		FROM registrations ORDER BY submitted_at DESC, id LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query registrations: %w", err)
	}
	defer rows.Close()

	var records []*models.RegistrationRecord
	for rows.Next() {
		record, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating registrations: %w", err)
	}

	return records, nil
}

// MarkConfirmed records the API-assigned ID for a registration.
func (r *RegistrationRepository) MarkConfirmed(ctx context.Context, id, remoteID string) error {
	return r.updateStatus(ctx, id, models.RegistrationStatusConfirmed, remoteID)
}

// MarkFailed flags a registration whose submission was rejected.
func (r *RegistrationRepository) MarkFailed(ctx context.Context, id string) error {
	return r.updateStatus(ctx, id, models.RegistrationStatusFailed, "")
}

func (r *RegistrationRepository) updateStatus(ctx context.Context, id string, status models.RegistrationStatus, remoteID string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE registrations SET status = ?, remote_id = COALESCE(?, remote_id) WHERE id = ?`,
		string(status), nullString(remoteID), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update registration: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrRegistrationNotFound
	}
	return nil
}

// Delete removes a registration by ID.
func (r *RegistrationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM registrations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete registration: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrRegistrationNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegistration(row rowScanner) (*models.RegistrationRecord, error) {
	var record models.RegistrationRecord
	var remoteID, phone, doctorID, metadataJSON sql.NullString
	var appointmentDate, status, submittedAt string

	err := row.Scan(
		&record.ID,
		&remoteID,
		&record.PatientName,
		&phone,
		&record.ServiceID,
		&doctorID,
		&appointmentDate,
		&record.TimeSlot,
		&record.VisitType,
		&record.SubtotalCents,
		&record.CoveredCents,
		&record.PayableCents,
		&status,
		&submittedAt,
		&metadataJSON,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to scan registration: %w", err)
	}

	record.RemoteID = remoteID.String
	record.PatientPhone = phone.String
	record.DoctorID = doctorID.String
	record.Status = models.RegistrationStatus(status)

	if t, err := time.Parse(dateLayout, appointmentDate); err == nil {
		record.AppointmentDate = t
	}
	if t, err := time.Parse(time.RFC3339, submittedAt); err == nil {
		record.SubmittedAt = t
	}
	if metadataJSON.Valid {
		if err := json.Unmarshal([]byte(metadataJSON.String), &record.Metadata); err != nil {
			return nil, fmt.Errorf("failed to parse registration metadata: %w", err)
		}
	}

	return &record, nil
}

func nullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
