package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/medisync/hms-api/internal/model"
	"github.com/medisync/hms-api/internal/repository"
	"github.com/medisync/hms-api/internal/scheduling"
	apperrors "github.com/medisync/hms-api/pkg/errors"
)

// Postgres error codes mapped back to domain errors. The exclusion
// constraint on (doctor_id, tstzrange) is the backstop for booking races
// the optimistic guard cannot see.
const (
	pgExclusionViolation = "23P01"
	pgCheckViolation     = "23514"
)

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{NewBaseRepository(db)}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment, events ...*model.OutboxEvent) error {
	query := `
		INSERT INTO appointments (
			id, doctor_id, patient_id, start_time, end_time,
			reason, notes, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	appointment.ID = uuid.New()
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, query,
			appointment.ID,
			appointment.DoctorID,
			appointment.PatientID,
			appointment.StartTime,
			appointment.EndTime,
			appointment.Reason,
			appointment.Notes,
			appointment.Status,
			appointment.CreatedAt,
			appointment.UpdatedAt,
		)
		if err != nil {
			return r.translateConstraint(err)
		}
		return insertOutboxEvents(ctx, tx, events)
	})
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, doctor_id, patient_id, start_time, end_time,
			   reason, notes, status, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("appointment", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment, events ...*model.OutboxEvent) error {
	query := `
		UPDATE appointments
		SET start_time = $1, end_time = $2, reason = $3, notes = $4, status = $5, updated_at = $6
		WHERE id = $7
	`
	appointment.UpdatedAt = time.Now()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, query,
			appointment.StartTime,
			appointment.EndTime,
			appointment.Reason,
			appointment.Notes,
			appointment.Status,
			appointment.UpdatedAt,
			appointment.ID,
		)
		if err != nil {
			return r.translateConstraint(err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return apperrors.NotFound("appointment", nil)
		}
		return insertOutboxEvents(ctx, tx, events)
	})
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `
		SELECT id, doctor_id, patient_id, start_time, end_time,
			   reason, notes, status, created_at, updated_at
		FROM appointments
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.DoctorID != uuid.Nil {
			query += fmt.Sprintf(" AND doctor_id = $%d", argCount)
			args = append(args, filters.DoctorID)
			argCount++
		}
		if filters.PatientID != uuid.Nil {
			query += fmt.Sprintf(" AND patient_id = $%d", argCount)
			args = append(args, filters.PatientID)
			argCount++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argCount)
			args = append(args, filters.Status)
			argCount++
		}
		if !filters.StartDate.IsZero() {
			query += fmt.Sprintf(" AND start_time >= $%d", argCount)
			args = append(args, filters.StartDate)
			argCount++
		}
		if !filters.EndDate.IsZero() {
			query += fmt.Sprintf(" AND end_time <= $%d", argCount)
			args = append(args, filters.EndDate)
			argCount++
		}
	}

	query += " ORDER BY start_time DESC"

	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// ListForDoctor returns every appointment of the doctor regardless of
// status; the conflict guard deliberately sees cancelled slots too.
func (r *appointmentRepository) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error) {
	query := `
		SELECT id, doctor_id, patient_id, start_time, end_time,
			   reason, notes, status, created_at, updated_at
		FROM appointments
		WHERE doctor_id = $1
		ORDER BY start_time ASC
	`
	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctor appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	query := `SELECT status, COUNT(*) AS total FROM appointments GROUP BY status`

	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count appointments: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var total int
		if err := rows.Scan(&status, &total); err != nil {
			return nil, fmt.Errorf("failed to scan appointment count: %w", err)
		}
		counts[status] = total
	}
	return counts, rows.Err()
}

func (r *appointmentRepository) translateConstraint(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgExclusionViolation:
			return &scheduling.ConflictError{}
		case pgCheckViolation:
			return scheduling.ErrInvalidInterval
		}
	}
	return fmt.Errorf("failed to persist appointment: %w", err)
}
