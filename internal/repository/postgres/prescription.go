package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/medisync/hms-api/internal/model"
	"github.com/medisync/hms-api/internal/repository"
	apperrors "github.com/medisync/hms-api/pkg/errors"
)

type prescriptionRepository struct {
	BaseRepository
}

func NewPrescriptionRepository(db *sqlx.DB) repository.PrescriptionRepository {
	return &prescriptionRepository{NewBaseRepository(db)}
}

// Create persists the prescription, its item snapshots, and any lifecycle
// events in one transaction.
func (r *prescriptionRepository) Create(ctx context.Context, prescription *model.Prescription, events ...*model.OutboxEvent) error {
	prescription.ID = uuid.New()
	prescription.CreatedAt = time.Now()
	prescription.UpdatedAt = time.Now()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO prescriptions (
				id, appointment_id, diagnosis, instructions, created_by,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		_, err := tx.ExecContext(ctx, query,
			prescription.ID,
			prescription.AppointmentID,
			prescription.Diagnosis,
			prescription.Instructions,
			prescription.CreatedBy,
			prescription.CreatedAt,
			prescription.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create prescription: %w", err)
		}

		itemQuery := `
			INSERT INTO prescription_items (
				id, prescription_id, medicine_id, medicine_name, quantity,
				dosage, frequency, duration_days, unit_price, tax_percent,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`
		for _, item := range prescription.Items {
			item.ID = uuid.New()
			item.PrescriptionID = prescription.ID
			item.CreatedAt = prescription.CreatedAt
			item.UpdatedAt = prescription.UpdatedAt

			_, err := tx.ExecContext(ctx, itemQuery,
				item.ID,
				item.PrescriptionID,
				item.MedicineID,
				item.MedicineName,
				item.Quantity,
				item.Dosage,
				item.Frequency,
				item.DurationDays,
				item.UnitPrice,
				item.TaxPercent,
				item.CreatedAt,
				item.UpdatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to create prescription item: %w", err)
			}
		}
		return insertOutboxEvents(ctx, tx, events)
	})
}

func (r *prescriptionRepository) Get(ctx context.Context, id uuid.UUID) (*model.Prescription, error) {
	query := `
		SELECT id, appointment_id, diagnosis, instructions, created_by,
			   created_at, updated_at
		FROM prescriptions
		WHERE id = $1
	`
	var prescription model.Prescription
	err := r.db.GetContext(ctx, &prescription, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("prescription", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prescription: %w", err)
	}

	items, err := r.GetItems(ctx, prescription.ID)
	if err != nil {
		return nil, err
	}
	prescription.Items = items
	return &prescription, nil
}

func (r *prescriptionRepository) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.Prescription, error) {
	query := `
		SELECT id, appointment_id, diagnosis, instructions, created_by,
			   created_at, updated_at
		FROM prescriptions
		WHERE appointment_id = $1
	`
	var prescription model.Prescription
	err := r.db.GetContext(ctx, &prescription, query, appointmentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("prescription", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prescription by appointment: %w", err)
	}

	items, err := r.GetItems(ctx, prescription.ID)
	if err != nil {
		return nil, err
	}
	prescription.Items = items
	return &prescription, nil
}

func (r *prescriptionRepository) Update(ctx context.Context, prescription *model.Prescription) error {
	query := `
		UPDATE prescriptions
		SET diagnosis = $1, instructions = $2, updated_at = $3
		WHERE id = $4
	`
	prescription.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		prescription.Diagnosis,
		prescription.Instructions,
		prescription.UpdatedAt,
		prescription.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update prescription: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("prescription", nil)
	}
	return nil
}

func (r *prescriptionRepository) List(ctx context.Context) ([]*model.Prescription, error) {
	query := `
		SELECT id, appointment_id, diagnosis, instructions, created_by,
			   created_at, updated_at
		FROM prescriptions
		ORDER BY created_at DESC
	`
	var prescriptions []*model.Prescription
	err := r.db.SelectContext(ctx, &prescriptions, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	return prescriptions, nil
}

// GetItems reads the stored snapshots. The medicine name is the one captured
// at prescription time, never the current catalog name.
func (r *prescriptionRepository) GetItems(ctx context.Context, prescriptionID uuid.UUID) ([]*model.PrescriptionItem, error) {
	query := `
		SELECT id, prescription_id, medicine_id, medicine_name,
			   quantity, dosage, frequency, duration_days,
			   unit_price, tax_percent, created_at, updated_at
		FROM prescription_items
		WHERE prescription_id = $1
		ORDER BY created_at ASC, id ASC
	`
	var items []*model.PrescriptionItem
	err := r.db.SelectContext(ctx, &items, query, prescriptionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get prescription items: %w", err)
	}
	return items, nil
}
