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

type medicineRepository struct {
	BaseRepository
}

func NewMedicineRepository(db *sqlx.DB) repository.MedicineRepository {
	return &medicineRepository{NewBaseRepository(db)}
}

func (r *medicineRepository) Create(ctx context.Context, medicine *model.Medicine) error {
	query := `
		INSERT INTO medicines (
			id, name, generic_name, category, manufacturer, price, tax_percent,
			requires_prescription, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	medicine.ID = uuid.New()
	medicine.CreatedAt = time.Now()
	medicine.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		medicine.ID,
		medicine.Name,
		medicine.GenericName,
		medicine.Category,
		medicine.Manufacturer,
		medicine.Price,
		medicine.TaxPercent,
		medicine.RequiresPrescription,
		medicine.IsActive,
		medicine.CreatedAt,
		medicine.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create medicine: %w", err)
	}
	return nil
}

func (r *medicineRepository) Get(ctx context.Context, id uuid.UUID) (*model.Medicine, error) {
	query := `
		SELECT id, name, generic_name, category, manufacturer, price, tax_percent,
			   requires_prescription, is_active, created_at, updated_at
		FROM medicines
		WHERE id = $1
	`
	var medicine model.Medicine
	err := r.db.GetContext(ctx, &medicine, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("medicine", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get medicine: %w", err)
	}
	return &medicine, nil
}

func (r *medicineRepository) Update(ctx context.Context, medicine *model.Medicine) error {
	query := `
		UPDATE medicines
		SET name = $1, generic_name = $2, manufacturer = $3, price = $4,
			tax_percent = $5, is_active = $6, updated_at = $7
		WHERE id = $8
	`
	medicine.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		medicine.Name,
		medicine.GenericName,
		medicine.Manufacturer,
		medicine.Price,
		medicine.TaxPercent,
		medicine.IsActive,
		medicine.UpdatedAt,
		medicine.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update medicine: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("medicine", nil)
	}
	return nil
}

func (r *medicineRepository) List(ctx context.Context, activeOnly bool) ([]*model.Medicine, error) {
	query := `
		SELECT id, name, generic_name, category, manufacturer, price, tax_percent,
			   requires_prescription, is_active, created_at, updated_at
		FROM medicines
	`
	if activeOnly {
		query += " WHERE is_active = true"
	}
	query += " ORDER BY name ASC"

	var medicines []*model.Medicine
	err := r.db.SelectContext(ctx, &medicines, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list medicines: %w", err)
	}
	return medicines, nil
}

// GetSettings reads the singleton settings row, creating it with a zero
// discount on first access.
func (r *medicineRepository) GetSettings(ctx context.Context) (*model.SystemSettings, error) {
	query := `SELECT discount_percent, updated_at FROM system_settings WHERE id = 1`

	var settings model.SystemSettings
	err := r.db.GetContext(ctx, &settings, query)
	if errors.Is(err, sql.ErrNoRows) {
		insert := `
			INSERT INTO system_settings (id, discount_percent, updated_at)
			VALUES (1, 0, NOW())
			ON CONFLICT (id) DO NOTHING
		`
		if _, err := r.db.ExecContext(ctx, insert); err != nil {
			return nil, fmt.Errorf("failed to initialize settings: %w", err)
		}
		err = r.db.GetContext(ctx, &settings, query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return &settings, nil
}

func (r *medicineRepository) UpdateSettings(ctx context.Context, settings *model.SystemSettings) error {
	query := `
		INSERT INTO system_settings (id, discount_percent, updated_at)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET discount_percent = $1, updated_at = $2
	`
	settings.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query, settings.DiscountPercent, settings.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	return nil
}
