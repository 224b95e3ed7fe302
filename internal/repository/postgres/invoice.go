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
	"github.com/shopspring/decimal"

	"github.com/medisync/hms-api/internal/billing"
	"github.com/medisync/hms-api/internal/model"
	"github.com/medisync/hms-api/internal/repository"
	apperrors "github.com/medisync/hms-api/pkg/errors"
)

const pgUniqueViolation = "23505"

type invoiceRepository struct {
	BaseRepository
}

func NewInvoiceRepository(db *sqlx.DB) repository.InvoiceRepository {
	return &invoiceRepository{NewBaseRepository(db)}
}

// Create inserts the invoice. The unique constraint on appointment_id makes
// invoice generation idempotent under concurrent requests; a violation is
// reported as ErrDuplicateInvoice.
func (r *invoiceRepository) Create(ctx context.Context, invoice *model.Invoice, events ...*model.OutboxEvent) error {
	query := `
		INSERT INTO invoices (
			id, appointment_id, consultation_fee, medicine_total, tax,
			discount_percent, discount_amount, total_amount, status,
			payment_method, paid_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	invoice.ID = uuid.New()
	invoice.CreatedAt = time.Now()
	invoice.UpdatedAt = time.Now()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, query,
			invoice.ID,
			invoice.AppointmentID,
			invoice.ConsultationFee,
			invoice.MedicineTotal,
			invoice.Tax,
			invoice.DiscountPercent,
			invoice.DiscountAmount,
			invoice.TotalAmount,
			invoice.Status,
			invoice.PaymentMethod,
			invoice.PaidAt,
			invoice.CreatedAt,
			invoice.UpdatedAt,
		)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
				return billing.ErrDuplicateInvoice
			}
			return fmt.Errorf("failed to create invoice: %w", err)
		}
		return insertOutboxEvents(ctx, tx, events)
	})
}

func (r *invoiceRepository) Get(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	query := `
		SELECT id, appointment_id, consultation_fee, medicine_total, tax,
			   discount_percent, discount_amount, total_amount, status,
			   payment_method, paid_at, created_at, updated_at
		FROM invoices
		WHERE id = $1
	`
	var invoice model.Invoice
	err := r.db.GetContext(ctx, &invoice, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("invoice", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return &invoice, nil
}

func (r *invoiceRepository) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.Invoice, error) {
	query := `
		SELECT id, appointment_id, consultation_fee, medicine_total, tax,
			   discount_percent, discount_amount, total_amount, status,
			   payment_method, paid_at, created_at, updated_at
		FROM invoices
		WHERE appointment_id = $1
	`
	var invoice model.Invoice
	err := r.db.GetContext(ctx, &invoice, query, appointmentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("invoice", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice by appointment: %w", err)
	}
	return &invoice, nil
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *model.Invoice, events ...*model.OutboxEvent) error {
	query := `
		UPDATE invoices
		SET consultation_fee = $1, medicine_total = $2, tax = $3,
			discount_percent = $4, discount_amount = $5, total_amount = $6,
			status = $7, payment_method = $8, paid_at = $9, updated_at = $10
		WHERE id = $11
	`
	invoice.UpdatedAt = time.Now()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, query,
			invoice.ConsultationFee,
			invoice.MedicineTotal,
			invoice.Tax,
			invoice.DiscountPercent,
			invoice.DiscountAmount,
			invoice.TotalAmount,
			invoice.Status,
			invoice.PaymentMethod,
			invoice.PaidAt,
			invoice.UpdatedAt,
			invoice.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update invoice: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return apperrors.NotFound("invoice", nil)
		}
		return insertOutboxEvents(ctx, tx, events)
	})
}

func (r *invoiceRepository) List(ctx context.Context, filters *model.InvoiceFilters) ([]*model.Invoice, error) {
	query := `
		SELECT id, appointment_id, consultation_fee, medicine_total, tax,
			   discount_percent, discount_amount, total_amount, status,
			   payment_method, paid_at, created_at, updated_at
		FROM invoices
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argCount)
			args = append(args, filters.Status)
			argCount++
		}
		if filters.AppointmentID != uuid.Nil {
			query += fmt.Sprintf(" AND appointment_id = $%d", argCount)
			args = append(args, filters.AppointmentID)
			argCount++
		}
	}

	query += " ORDER BY created_at DESC"

	var invoices []*model.Invoice
	err := r.db.SelectContext(ctx, &invoices, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, nil
}

// RevenueStats aggregates the invoice figures used by the dashboard.
func (r *invoiceRepository) RevenueStats(ctx context.Context) (*model.DashboardOverview, error) {
	query := `
		SELECT
			COUNT(*) AS total_invoices,
			COUNT(*) FILTER (WHERE status = 'PAID') AS paid_count,
			COUNT(*) FILTER (WHERE status = 'PENDING') AS pending_count,
			COALESCE(SUM(total_amount) FILTER (WHERE status = 'PAID'), 0) AS revenue_paid_total,
			COALESCE(SUM(total_amount) FILTER (WHERE status = 'PENDING'), 0) AS pending_amount
		FROM invoices
	`
	row := r.db.QueryRowxContext(ctx, query)

	var overview model.DashboardOverview
	var paidTotal, pendingAmount decimal.Decimal
	if err := row.Scan(
		&overview.TotalInvoices,
		&overview.PaidCount,
		&overview.PendingCount,
		&paidTotal,
		&pendingAmount,
	); err != nil {
		return nil, fmt.Errorf("failed to aggregate revenue stats: %w", err)
	}
	overview.RevenuePaidTotal = paidTotal
	overview.PendingAmount = pendingAmount
	return &overview, nil
}
