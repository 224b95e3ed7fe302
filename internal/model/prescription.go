package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Prescription struct {
	Base
	AppointmentID uuid.UUID           `db:"appointment_id" json:"appointment_id"`
	Diagnosis     string              `db:"diagnosis" json:"diagnosis"`
	Instructions  string              `db:"instructions" json:"instructions,omitempty"`
	CreatedBy     uuid.UUID           `db:"created_by" json:"created_by"`
	Items         []*PrescriptionItem `db:"-" json:"items,omitempty"`
}

// PrescriptionItem is an immutable snapshot: unit_price and tax_percent are
// copied from the medicine catalog at creation time so later catalog edits
// never alter existing prescriptions or invoices.
type PrescriptionItem struct {
	Base
	PrescriptionID uuid.UUID       `db:"prescription_id" json:"prescription_id"`
	MedicineID     uuid.UUID       `db:"medicine_id" json:"medicine_id"`
	MedicineName   string          `db:"medicine_name" json:"medicine_name,omitempty"`
	Quantity       int             `db:"quantity" json:"quantity"`
	Dosage         string          `db:"dosage" json:"dosage"`
	Frequency      string          `db:"frequency" json:"frequency"`
	DurationDays   int             `db:"duration_days" json:"duration_days"`
	UnitPrice      decimal.Decimal `db:"unit_price" json:"unit_price"`
	TaxPercent     decimal.Decimal `db:"tax_percent" json:"tax_percent"`
}

func (i *PrescriptionItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i *PrescriptionItem) LineTax() decimal.Decimal {
	return i.LineTotal().Mul(i.TaxPercent).Div(decimal.NewFromInt(100))
}

type PrescriptionItemRequest struct {
	MedicineID   uuid.UUID `json:"medicine_id" binding:"required"`
	Quantity     int       `json:"quantity" binding:"omitempty,min=1"`
	Dosage       string    `json:"dosage" binding:"required,max=100"`
	Frequency    string    `json:"frequency" binding:"required,max=100"`
	DurationDays int       `json:"duration_days" binding:"omitempty,min=1"`
}

type CreatePrescriptionRequest struct {
	AppointmentID uuid.UUID                  `json:"appointment_id" binding:"required"`
	Diagnosis     string                     `json:"diagnosis" binding:"required"`
	Instructions  string                     `json:"instructions"`
	Medicines     []*PrescriptionItemRequest `json:"medicines" binding:"dive"`
}

type UpdatePrescriptionRequest struct {
	Diagnosis    *string `json:"diagnosis"`
	Instructions *string `json:"instructions"`
}
