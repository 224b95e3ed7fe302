package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "PENDING"
	InvoiceStatusPaid    InvoiceStatus = "PAID"
	InvoiceStatusVoid    InvoiceStatus = "VOID"
)

// Invoice is one-to-one with an appointment. DiscountAmount and TotalAmount
// are always derived from the other numeric fields, never set by callers.
type Invoice struct {
	Base
	AppointmentID   uuid.UUID       `db:"appointment_id" json:"appointment_id"`
	ConsultationFee decimal.Decimal `db:"consultation_fee" json:"consultation_fee"`
	MedicineTotal   decimal.Decimal `db:"medicine_total" json:"medicine_total"`
	Tax             decimal.Decimal `db:"tax" json:"tax"`
	DiscountPercent decimal.Decimal `db:"discount_percent" json:"discount_percent"`
	DiscountAmount  decimal.Decimal `db:"discount_amount" json:"discount_amount"`
	TotalAmount     decimal.Decimal `db:"total_amount" json:"total_amount"`
	Status          InvoiceStatus   `db:"status" json:"status"`
	PaymentMethod   string          `db:"payment_method" json:"payment_method,omitempty"`
	PaidAt          *time.Time      `db:"paid_at" json:"paid_at,omitempty"`
}

type UpdateInvoiceStatusRequest struct {
	Status        InvoiceStatus `json:"status" binding:"required,oneof=PENDING PAID VOID"`
	PaymentMethod string        `json:"payment_method" binding:"max=40"`
}

type InvoiceFilters struct {
	Status        InvoiceStatus
	AppointmentID uuid.UUID
}
