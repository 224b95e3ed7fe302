package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type MedicineCategory string

const (
	CategoryTablet    MedicineCategory = "TABLET"
	CategoryCapsule   MedicineCategory = "CAPSULE"
	CategorySyrup     MedicineCategory = "SYRUP"
	CategoryInjection MedicineCategory = "INJECTION"
	CategoryOintment  MedicineCategory = "OINTMENT"
	CategoryDrops     MedicineCategory = "DROPS"
	CategoryInhaler   MedicineCategory = "INHALER"
	CategorySurgical  MedicineCategory = "SURGICAL"
	CategoryLabTest   MedicineCategory = "LAB_TEST"
	CategoryOther     MedicineCategory = "OTHER"
)

// Medicine is the catalog entry carrying the live price and tax rate.
// Prescription items snapshot these at creation time.
type Medicine struct {
	Base
	Name                 string           `db:"name" json:"name"`
	GenericName          string           `db:"generic_name" json:"generic_name,omitempty"`
	Category             MedicineCategory `db:"category" json:"category"`
	Manufacturer         string           `db:"manufacturer" json:"manufacturer,omitempty"`
	Price                decimal.Decimal  `db:"price" json:"price"`
	TaxPercent           decimal.Decimal  `db:"tax_percent" json:"tax_percent"`
	RequiresPrescription bool             `db:"requires_prescription" json:"requires_prescription"`
	IsActive             bool             `db:"is_active" json:"is_active"`
}

type CreateMedicineRequest struct {
	Name                 string           `json:"name" binding:"required,max=200"`
	GenericName          string           `json:"generic_name" binding:"max=200"`
	Category             MedicineCategory `json:"category" binding:"required,oneof=TABLET CAPSULE SYRUP INJECTION OINTMENT DROPS INHALER SURGICAL LAB_TEST OTHER"`
	Manufacturer         string           `json:"manufacturer" binding:"max=200"`
	Price                decimal.Decimal  `json:"price" binding:"required"`
	TaxPercent           decimal.Decimal  `json:"tax_percent"`
	RequiresPrescription *bool            `json:"requires_prescription"`
}

type UpdateMedicineRequest struct {
	Name         *string          `json:"name"`
	GenericName  *string          `json:"generic_name"`
	Manufacturer *string          `json:"manufacturer"`
	Price        *decimal.Decimal `json:"price"`
	TaxPercent   *decimal.Decimal `json:"tax_percent"`
	IsActive     *bool            `json:"is_active"`
}

// SystemSettings is the singleton configuration row. The discount is read
// once per request and passed into the billing calculator as a parameter,
// never consulted as ambient state.
type SystemSettings struct {
	DiscountPercent decimal.Decimal `db:"discount_percent" json:"discount_percent"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

type UpdateSettingsRequest struct {
	DiscountPercent decimal.Decimal `json:"discount_percent" binding:"required"`
}
