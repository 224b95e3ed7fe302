package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Doctor struct {
	Base
	UserID          uuid.UUID       `db:"user_id" json:"user_id"`
	Specialization  string          `db:"specialization" json:"specialization"`
	LicenseNumber   string          `db:"license_number" json:"license_number"`
	YearsExperience int             `db:"years_experience" json:"years_experience"`
	ConsultationFee decimal.Decimal `db:"consultation_fee" json:"consultation_fee"`
}

type CreateDoctorRequest struct {
	UserID          uuid.UUID       `json:"user_id" binding:"required"`
	Specialization  string          `json:"specialization" binding:"required,max=120"`
	LicenseNumber   string          `json:"license_number" binding:"required,max=100"`
	YearsExperience int             `json:"years_experience" binding:"gte=0"`
	ConsultationFee decimal.Decimal `json:"consultation_fee"`
}

type UpdateDoctorRequest struct {
	Specialization  *string          `json:"specialization"`
	YearsExperience *int             `json:"years_experience"`
	ConsultationFee *decimal.Decimal `json:"consultation_fee"`
}
