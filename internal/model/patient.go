package model

import (
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

type Patient struct {
	Base
	UserID           uuid.UUID  `db:"user_id" json:"user_id"`
	DateOfBirth      *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender           Gender     `db:"gender" json:"gender,omitempty"`
	BloodGroup       string     `db:"blood_group" json:"blood_group,omitempty"`
	Address          string     `db:"address" json:"address,omitempty"`
	EmergencyContact string     `db:"emergency_contact" json:"emergency_contact,omitempty"`
}

type CreatePatientRequest struct {
	UserID           uuid.UUID  `json:"user_id" binding:"required"`
	DateOfBirth      *time.Time `json:"date_of_birth"`
	Gender           Gender     `json:"gender" binding:"omitempty,oneof=MALE FEMALE OTHER"`
	BloodGroup       string     `json:"blood_group" binding:"max=5"`
	Address          string     `json:"address"`
	EmergencyContact string     `json:"emergency_contact" binding:"max=20"`
}

type UpdatePatientRequest struct {
	DateOfBirth      *time.Time `json:"date_of_birth"`
	Gender           *Gender    `json:"gender" binding:"omitempty,oneof=MALE FEMALE OTHER"`
	BloodGroup       *string    `json:"blood_group"`
	Address          *string    `json:"address"`
	EmergencyContact *string    `json:"emergency_contact"`
}
