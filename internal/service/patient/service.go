package patient

import (
	"context"

	"github.com/google/uuid"

	"github.com/medisync/hms-api/internal/authz"
	"github.com/medisync/hms-api/internal/model"
	"github.com/medisync/hms-api/internal/repository"
	apperrors "github.com/medisync/hms-api/pkg/errors"
)

type Service struct {
	repo  repository.PatientRepository
	users repository.UserRepository
}

func NewService(repo repository.PatientRepository, users repository.UserRepository) *Service {
	return &Service{repo: repo, users: users}
}

// Create attaches a patient profile to an existing PATIENT-role user. A
// patient may create their own profile; admins may create any.
func (s *Service) Create(ctx context.Context, claims *model.TokenClaims, req *model.CreatePatientRequest) (*model.Patient, error) {
	own := claims.Role == model.RolePatient && claims.UserID == req.UserID
	if !authz.Can(claims.Role, authz.ActionManagePatients) && !own {
		return nil, apperrors.Forbidden("not allowed to create this profile")
	}

	user, err := s.users.Get(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if user.Role != model.RolePatient {
		return nil, apperrors.BadRequest("user is not a patient account", nil)
	}
	if _, err := s.repo.GetByUserID(ctx, req.UserID); err == nil {
		return nil, apperrors.Conflict("patient profile already exists for this user", nil)
	}

	patient := &model.Patient{
		UserID:           req.UserID,
		DateOfBirth:      req.DateOfBirth,
		Gender:           req.Gender,
		BloodGroup:       req.BloodGroup,
		Address:          req.Address,
		EmergencyContact: req.EmergencyContact,
	}
	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

func (s *Service) Get(ctx context.Context, claims *model.TokenClaims, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch claims.Role {
	case model.RoleAdmin, model.RoleDoctor:
		return patient, nil
	case model.RolePatient:
		if patient.UserID == claims.UserID {
			return patient, nil
		}
	}
	return nil, apperrors.Forbidden("not allowed to view this patient")
}

func (s *Service) List(ctx context.Context, claims *model.TokenClaims) ([]*model.Patient, error) {
	if claims.Role == model.RolePatient {
		return nil, apperrors.Forbidden("not allowed to list patients")
	}
	return s.repo.List(ctx)
}

func (s *Service) Update(ctx context.Context, claims *model.TokenClaims, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	own := claims.Role == model.RolePatient && patient.UserID == claims.UserID
	if !authz.Can(claims.Role, authz.ActionManagePatients) && !own {
		return nil, apperrors.Forbidden("not allowed to update this profile")
	}

	if req.DateOfBirth != nil {
		patient.DateOfBirth = req.DateOfBirth
	}
	if req.Gender != nil {
		patient.Gender = *req.Gender
	}
	if req.BloodGroup != nil {
		patient.BloodGroup = *req.BloodGroup
	}
	if req.Address != nil {
		patient.Address = *req.Address
	}
	if req.EmergencyContact != nil {
		patient.EmergencyContact = *req.EmergencyContact
	}

	if err := s.repo.Update(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}
