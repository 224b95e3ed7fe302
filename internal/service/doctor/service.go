package doctor

import (
	"context"

	"github.com/google/uuid"

	"github.com/medisync/hms-api/internal/authz"
	"github.com/medisync/hms-api/internal/model"
	"github.com/medisync/hms-api/internal/repository"
	apperrors "github.com/medisync/hms-api/pkg/errors"
)

type Service struct {
	repo  repository.DoctorRepository
	users repository.UserRepository
}

func NewService(repo repository.DoctorRepository, users repository.UserRepository) *Service {
	return &Service{repo: repo, users: users}
}

// Create attaches a doctor profile to an existing DOCTOR-role user.
func (s *Service) Create(ctx context.Context, claims *model.TokenClaims, req *model.CreateDoctorRequest) (*model.Doctor, error) {
	if !authz.Can(claims.Role, authz.ActionManageDoctors) {
		return nil, apperrors.Forbidden("admin only")
	}

	user, err := s.users.Get(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if user.Role != model.RoleDoctor {
		return nil, apperrors.BadRequest("user is not a doctor account", nil)
	}
	if _, err := s.repo.GetByUserID(ctx, req.UserID); err == nil {
		return nil, apperrors.Conflict("doctor profile already exists for this user", nil)
	}
	if req.ConsultationFee.IsNegative() {
		return nil, apperrors.BadRequest("consultation_fee must not be negative", nil)
	}

	doctor := &model.Doctor{
		UserID:          req.UserID,
		Specialization:  req.Specialization,
		LicenseNumber:   req.LicenseNumber,
		YearsExperience: req.YearsExperience,
		ConsultationFee: req.ConsultationFee,
	}
	if err := s.repo.Create(ctx, doctor); err != nil {
		return nil, err
	}
	return doctor, nil
}

// Get is open to any authenticated user; patients need doctor details to book.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*model.Doctor, error) {
	return s.repo.List(ctx)
}

func (s *Service) Update(ctx context.Context, claims *model.TokenClaims, id uuid.UUID, req *model.UpdateDoctorRequest) (*model.Doctor, error) {
	doctor, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// Doctors may edit their own profile, except the consultation fee.
	own := claims.Role == model.RoleDoctor && doctor.UserID == claims.UserID
	if !authz.Can(claims.Role, authz.ActionManageDoctors) && !own {
		return nil, apperrors.Forbidden("not allowed to update this profile")
	}
	if req.ConsultationFee != nil && !authz.IsAdmin(claims.Role) {
		return nil, apperrors.Forbidden("only admin can change the consultation fee")
	}

	if req.Specialization != nil {
		doctor.Specialization = *req.Specialization
	}
	if req.YearsExperience != nil {
		doctor.YearsExperience = *req.YearsExperience
	}
	if req.ConsultationFee != nil {
		if req.ConsultationFee.IsNegative() {
			return nil, apperrors.BadRequest("consultation_fee must not be negative", nil)
		}
		doctor.ConsultationFee = *req.ConsultationFee
	}

	if err := s.repo.Update(ctx, doctor); err != nil {
		return nil, err
	}
	return doctor, nil
}
