package medicine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medisync/hms-api/internal/authz"
	"github.com/medisync/hms-api/internal/model"
	"github.com/medisync/hms-api/internal/repository"
	apperrors "github.com/medisync/hms-api/pkg/errors"
)

type Service struct {
	repo repository.MedicineRepository
}

func NewService(repo repository.MedicineRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, claims *model.TokenClaims, req *model.CreateMedicineRequest) (*model.Medicine, error) {
	if !authz.Can(claims.Role, authz.ActionManageMedicines) {
		return nil, apperrors.Forbidden("admin only")
	}
	if req.Price.IsNegative() {
		return nil, apperrors.BadRequest("price must not be negative", nil)
	}
	if err := validateTaxPercent(req.TaxPercent); err != nil {
		return nil, err
	}

	requiresRx := true
	if req.RequiresPrescription != nil {
		requiresRx = *req.RequiresPrescription
	}

	medicine := &model.Medicine{
		Name:                 req.Name,
		GenericName:          req.GenericName,
		Category:             req.Category,
		Manufacturer:         req.Manufacturer,
		Price:                req.Price,
		TaxPercent:           req.TaxPercent,
		RequiresPrescription: requiresRx,
		IsActive:             true,
	}
	if err := s.repo.Create(ctx, medicine); err != nil {
		return nil, err
	}
	return medicine, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Medicine, error) {
	return s.repo.Get(ctx, id)
}

// List shows only active medicines to non-admins; admins see retired entries
// too so they can reactivate them.
func (s *Service) List(ctx context.Context, claims *model.TokenClaims) ([]*model.Medicine, error) {
	activeOnly := !authz.IsAdmin(claims.Role)
	return s.repo.List(ctx, activeOnly)
}

// Update edits the catalog entry. Existing prescription items are unaffected:
// they carry their own price and tax snapshots.
func (s *Service) Update(ctx context.Context, claims *model.TokenClaims, id uuid.UUID, req *model.UpdateMedicineRequest) (*model.Medicine, error) {
	if !authz.Can(claims.Role, authz.ActionManageMedicines) {
		return nil, apperrors.Forbidden("admin only")
	}

	medicine, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		medicine.Name = *req.Name
	}
	if req.GenericName != nil {
		medicine.GenericName = *req.GenericName
	}
	if req.Manufacturer != nil {
		medicine.Manufacturer = *req.Manufacturer
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, apperrors.BadRequest("price must not be negative", nil)
		}
		medicine.Price = *req.Price
	}
	if req.TaxPercent != nil {
		if err := validateTaxPercent(*req.TaxPercent); err != nil {
			return nil, err
		}
		medicine.TaxPercent = *req.TaxPercent
	}
	if req.IsActive != nil {
		medicine.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, medicine); err != nil {
		return nil, err
	}
	return medicine, nil
}

// Deactivate retires a medicine from the catalog. There is no hard delete:
// prescription history keeps referencing it.
func (s *Service) Deactivate(ctx context.Context, claims *model.TokenClaims, id uuid.UUID) error {
	if !authz.Can(claims.Role, authz.ActionManageMedicines) {
		return apperrors.Forbidden("admin only")
	}
	medicine, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	medicine.IsActive = false
	return s.repo.Update(ctx, medicine)
}

func (s *Service) GetSettings(ctx context.Context, claims *model.TokenClaims) (*model.SystemSettings, error) {
	if !authz.Can(claims.Role, authz.ActionManageSettings) {
		return nil, apperrors.Forbidden("admin only")
	}
	return s.repo.GetSettings(ctx)
}

// UpdateSettings changes the global discount. Only future invoices pick it
// up; existing invoices keep the discount they were generated with.
func (s *Service) UpdateSettings(ctx context.Context, claims *model.TokenClaims, req *model.UpdateSettingsRequest) (*model.SystemSettings, error) {
	if !authz.Can(claims.Role, authz.ActionManageSettings) {
		return nil, apperrors.Forbidden("admin only")
	}
	if req.DiscountPercent.IsNegative() || req.DiscountPercent.GreaterThan(hundred) {
		return nil, apperrors.BadRequest("discount_percent must be between 0 and 100", nil)
	}

	settings := &model.SystemSettings{
		DiscountPercent: req.DiscountPercent,
		UpdatedAt:       time.Now(),
	}
	if err := s.repo.UpdateSettings(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}
