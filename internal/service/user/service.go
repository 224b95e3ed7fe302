package user

import (
	"context"

	"github.com/google/uuid"

	"github.com/medisync/hms-api/internal/authz"
	"github.com/medisync/hms-api/internal/model"
	"github.com/medisync/hms-api/internal/repository"
	apperrors "github.com/medisync/hms-api/pkg/errors"
)

type Service struct {
	repo repository.UserRepository
}

func NewService(repo repository.UserRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, claims *model.TokenClaims, id uuid.UUID) (*model.User, error) {
	if !authz.IsAdmin(claims.Role) && claims.UserID != id {
		return nil, apperrors.Forbidden("not allowed to view this account")
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, claims *model.TokenClaims) ([]*model.User, error) {
	if !authz.Can(claims.Role, authz.ActionManageUsers) {
		return nil, apperrors.Forbidden("admin only")
	}
	return s.repo.List(ctx)
}

// SetActive toggles the account without deleting anything; deactivated users
// fail login and token refresh but keep their history.
func (s *Service) SetActive(ctx context.Context, claims *model.TokenClaims, id uuid.UUID, active bool) (*model.User, error) {
	if !authz.Can(claims.Role, authz.ActionManageUsers) {
		return nil, apperrors.Forbidden("admin only")
	}
	if claims.UserID == id && !active {
		return nil, apperrors.BadRequest("cannot deactivate your own account", nil)
	}

	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	user.IsActive = active
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
