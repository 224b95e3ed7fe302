package analytics

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/medisync/hms-api/internal/authz"
	"github.com/medisync/hms-api/internal/model"
	"github.com/medisync/hms-api/internal/repository"
	apperrors "github.com/medisync/hms-api/pkg/errors"
)

const dashboardKey = "dashboard:overview"

// Service assembles the admin dashboard from three aggregate queries and
// caches the result briefly. Invoice writes invalidate the cache so payments
// show up immediately.
type Service struct {
	users        repository.UserRepository
	appointments repository.AppointmentRepository
	invoices     repository.InvoiceRepository
	cache        *gocache.Cache
}

func NewService(
	users repository.UserRepository,
	appointments repository.AppointmentRepository,
	invoices repository.InvoiceRepository,
	ttl time.Duration,
) *Service {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Service{
		users:        users,
		appointments: appointments,
		invoices:     invoices,
		cache:        gocache.New(ttl, 2*ttl),
	}
}

func (s *Service) Dashboard(ctx context.Context, claims *model.TokenClaims) (*model.DashboardOverview, error) {
	if !authz.Can(claims.Role, authz.ActionViewDashboard) {
		return nil, apperrors.Forbidden("admin only")
	}

	if cached, ok := s.cache.Get(dashboardKey); ok {
		return cached.(*model.DashboardOverview), nil
	}

	overview, err := s.invoices.RevenueStats(ctx)
	if err != nil {
		return nil, err
	}
	overview.UsersByRole, err = s.users.CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	overview.AppointmentsByStatus, err = s.appointments.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.SetDefault(dashboardKey, overview)
	return overview, nil
}

// InvalidateDashboard drops the cached overview; the next read recomputes.
func (s *Service) InvalidateDashboard() {
	s.cache.Delete(dashboardKey)
}
