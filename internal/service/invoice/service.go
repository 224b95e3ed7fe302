package invoice

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/medisync/hms-api/internal/authz"
	"github.com/medisync/hms-api/internal/billing"
	"github.com/medisync/hms-api/internal/model"
	"github.com/medisync/hms-api/internal/repository"
	apperrors "github.com/medisync/hms-api/pkg/errors"
)

// DashboardCache is implemented by the analytics service; invoice writes
// invalidate the cached overview so payments reflect immediately.
type DashboardCache interface {
	InvalidateDashboard()
}

type Service struct {
	repo         repository.InvoiceRepository
	appointments repository.AppointmentRepository
	doctors      repository.DoctorRepository
	patients     repository.PatientRepository
	dashboard    DashboardCache
}

func NewService(
	repo repository.InvoiceRepository,
	appointments repository.AppointmentRepository,
	doctors repository.DoctorRepository,
	patients repository.PatientRepository,
	dashboard DashboardCache,
) *Service {
	return &Service{
		repo:         repo,
		appointments: appointments,
		doctors:      doctors,
		patients:     patients,
		dashboard:    dashboard,
	}
}

func (s *Service) Get(ctx context.Context, claims *model.TokenClaims, id uuid.UUID) (*model.Invoice, error) {
	invoice, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeAccess(ctx, claims, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *Service) List(ctx context.Context, claims *model.TokenClaims, filters *model.InvoiceFilters) ([]*model.Invoice, error) {
	all, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, err
	}
	if claims.Role == model.RoleAdmin {
		return all, nil
	}

	visible := make([]*model.Invoice, 0, len(all))
	for _, inv := range all {
		if err := s.authorizeAccess(ctx, claims, inv); err == nil {
			visible = append(visible, inv)
		}
	}
	return visible, nil
}

// UpdateStatus drives the invoice state machine. PENDING may move to PAID
// (payment_method required, paid_at stamped) or VOID; both are terminal for
// the ordinary flow. Admins may force any transition. Totals are recomputed
// before every persist so the derived fields never drift.
func (s *Service) UpdateStatus(ctx context.Context, claims *model.TokenClaims, id uuid.UUID, req *model.UpdateInvoiceStatusRequest) (*model.Invoice, error) {
	invoice, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	switch claims.Role {
	case model.RoleAdmin:
		// Administrative override: any transition allowed.
	case model.RolePatient:
		if !authz.Can(claims.Role, authz.ActionPayInvoice) {
			return nil, apperrors.Forbidden("not authorized to update invoice status")
		}
		if err := s.authorizeAccess(ctx, claims, invoice); err != nil {
			return nil, apperrors.Forbidden("you can only pay your own invoices")
		}
		if req.Status != model.InvoiceStatusPaid {
			return nil, apperrors.Forbidden("patients can only pay invoices")
		}
		if invoice.Status != model.InvoiceStatusPending {
			return nil, fmt.Errorf("%w: invoice is already %s", billing.ErrInvalidTransition, invoice.Status)
		}
	default:
		return nil, apperrors.Forbidden("not authorized to update invoice status")
	}

	if req.Status == model.InvoiceStatusPaid {
		if req.PaymentMethod == "" {
			return nil, apperrors.BadRequest("payment_method is required", nil)
		}
		now := time.Now()
		invoice.PaidAt = &now
		invoice.PaymentMethod = req.PaymentMethod
	} else {
		// paid_at is only meaningful while the invoice is PAID.
		invoice.PaidAt = nil
	}
	invoice.Status = req.Status

	billing.Recompute(invoice)
	if err := s.repo.Update(ctx, invoice, statusEvent(invoice)...); err != nil {
		return nil, err
	}

	if s.dashboard != nil {
		s.dashboard.InvalidateDashboard()
	}
	return invoice, nil
}

func (s *Service) authorizeAccess(ctx context.Context, claims *model.TokenClaims, invoice *model.Invoice) error {
	switch claims.Role {
	case model.RoleAdmin:
		return nil
	case model.RoleDoctor:
		apt, err := s.appointments.Get(ctx, invoice.AppointmentID)
		if err != nil {
			return err
		}
		doctor, err := s.doctors.GetByUserID(ctx, claims.UserID)
		if err == nil && doctor.ID == apt.DoctorID {
			return nil
		}
	case model.RolePatient:
		apt, err := s.appointments.Get(ctx, invoice.AppointmentID)
		if err != nil {
			return err
		}
		patient, err := s.patients.GetByUserID(ctx, claims.UserID)
		if err == nil && patient.ID == apt.PatientID {
			return nil
		}
	}
	return apperrors.Forbidden("not allowed to access this invoice")
}

// statusEvent builds the outbox event the repository persists in the same
// transaction as the status write.
func statusEvent(invoice *model.Invoice) []*model.OutboxEvent {
	payload, err := json.Marshal(invoice)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal invoice event")
		return nil
	}
	return []*model.OutboxEvent{{EventType: model.EventInvoiceStatusChanged, Payload: payload}}
}
