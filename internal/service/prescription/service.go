package prescription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/medisync/hms-api/internal/authz"
	"github.com/medisync/hms-api/internal/billing"
	"github.com/medisync/hms-api/internal/model"
	"github.com/medisync/hms-api/internal/repository"
	apperrors "github.com/medisync/hms-api/pkg/errors"
)

// DashboardCache is implemented by the analytics service; generating an
// invoice changes the revenue figures the dashboard reports.
type DashboardCache interface {
	InvalidateDashboard()
}

type Service struct {
	repo         repository.PrescriptionRepository
	appointments repository.AppointmentRepository
	doctors      repository.DoctorRepository
	patients     repository.PatientRepository
	medicines    repository.MedicineRepository
	invoices     repository.InvoiceRepository
	dashboard    DashboardCache
}

func NewService(
	repo repository.PrescriptionRepository,
	appointments repository.AppointmentRepository,
	doctors repository.DoctorRepository,
	patients repository.PatientRepository,
	medicines repository.MedicineRepository,
	invoices repository.InvoiceRepository,
	dashboard DashboardCache,
) *Service {
	return &Service{
		repo:         repo,
		appointments: appointments,
		doctors:      doctors,
		patients:     patients,
		medicines:    medicines,
		invoices:     invoices,
		dashboard:    dashboard,
	}
}

// Create writes the prescription with price/tax snapshots taken from the
// medicine catalog, then auto-generates the appointment's invoice. The
// discount is read from the settings singleton once and passed through as a
// plain value.
func (s *Service) Create(ctx context.Context, claims *model.TokenClaims, req *model.CreatePrescriptionRequest) (*model.Prescription, error) {
	if !authz.Can(claims.Role, authz.ActionCreatePrescription) {
		return nil, apperrors.Forbidden("only doctor or admin can create prescriptions")
	}

	apt, err := s.appointments.Get(ctx, req.AppointmentID)
	if err != nil {
		return nil, err
	}

	if claims.Role == model.RoleDoctor {
		doctor, err := s.doctors.GetByUserID(ctx, claims.UserID)
		if err != nil || doctor.ID != apt.DoctorID {
			return nil, apperrors.Forbidden("doctors can prescribe only for their appointments")
		}
	}

	prescription := &model.Prescription{
		AppointmentID: req.AppointmentID,
		Diagnosis:     req.Diagnosis,
		Instructions:  req.Instructions,
		CreatedBy:     claims.UserID,
	}

	for _, med := range req.Medicines {
		medicine, err := s.medicines.Get(ctx, med.MedicineID)
		if err != nil {
			return nil, err
		}
		if !medicine.IsActive {
			return nil, apperrors.BadRequest(fmt.Sprintf("medicine %s is not active", medicine.Name), nil)
		}

		quantity := med.Quantity
		if quantity == 0 {
			quantity = 1
		}
		durationDays := med.DurationDays
		if durationDays == 0 {
			durationDays = 7
		}

		prescription.Items = append(prescription.Items, &model.PrescriptionItem{
			MedicineID:   medicine.ID,
			MedicineName: medicine.Name,
			Quantity:     quantity,
			Dosage:       med.Dosage,
			Frequency:    med.Frequency,
			DurationDays: durationDays,
			// Snapshot: catalog price changes must not alter this later.
			UnitPrice:  medicine.Price,
			TaxPercent: medicine.TaxPercent,
		})
	}

	if err := s.repo.Create(ctx, prescription, eventFor(model.EventPrescriptionCreated, prescription)...); err != nil {
		return nil, err
	}

	if err := s.generateInvoice(ctx, apt, prescription); err != nil {
		return nil, err
	}
	return prescription, nil
}

// generateInvoice creates the appointment's invoice from the prescription.
// Generation is idempotent: if an invoice already exists the call is a
// silent no-op, matching the workflow behavior callers depend on.
func (s *Service) generateInvoice(ctx context.Context, apt *model.Appointment, prescription *model.Prescription) error {
	if _, err := s.invoices.GetByAppointment(ctx, apt.ID); err == nil {
		return nil
	}

	doctor, err := s.doctors.Get(ctx, apt.DoctorID)
	if err != nil {
		return err
	}

	settings, err := s.medicines.GetSettings(ctx)
	if err != nil {
		return err
	}

	totals, err := billing.Calculate(
		doctor.ConsultationFee,
		billing.ItemsFromPrescription(prescription.Items),
		settings.DiscountPercent,
	)
	if err != nil {
		return err
	}

	invoice := &model.Invoice{
		AppointmentID:   apt.ID,
		ConsultationFee: totals.ConsultationFee,
		MedicineTotal:   totals.MedicineTotal,
		Tax:             totals.Tax,
		DiscountPercent: totals.DiscountPercent,
		DiscountAmount:  totals.DiscountAmount,
		TotalAmount:     totals.TotalAmount,
		Status:          model.InvoiceStatusPending,
	}
	if err := s.invoices.Create(ctx, invoice, eventFor(model.EventInvoiceCreated, invoice)...); err != nil {
		// Lost the race against a concurrent generation: same outcome.
		if errors.Is(err, billing.ErrDuplicateInvoice) {
			return nil
		}
		return err
	}

	if s.dashboard != nil {
		s.dashboard.InvalidateDashboard()
	}
	return nil
}

func (s *Service) Get(ctx context.Context, claims *model.TokenClaims, id uuid.UUID) (*model.Prescription, error) {
	prescription, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeAccess(ctx, claims, prescription); err != nil {
		return nil, err
	}
	return prescription, nil
}

func (s *Service) List(ctx context.Context, claims *model.TokenClaims) ([]*model.Prescription, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if claims.Role == model.RoleAdmin {
		return all, nil
	}

	visible := make([]*model.Prescription, 0, len(all))
	for _, p := range all {
		if err := s.authorizeAccess(ctx, claims, p); err == nil {
			visible = append(visible, p)
		}
	}
	return visible, nil
}

func (s *Service) Update(ctx context.Context, claims *model.TokenClaims, id uuid.UUID, req *model.UpdatePrescriptionRequest) (*model.Prescription, error) {
	prescription, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if claims.Role != model.RoleAdmin && prescription.CreatedBy != claims.UserID {
		return nil, apperrors.Forbidden("only author doctor or admin can update prescription")
	}

	if req.Diagnosis != nil {
		prescription.Diagnosis = *req.Diagnosis
	}
	if req.Instructions != nil {
		prescription.Instructions = *req.Instructions
	}

	if err := s.repo.Update(ctx, prescription); err != nil {
		return nil, err
	}
	return prescription, nil
}

func (s *Service) authorizeAccess(ctx context.Context, claims *model.TokenClaims, prescription *model.Prescription) error {
	switch claims.Role {
	case model.RoleAdmin:
		return nil
	case model.RoleDoctor:
		apt, err := s.appointments.Get(ctx, prescription.AppointmentID)
		if err != nil {
			return err
		}
		doctor, err := s.doctors.GetByUserID(ctx, claims.UserID)
		if err == nil && doctor.ID == apt.DoctorID {
			return nil
		}
	case model.RolePatient:
		apt, err := s.appointments.Get(ctx, prescription.AppointmentID)
		if err != nil {
			return err
		}
		patient, err := s.patients.GetByUserID(ctx, claims.UserID)
		if err == nil && patient.ID == apt.PatientID {
			return nil
		}
	}
	return apperrors.Forbidden("not allowed to access this prescription")
}

// eventFor builds the outbox event that the repository persists inside the
// same transaction as the domain write.
func eventFor(eventType string, v interface{}) []*model.OutboxEvent {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("failed to marshal event")
		return nil
	}
	return []*model.OutboxEvent{{EventType: eventType, Payload: payload}}
}
