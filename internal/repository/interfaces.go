package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/medisync/hms-api/internal/model"
)

// All repository interfaces in one file
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		List(ctx context.Context) ([]*model.User, error)
		CountByRole(ctx context.Context) (map[string]int, error)
	}

	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Doctor, error)
		Update(ctx context.Context, doctor *model.Doctor) error
		List(ctx context.Context) ([]*model.Doctor, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		List(ctx context.Context) ([]*model.Patient, error)
	}

	// Mutating methods on the event-emitting repositories take optional
	// outbox events; implementations persist them atomically with the
	// domain change so a crash never drops a lifecycle event.
	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment, events ...*model.OutboxEvent) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment, events ...*model.OutboxEvent) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error)
		CountByStatus(ctx context.Context) (map[string]int, error)
	}

	MedicineRepository interface {
		Create(ctx context.Context, medicine *model.Medicine) error
		Get(ctx context.Context, id uuid.UUID) (*model.Medicine, error)
		Update(ctx context.Context, medicine *model.Medicine) error
		List(ctx context.Context, activeOnly bool) ([]*model.Medicine, error)
		GetSettings(ctx context.Context) (*model.SystemSettings, error)
		UpdateSettings(ctx context.Context, settings *model.SystemSettings) error
	}

	PrescriptionRepository interface {
		Create(ctx context.Context, prescription *model.Prescription, events ...*model.OutboxEvent) error
		Get(ctx context.Context, id uuid.UUID) (*model.Prescription, error)
		GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.Prescription, error)
		Update(ctx context.Context, prescription *model.Prescription) error
		List(ctx context.Context) ([]*model.Prescription, error)
		GetItems(ctx context.Context, prescriptionID uuid.UUID) ([]*model.PrescriptionItem, error)
	}

	InvoiceRepository interface {
		Create(ctx context.Context, invoice *model.Invoice, events ...*model.OutboxEvent) error
		Get(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
		GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.Invoice, error)
		Update(ctx context.Context, invoice *model.Invoice, events ...*model.OutboxEvent) error
		List(ctx context.Context, filters *model.InvoiceFilters) ([]*model.Invoice, error)
		RevenueStats(ctx context.Context) (*model.DashboardOverview, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error
	}
)
