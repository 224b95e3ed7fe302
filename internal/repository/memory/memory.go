// Package memory provides in-memory repository implementations used by the
// service tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medisync/hms-api/internal/billing"
	"github.com/medisync/hms-api/internal/model"
	apperrors "github.com/medisync/hms-api/pkg/errors"
)

func notFound(resource string) error {
	return apperrors.NotFound(resource, nil)
}

func stamp(b *model.Base) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	now := time.Now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

// record mirrors the Postgres repos' transactional event insert: events are
// stored only when the domain write succeeded. A nil outbox drops them.
func record(ctx context.Context, outbox *OutboxRepository, events []*model.OutboxEvent) {
	if outbox == nil {
		return
	}
	for _, e := range events {
		_ = outbox.Create(ctx, e)
	}
}

type UserRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*model.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[uuid.UUID]*model.User)}
}

func (r *UserRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stamp(&user.Base)
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *UserRepository) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, notFound("user")
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, notFound("user")
}

func (r *UserRepository) Update(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return notFound("user")
	}
	user.UpdatedAt = time.Now()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *UserRepository) List(_ context.Context) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.User, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (r *UserRepository) CountByRole(_ context.Context) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]int)
	for _, u := range r.users {
		out[string(u.Role)]++
	}
	return out, nil
}

type DoctorRepository struct {
	mu      sync.RWMutex
	doctors map[uuid.UUID]*model.Doctor
}

func NewDoctorRepository() *DoctorRepository {
	return &DoctorRepository{doctors: make(map[uuid.UUID]*model.Doctor)}
}

func (r *DoctorRepository) Create(_ context.Context, doctor *model.Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stamp(&doctor.Base)
	cp := *doctor
	r.doctors[doctor.ID] = &cp
	return nil
}

func (r *DoctorRepository) Get(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.doctors[id]
	if !ok {
		return nil, notFound("doctor")
	}
	cp := *d
	return &cp, nil
}

func (r *DoctorRepository) GetByUserID(_ context.Context, userID uuid.UUID) (*model.Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.doctors {
		if d.UserID == userID {
			cp := *d
			return &cp, nil
		}
	}
	return nil, notFound("doctor")
}

func (r *DoctorRepository) Update(_ context.Context, doctor *model.Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.doctors[doctor.ID]; !ok {
		return notFound("doctor")
	}
	doctor.UpdatedAt = time.Now()
	cp := *doctor
	r.doctors[doctor.ID] = &cp
	return nil
}

func (r *DoctorRepository) List(_ context.Context) ([]*model.Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Doctor, 0, len(r.doctors))
	for _, d := range r.doctors {
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

type PatientRepository struct {
	mu       sync.RWMutex
	patients map[uuid.UUID]*model.Patient
}

func NewPatientRepository() *PatientRepository {
	return &PatientRepository{patients: make(map[uuid.UUID]*model.Patient)}
}

func (r *PatientRepository) Create(_ context.Context, patient *model.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stamp(&patient.Base)
	cp := *patient
	r.patients[patient.ID] = &cp
	return nil
}

func (r *PatientRepository) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.patients[id]
	if !ok {
		return nil, notFound("patient")
	}
	cp := *p
	return &cp, nil
}

func (r *PatientRepository) GetByUserID(_ context.Context, userID uuid.UUID) (*model.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.patients {
		if p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, notFound("patient")
}

func (r *PatientRepository) Update(_ context.Context, patient *model.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patients[patient.ID]; !ok {
		return notFound("patient")
	}
	patient.UpdatedAt = time.Now()
	cp := *patient
	r.patients[patient.ID] = &cp
	return nil
}

func (r *PatientRepository) List(_ context.Context) ([]*model.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Patient, 0, len(r.patients))
	for _, p := range r.patients {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

type AppointmentRepository struct {
	mu           sync.RWMutex
	appointments map[uuid.UUID]*model.Appointment
	outbox       *OutboxRepository
}

func NewAppointmentRepository(outbox *OutboxRepository) *AppointmentRepository {
	return &AppointmentRepository{
		appointments: make(map[uuid.UUID]*model.Appointment),
		outbox:       outbox,
	}
}

func (r *AppointmentRepository) Create(ctx context.Context, apt *model.Appointment, events ...*model.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stamp(&apt.Base)
	cp := *apt
	r.appointments[apt.ID] = &cp
	record(ctx, r.outbox, events)
	return nil
}

func (r *AppointmentRepository) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.appointments[id]
	if !ok {
		return nil, notFound("appointment")
	}
	cp := *a
	return &cp, nil
}

func (r *AppointmentRepository) Update(ctx context.Context, apt *model.Appointment, events ...*model.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.appointments[apt.ID]; !ok {
		return notFound("appointment")
	}
	apt.UpdatedAt = time.Now()
	cp := *apt
	r.appointments[apt.ID] = &cp
	record(ctx, r.outbox, events)
	return nil
}

func (r *AppointmentRepository) List(_ context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Appointment, 0, len(r.appointments))
	for _, a := range r.appointments {
		if filters != nil {
			if filters.DoctorID != uuid.Nil && a.DoctorID != filters.DoctorID {
				continue
			}
			if filters.PatientID != uuid.Nil && a.PatientID != filters.PatientID {
				continue
			}
			if filters.Status != "" && a.Status != filters.Status {
				continue
			}
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (r *AppointmentRepository) ListForDoctor(_ context.Context, doctorID uuid.UUID) ([]*model.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Appointment, 0)
	for _, a := range r.appointments {
		if a.DoctorID == doctorID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *AppointmentRepository) CountByStatus(_ context.Context) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]int)
	for _, a := range r.appointments {
		out[string(a.Status)]++
	}
	return out, nil
}

type MedicineRepository struct {
	mu        sync.RWMutex
	medicines map[uuid.UUID]*model.Medicine
	settings  model.SystemSettings
}

func NewMedicineRepository() *MedicineRepository {
	return &MedicineRepository{medicines: make(map[uuid.UUID]*model.Medicine)}
}

func (r *MedicineRepository) Create(_ context.Context, m *model.Medicine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stamp(&m.Base)
	cp := *m
	r.medicines[m.ID] = &cp
	return nil
}

func (r *MedicineRepository) Get(_ context.Context, id uuid.UUID) (*model.Medicine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.medicines[id]
	if !ok {
		return nil, notFound("medicine")
	}
	cp := *m
	return &cp, nil
}

func (r *MedicineRepository) Update(_ context.Context, m *model.Medicine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.medicines[m.ID]; !ok {
		return notFound("medicine")
	}
	m.UpdatedAt = time.Now()
	cp := *m
	r.medicines[m.ID] = &cp
	return nil
}

func (r *MedicineRepository) List(_ context.Context, activeOnly bool) ([]*model.Medicine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Medicine, 0, len(r.medicines))
	for _, m := range r.medicines {
		if activeOnly && !m.IsActive {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

func (r *MedicineRepository) GetSettings(_ context.Context) (*model.SystemSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cp := r.settings
	return &cp, nil
}

func (r *MedicineRepository) UpdateSettings(_ context.Context, settings *model.SystemSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings = *settings
	return nil
}

type PrescriptionRepository struct {
	mu            sync.RWMutex
	prescriptions map[uuid.UUID]*model.Prescription
	outbox        *OutboxRepository
}

func NewPrescriptionRepository(outbox *OutboxRepository) *PrescriptionRepository {
	return &PrescriptionRepository{
		prescriptions: make(map[uuid.UUID]*model.Prescription),
		outbox:        outbox,
	}
}

func (r *PrescriptionRepository) Create(ctx context.Context, p *model.Prescription, events ...*model.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stamp(&p.Base)
	for _, item := range p.Items {
		stamp(&item.Base)
		item.PrescriptionID = p.ID
	}
	cp := *p
	r.prescriptions[p.ID] = &cp
	record(ctx, r.outbox, events)
	return nil
}

func (r *PrescriptionRepository) Get(_ context.Context, id uuid.UUID) (*model.Prescription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.prescriptions[id]
	if !ok {
		return nil, notFound("prescription")
	}
	cp := *p
	return &cp, nil
}

func (r *PrescriptionRepository) GetByAppointment(_ context.Context, appointmentID uuid.UUID) (*model.Prescription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.prescriptions {
		if p.AppointmentID == appointmentID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, notFound("prescription")
}

func (r *PrescriptionRepository) Update(_ context.Context, p *model.Prescription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.prescriptions[p.ID]; !ok {
		return notFound("prescription")
	}
	p.UpdatedAt = time.Now()
	cp := *p
	r.prescriptions[p.ID] = &cp
	return nil
}

func (r *PrescriptionRepository) List(_ context.Context) ([]*model.Prescription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Prescription, 0, len(r.prescriptions))
	for _, p := range r.prescriptions {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *PrescriptionRepository) GetItems(_ context.Context, prescriptionID uuid.UUID) ([]*model.PrescriptionItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.prescriptions[prescriptionID]
	if !ok {
		return nil, notFound("prescription")
	}
	return p.Items, nil
}

type InvoiceRepository struct {
	mu       sync.RWMutex
	invoices map[uuid.UUID]*model.Invoice
	outbox   *OutboxRepository
}

func NewInvoiceRepository(outbox *OutboxRepository) *InvoiceRepository {
	return &InvoiceRepository{
		invoices: make(map[uuid.UUID]*model.Invoice),
		outbox:   outbox,
	}
}

func (r *InvoiceRepository) Create(ctx context.Context, inv *model.Invoice, events ...*model.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.invoices {
		if existing.AppointmentID == inv.AppointmentID {
			return billing.ErrDuplicateInvoice
		}
	}
	stamp(&inv.Base)
	cp := *inv
	r.invoices[inv.ID] = &cp
	record(ctx, r.outbox, events)
	return nil
}

func (r *InvoiceRepository) Get(_ context.Context, id uuid.UUID) (*model.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, notFound("invoice")
	}
	cp := *inv
	return &cp, nil
}

func (r *InvoiceRepository) GetByAppointment(_ context.Context, appointmentID uuid.UUID) (*model.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, inv := range r.invoices {
		if inv.AppointmentID == appointmentID {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, notFound("invoice")
}

func (r *InvoiceRepository) Update(ctx context.Context, inv *model.Invoice, events ...*model.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.invoices[inv.ID]; !ok {
		return notFound("invoice")
	}
	inv.UpdatedAt = time.Now()
	cp := *inv
	r.invoices[inv.ID] = &cp
	record(ctx, r.outbox, events)
	return nil
}

func (r *InvoiceRepository) List(_ context.Context, filters *model.InvoiceFilters) ([]*model.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Invoice, 0, len(r.invoices))
	for _, inv := range r.invoices {
		if filters != nil {
			if filters.Status != "" && inv.Status != filters.Status {
				continue
			}
			if filters.AppointmentID != uuid.Nil && inv.AppointmentID != filters.AppointmentID {
				continue
			}
		}
		cp := *inv
		out = append(out, &cp)
	}
	return out, nil
}

func (r *InvoiceRepository) RevenueStats(_ context.Context) (*model.DashboardOverview, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	overview := &model.DashboardOverview{}
	for _, inv := range r.invoices {
		overview.TotalInvoices++
		switch inv.Status {
		case model.InvoiceStatusPaid:
			overview.PaidCount++
			overview.RevenuePaidTotal = overview.RevenuePaidTotal.Add(inv.TotalAmount)
		case model.InvoiceStatusPending:
			overview.PendingCount++
			overview.PendingAmount = overview.PendingAmount.Add(inv.TotalAmount)
		}
	}
	return overview, nil
}

type OutboxRepository struct {
	mu     sync.RWMutex
	events []*model.OutboxEvent
}

func NewOutboxRepository() *OutboxRepository {
	return &OutboxRepository{}
}

func (r *OutboxRepository) Create(_ context.Context, event *model.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	event.Status = model.OutboxStatusPending
	event.CreatedAt = time.Now()
	cp := *event
	r.events = append(r.events, &cp)
	return nil
}

func (r *OutboxRepository) GetPendingEvents(_ context.Context, limit int) ([]*model.OutboxEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.OutboxEvent, 0)
	for _, e := range r.events {
		if e.Status == model.OutboxStatusPending {
			cp := *e
			out = append(out, &cp)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (r *OutboxRepository) UpdateStatus(_ context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.ID == id {
			e.Status = status
			e.ErrorMessage = errMsg
			e.UpdatedAt = time.Now()
			return nil
		}
	}
	return notFound("outbox event")
}

// Events returns every recorded event; used by tests to assert emission.
func (r *OutboxRepository) Events() []*model.OutboxEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.OutboxEvent, len(r.events))
	copy(out, r.events)
	return out
}
