package invoice

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medisync/hms-api/internal/billing"
	"github.com/medisync/hms-api/internal/model"
	"github.com/medisync/hms-api/internal/repository/memory"
)

type recordingCache struct {
	invalidated int
}

func (c *recordingCache) InvalidateDashboard() { c.invalidated++ }

type fixture struct {
	svc          *Service
	invoices     *memory.InvoiceRepository
	appointments *memory.AppointmentRepository
	doctors      *memory.DoctorRepository
	patients     *memory.PatientRepository
	outbox       *memory.OutboxRepository
	cache        *recordingCache

	doctor      *model.Doctor
	patient     *model.Patient
	appointment *model.Appointment
	invoice     *model.Invoice

	adminClaims   *model.TokenClaims
	doctorClaims  *model.TokenClaims
	patientClaims *model.TokenClaims
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		doctors:  memory.NewDoctorRepository(),
		patients: memory.NewPatientRepository(),
		outbox:   memory.NewOutboxRepository(),
		cache:    &recordingCache{},
	}
	f.invoices = memory.NewInvoiceRepository(f.outbox)
	f.appointments = memory.NewAppointmentRepository(f.outbox)
	f.svc = NewService(f.invoices, f.appointments, f.doctors, f.patients, f.cache)

	f.doctor = &model.Doctor{UserID: uuid.New(), ConsultationFee: dec("500")}
	require.NoError(t, f.doctors.Create(ctx, f.doctor))

	f.patient = &model.Patient{UserID: uuid.New()}
	require.NoError(t, f.patients.Create(ctx, f.patient))

	f.appointment = &model.Appointment{
		DoctorID:  f.doctor.ID,
		PatientID: f.patient.ID,
		StartTime: time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 4, 1, 10, 30, 0, 0, time.UTC),
		Status:    model.AppointmentStatusCompleted,
	}
	require.NoError(t, f.appointments.Create(ctx, f.appointment))

	f.invoice = &model.Invoice{
		AppointmentID:   f.appointment.ID,
		ConsultationFee: dec("500"),
		MedicineTotal:   dec("250"),
		Tax:             dec("26.50"),
		DiscountPercent: dec("5"),
		DiscountAmount:  dec("37.50"),
		TotalAmount:     dec("739.00"),
		Status:          model.InvoiceStatusPending,
	}
	require.NoError(t, f.invoices.Create(ctx, f.invoice))

	f.adminClaims = &model.TokenClaims{UserID: uuid.New(), Role: model.RoleAdmin}
	f.doctorClaims = &model.TokenClaims{UserID: f.doctor.UserID, Role: model.RoleDoctor}
	f.patientClaims = &model.TokenClaims{UserID: f.patient.UserID, Role: model.RolePatient}
	return f
}

func TestPatientPaysOwnInvoice(t *testing.T) {
	f := newFixture(t)

	inv, err := f.svc.UpdateStatus(context.Background(), f.patientClaims, f.invoice.ID, &model.UpdateInvoiceStatusRequest{
		Status:        model.InvoiceStatusPaid,
		PaymentMethod: "card",
	})
	require.NoError(t, err)

	assert.Equal(t, model.InvoiceStatusPaid, inv.Status)
	assert.Equal(t, "card", inv.PaymentMethod)
	require.NotNil(t, inv.PaidAt)
	assert.Equal(t, 1, f.cache.invalidated)

	events := f.outbox.Events()
	require.Len(t, events, 1)
	assert.Equal(t, model.EventInvoiceStatusChanged, events[0].EventType)
}

func TestPayRequiresPaymentMethod(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.UpdateStatus(context.Background(), f.patientClaims, f.invoice.ID, &model.UpdateInvoiceStatusRequest{
		Status: model.InvoiceStatusPaid,
	})
	assert.Error(t, err)
}

func TestPatientCannotPayOthersInvoice(t *testing.T) {
	f := newFixture(t)

	stranger := &model.TokenClaims{UserID: uuid.New(), Role: model.RolePatient}
	_, err := f.svc.UpdateStatus(context.Background(), stranger, f.invoice.ID, &model.UpdateInvoiceStatusRequest{
		Status:        model.InvoiceStatusPaid,
		PaymentMethod: "card",
	})
	assert.Error(t, err)
}

func TestPatientCannotVoid(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.UpdateStatus(context.Background(), f.patientClaims, f.invoice.ID, &model.UpdateInvoiceStatusRequest{
		Status: model.InvoiceStatusVoid,
	})
	assert.Error(t, err)
}

func TestPatientCannotPayTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.UpdateStatus(ctx, f.patientClaims, f.invoice.ID, &model.UpdateInvoiceStatusRequest{
		Status:        model.InvoiceStatusPaid,
		PaymentMethod: "card",
	})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, f.patientClaims, f.invoice.ID, &model.UpdateInvoiceStatusRequest{
		Status:        model.InvoiceStatusPaid,
		PaymentMethod: "cash",
	})
	assert.ErrorIs(t, err, billing.ErrInvalidTransition)
}

func TestDoctorCannotUpdateStatus(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.UpdateStatus(context.Background(), f.doctorClaims, f.invoice.ID, &model.UpdateInvoiceStatusRequest{
		Status:        model.InvoiceStatusPaid,
		PaymentMethod: "cash",
	})
	assert.Error(t, err)
}

func TestAdminVoidsInvoice(t *testing.T) {
	f := newFixture(t)

	inv, err := f.svc.UpdateStatus(context.Background(), f.adminClaims, f.invoice.ID, &model.UpdateInvoiceStatusRequest{
		Status: model.InvoiceStatusVoid,
	})
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceStatusVoid, inv.Status)
	assert.Nil(t, inv.PaidAt)
}

func TestAdminOverrideReopensPaidInvoice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.UpdateStatus(ctx, f.patientClaims, f.invoice.ID, &model.UpdateInvoiceStatusRequest{
		Status:        model.InvoiceStatusPaid,
		PaymentMethod: "card",
	})
	require.NoError(t, err)

	inv, err := f.svc.UpdateStatus(ctx, f.adminClaims, f.invoice.ID, &model.UpdateInvoiceStatusRequest{
		Status: model.InvoiceStatusPending,
	})
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceStatusPending, inv.Status)
	assert.Nil(t, inv.PaidAt, "reopening clears paid_at")
}

func TestUpdateStatusRecomputesTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Corrupt the derived fields in storage; any status write must fix them.
	f.invoice.DiscountAmount = dec("999")
	f.invoice.TotalAmount = dec("1")
	require.NoError(t, f.invoices.Update(ctx, f.invoice))

	inv, err := f.svc.UpdateStatus(ctx, f.adminClaims, f.invoice.ID, &model.UpdateInvoiceStatusRequest{
		Status: model.InvoiceStatusVoid,
	})
	require.NoError(t, err)
	assert.True(t, inv.DiscountAmount.Equal(dec("37.50")))
	assert.True(t, inv.TotalAmount.Equal(dec("739.00")))
}

func TestGetAccessControl(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Get(ctx, f.patientClaims, f.invoice.ID)
	assert.NoError(t, err, "patient sees own invoice")

	_, err = f.svc.Get(ctx, f.doctorClaims, f.invoice.ID)
	assert.NoError(t, err, "assigned doctor sees the invoice")

	stranger := &model.TokenClaims{UserID: uuid.New(), Role: model.RolePatient}
	_, err = f.svc.Get(ctx, stranger, f.invoice.ID)
	assert.Error(t, err)
}

func TestListScopedByRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Unrelated invoice for another doctor/patient pair.
	otherApt := &model.Appointment{
		DoctorID:  uuid.New(),
		PatientID: uuid.New(),
		StartTime: time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC),
		Status:    model.AppointmentStatusCompleted,
	}
	require.NoError(t, f.appointments.Create(ctx, otherApt))
	require.NoError(t, f.invoices.Create(ctx, &model.Invoice{
		AppointmentID:   otherApt.ID,
		ConsultationFee: dec("300"),
		TotalAmount:     dec("300"),
		Status:          model.InvoiceStatusPending,
	}))

	all, err := f.svc.List(ctx, f.adminClaims, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := f.svc.List(ctx, f.patientClaims, nil)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, f.invoice.ID, mine[0].ID)
}
