package prescription

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medisync/hms-api/internal/model"
	"github.com/medisync/hms-api/internal/repository/memory"
)

type fixture struct {
	svc           *Service
	prescriptions *memory.PrescriptionRepository
	appointments  *memory.AppointmentRepository
	doctors       *memory.DoctorRepository
	patients      *memory.PatientRepository
	medicines     *memory.MedicineRepository
	invoices      *memory.InvoiceRepository
	outbox        *memory.OutboxRepository

	doctor      *model.Doctor
	patient     *model.Patient
	appointment *model.Appointment
	paracetamol *model.Medicine
	amoxicillin *model.Medicine

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
		doctors:   memory.NewDoctorRepository(),
		patients:  memory.NewPatientRepository(),
		medicines: memory.NewMedicineRepository(),
		outbox:    memory.NewOutboxRepository(),
	}
	f.prescriptions = memory.NewPrescriptionRepository(f.outbox)
	f.appointments = memory.NewAppointmentRepository(f.outbox)
	f.invoices = memory.NewInvoiceRepository(f.outbox)
	f.svc = NewService(f.prescriptions, f.appointments, f.doctors, f.patients, f.medicines, f.invoices, nil)

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

	f.paracetamol = &model.Medicine{
		Name: "Paracetamol", Category: model.CategoryTablet,
		Price: dec("100"), TaxPercent: dec("12"), IsActive: true,
	}
	require.NoError(t, f.medicines.Create(ctx, f.paracetamol))

	f.amoxicillin = &model.Medicine{
		Name: "Amoxicillin", Category: model.CategoryCapsule,
		Price: dec("50"), TaxPercent: dec("5"), IsActive: true,
	}
	require.NoError(t, f.medicines.Create(ctx, f.amoxicillin))

	require.NoError(t, f.medicines.UpdateSettings(ctx, &model.SystemSettings{DiscountPercent: dec("5")}))

	f.doctorClaims = &model.TokenClaims{UserID: f.doctor.UserID, Role: model.RoleDoctor}
	f.patientClaims = &model.TokenClaims{UserID: f.patient.UserID, Role: model.RolePatient}
	return f
}

func (f *fixture) createRequest() *model.CreatePrescriptionRequest {
	return &model.CreatePrescriptionRequest{
		AppointmentID: f.appointment.ID,
		Diagnosis:     "Viral fever",
		Medicines: []*model.PrescriptionItemRequest{
			{MedicineID: f.paracetamol.ID, Quantity: 2, Dosage: "500mg", Frequency: "twice daily", DurationDays: 5},
			{MedicineID: f.amoxicillin.ID, Quantity: 1, Dosage: "250mg", Frequency: "once daily", DurationDays: 7},
		},
	}
}

func TestCreateSnapshotsCatalogPrices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, f.doctorClaims, f.createRequest())
	require.NoError(t, err)
	require.Len(t, p.Items, 2)

	assert.True(t, p.Items[0].UnitPrice.Equal(dec("100")))
	assert.True(t, p.Items[0].TaxPercent.Equal(dec("12")))
	assert.Equal(t, "Paracetamol", p.Items[0].MedicineName)

	// Repricing or renaming the catalog entry later must not touch the snapshot.
	f.paracetamol.Name = "Paracetamol XR"
	f.paracetamol.Price = dec("999")
	require.NoError(t, f.medicines.Update(ctx, f.paracetamol))

	stored, err := f.prescriptions.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, stored.Items[0].UnitPrice.Equal(dec("100")))
	assert.Equal(t, "Paracetamol", stored.Items[0].MedicineName)
}

func TestCreateGeneratesInvoice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.doctorClaims, f.createRequest())
	require.NoError(t, err)

	inv, err := f.invoices.GetByAppointment(ctx, f.appointment.ID)
	require.NoError(t, err)

	// fee 500 + medicines 250, tax 26.50, 5% discount on 750 = 37.50.
	assert.True(t, inv.ConsultationFee.Equal(dec("500")))
	assert.True(t, inv.MedicineTotal.Equal(dec("250")))
	assert.True(t, inv.Tax.Equal(dec("26.50")))
	assert.True(t, inv.DiscountAmount.Equal(dec("37.50")))
	assert.True(t, inv.TotalAmount.Equal(dec("739.00")))
	assert.Equal(t, model.InvoiceStatusPending, inv.Status)
}

func TestCreateInvoiceGenerationIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.doctorClaims, f.createRequest())
	require.NoError(t, err)

	// A second prescription on the same appointment reuses the invoice.
	_, err = f.svc.Create(ctx, f.doctorClaims, &model.CreatePrescriptionRequest{
		AppointmentID: f.appointment.ID,
		Diagnosis:     "Follow-up",
	})
	require.NoError(t, err)

	invoices, err := f.invoices.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, invoices, 1)
}

func TestCreateDefaultsQuantityAndDuration(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Create(context.Background(), f.doctorClaims, &model.CreatePrescriptionRequest{
		AppointmentID: f.appointment.ID,
		Diagnosis:     "Headache",
		Medicines: []*model.PrescriptionItemRequest{
			{MedicineID: f.paracetamol.ID, Dosage: "500mg", Frequency: "as needed"},
		},
	})
	require.NoError(t, err)
	require.Len(t, p.Items, 1)
	assert.Equal(t, 1, p.Items[0].Quantity)
	assert.Equal(t, 7, p.Items[0].DurationDays)
}

func TestCreateRejectsInactiveMedicine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.paracetamol.IsActive = false
	require.NoError(t, f.medicines.Update(ctx, f.paracetamol))

	_, err := f.svc.Create(ctx, f.doctorClaims, f.createRequest())
	assert.Error(t, err)
}

func TestCreateRejectsOtherDoctorsAppointment(t *testing.T) {
	f := newFixture(t)

	other := &model.TokenClaims{UserID: uuid.New(), Role: model.RoleDoctor}
	_, err := f.svc.Create(context.Background(), other, f.createRequest())
	assert.Error(t, err)
}

func TestCreateRejectsPatientRole(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.patientClaims, f.createRequest())
	assert.Error(t, err)
}

func TestCreateEmitsEvents(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.doctorClaims, f.createRequest())
	require.NoError(t, err)

	types := make(map[string]int)
	for _, evt := range f.outbox.Events() {
		types[evt.EventType]++
	}
	assert.Equal(t, 1, types[model.EventPrescriptionCreated])
	assert.Equal(t, 1, types[model.EventInvoiceCreated])
}

func TestGetAccessControl(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, f.doctorClaims, f.createRequest())
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, f.patientClaims, p.ID)
	assert.NoError(t, err, "patient sees own prescription")

	stranger := &model.TokenClaims{UserID: uuid.New(), Role: model.RolePatient}
	_, err = f.svc.Get(ctx, stranger, p.ID)
	assert.Error(t, err)
}

func TestUpdateOnlyAuthorOrAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, f.doctorClaims, f.createRequest())
	require.NoError(t, err)

	newDiagnosis := "Bacterial infection"
	updated, err := f.svc.Update(ctx, f.doctorClaims, p.ID, &model.UpdatePrescriptionRequest{
		Diagnosis: &newDiagnosis,
	})
	require.NoError(t, err)
	assert.Equal(t, newDiagnosis, updated.Diagnosis)

	other := &model.TokenClaims{UserID: uuid.New(), Role: model.RoleDoctor}
	_, err = f.svc.Update(ctx, other, p.ID, &model.UpdatePrescriptionRequest{Diagnosis: &newDiagnosis})
	assert.Error(t, err)
}
