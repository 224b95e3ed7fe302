package appointment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medisync/hms-api/internal/model"
	"github.com/medisync/hms-api/internal/repository/memory"
	"github.com/medisync/hms-api/internal/scheduling"
)

type fixture struct {
	svc          *Service
	appointments *memory.AppointmentRepository
	doctors      *memory.DoctorRepository
	patients     *memory.PatientRepository
	outbox       *memory.OutboxRepository

	doctor  *model.Doctor
	patient *model.Patient

	adminClaims   *model.TokenClaims
	doctorClaims  *model.TokenClaims
	patientClaims *model.TokenClaims
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		doctors:  memory.NewDoctorRepository(),
		patients: memory.NewPatientRepository(),
		outbox:   memory.NewOutboxRepository(),
	}
	f.appointments = memory.NewAppointmentRepository(f.outbox)
	f.svc = NewService(f.appointments, f.doctors, f.patients, nil)

	f.doctor = &model.Doctor{UserID: uuid.New(), Specialization: "Cardiology"}
	require.NoError(t, f.doctors.Create(ctx, f.doctor))

	f.patient = &model.Patient{UserID: uuid.New()}
	require.NoError(t, f.patients.Create(ctx, f.patient))

	f.adminClaims = &model.TokenClaims{UserID: uuid.New(), Role: model.RoleAdmin}
	f.doctorClaims = &model.TokenClaims{UserID: f.doctor.UserID, Role: model.RoleDoctor}
	f.patientClaims = &model.TokenClaims{UserID: f.patient.UserID, Role: model.RolePatient}
	return f
}

func slot(hour, min int) time.Time {
	return time.Date(2026, 4, 1, hour, min, 0, 0, time.UTC)
}

func (f *fixture) book(t *testing.T, start, end time.Time) *model.Appointment {
	t.Helper()
	apt, err := f.svc.Create(context.Background(), f.patientClaims, &model.CreateAppointmentRequest{
		DoctorID:  f.doctor.ID,
		StartTime: start,
		EndTime:   end,
	})
	require.NoError(t, err)
	return apt
}

func TestCreateResolvesPatientFromToken(t *testing.T) {
	f := newFixture(t)

	apt := f.book(t, slot(10, 0), slot(10, 30))

	assert.Equal(t, f.patient.ID, apt.PatientID)
	assert.Equal(t, model.AppointmentStatusScheduled, apt.Status)

	events := f.outbox.Events()
	require.Len(t, events, 1)
	assert.Equal(t, model.EventAppointmentCreated, events[0].EventType)
}

func TestCreateRejectsDoctorRole(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.doctorClaims, &model.CreateAppointmentRequest{
		DoctorID:  f.doctor.ID,
		StartTime: slot(10, 0),
		EndTime:   slot(10, 30),
	})
	assert.Error(t, err)
}

func TestCreateRejectsUnknownDoctor(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.patientClaims, &model.CreateAppointmentRequest{
		DoctorID:  uuid.New(),
		StartTime: slot(10, 0),
		EndTime:   slot(10, 30),
	})
	assert.Error(t, err)
}

func TestCreateConflict(t *testing.T) {
	f := newFixture(t)
	booked := f.book(t, slot(10, 0), slot(10, 30))

	_, err := f.svc.Create(context.Background(), f.patientClaims, &model.CreateAppointmentRequest{
		DoctorID:  f.doctor.ID,
		StartTime: slot(10, 15),
		EndTime:   slot(10, 45),
	})
	require.Error(t, err)

	var conflict *scheduling.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, booked.ID, conflict.AppointmentID)

	// The rejected booking must not leave a stray lifecycle event behind.
	assert.Len(t, f.outbox.Events(), 1)
}

func TestCreateAllowsBackToBack(t *testing.T) {
	f := newFixture(t)
	f.book(t, slot(10, 0), slot(10, 30))

	apt := f.book(t, slot(10, 30), slot(11, 0))
	assert.NotEqual(t, uuid.Nil, apt.ID)
}

func TestCreateCancelledStillBlocks(t *testing.T) {
	f := newFixture(t)
	booked := f.book(t, slot(10, 0), slot(10, 30))

	_, err := f.svc.UpdateStatus(context.Background(), f.adminClaims, booked.ID, &model.UpdateAppointmentStatusRequest{
		Status: model.AppointmentStatusCancelled,
	})
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), f.patientClaims, &model.CreateAppointmentRequest{
		DoctorID:  f.doctor.ID,
		StartTime: slot(10, 0),
		EndTime:   slot(10, 30),
	})
	assert.Error(t, err)
}

func TestCreateInvalidInterval(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.patientClaims, &model.CreateAppointmentRequest{
		DoctorID:  f.doctor.ID,
		StartTime: slot(10, 30),
		EndTime:   slot(10, 0),
	})
	assert.ErrorIs(t, err, scheduling.ErrInvalidInterval)
}

func TestRescheduleExcludesSelf(t *testing.T) {
	f := newFixture(t)
	booked := f.book(t, slot(10, 0), slot(10, 30))

	// Shifting within its own old window must not conflict with itself.
	start, end := slot(10, 15), slot(10, 45)
	apt, err := f.svc.Reschedule(context.Background(), f.adminClaims, booked.ID, &model.UpdateAppointmentRequest{
		StartTime: &start,
		EndTime:   &end,
	})
	require.NoError(t, err)
	assert.True(t, apt.StartTime.Equal(start))
}

func TestRescheduleConflictsWithOthers(t *testing.T) {
	f := newFixture(t)
	first := f.book(t, slot(10, 0), slot(10, 30))
	f.book(t, slot(11, 0), slot(11, 30))

	start, end := slot(11, 15), slot(11, 45)
	_, err := f.svc.Reschedule(context.Background(), f.adminClaims, first.ID, &model.UpdateAppointmentRequest{
		StartTime: &start,
		EndTime:   &end,
	})

	var conflict *scheduling.ConflictError
	assert.True(t, errors.As(err, &conflict))
}

func TestReschedulePatientForbidden(t *testing.T) {
	f := newFixture(t)
	booked := f.book(t, slot(10, 0), slot(10, 30))

	start := slot(12, 0)
	_, err := f.svc.Reschedule(context.Background(), f.patientClaims, booked.ID, &model.UpdateAppointmentRequest{
		StartTime: &start,
	})
	assert.Error(t, err)
}

func TestUpdateStatusByAssignedDoctor(t *testing.T) {
	f := newFixture(t)
	booked := f.book(t, slot(10, 0), slot(10, 30))

	apt, err := f.svc.UpdateStatus(context.Background(), f.doctorClaims, booked.ID, &model.UpdateAppointmentStatusRequest{
		Status: model.AppointmentStatusCompleted,
	})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, apt.Status)
}

func TestUpdateStatusByOtherDoctorForbidden(t *testing.T) {
	f := newFixture(t)
	booked := f.book(t, slot(10, 0), slot(10, 30))

	other := &model.TokenClaims{UserID: uuid.New(), Role: model.RoleDoctor}
	_, err := f.svc.UpdateStatus(context.Background(), other, booked.ID, &model.UpdateAppointmentStatusRequest{
		Status: model.AppointmentStatusCompleted,
	})
	assert.Error(t, err)
}

func TestListScopedByRole(t *testing.T) {
	f := newFixture(t)
	f.book(t, slot(10, 0), slot(10, 30))

	// Second doctor with their own appointment.
	ctx := context.Background()
	otherDoctor := &model.Doctor{UserID: uuid.New()}
	require.NoError(t, f.doctors.Create(ctx, otherDoctor))
	require.NoError(t, f.appointments.Create(ctx, &model.Appointment{
		DoctorID:  otherDoctor.ID,
		PatientID: uuid.New(),
		StartTime: slot(14, 0),
		EndTime:   slot(14, 30),
		Status:    model.AppointmentStatusScheduled,
	}))

	all, err := f.svc.List(ctx, f.adminClaims, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := f.svc.List(ctx, f.doctorClaims, nil)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, f.doctor.ID, mine[0].DoctorID)

	patientVisible, err := f.svc.List(ctx, f.patientClaims, nil)
	require.NoError(t, err)
	require.Len(t, patientVisible, 1)
	assert.Equal(t, f.patient.ID, patientVisible[0].PatientID)
}

type recordingCache struct {
	invalidations int
}

func (c *recordingCache) InvalidateDashboard() { c.invalidations++ }

func TestWritesInvalidateDashboard(t *testing.T) {
	f := newFixture(t)
	cache := &recordingCache{}
	f.svc = NewService(f.appointments, f.doctors, f.patients, cache)

	booked := f.book(t, slot(10, 0), slot(10, 30))
	assert.Equal(t, 1, cache.invalidations)

	_, err := f.svc.UpdateStatus(context.Background(), f.adminClaims, booked.ID, &model.UpdateAppointmentStatusRequest{
		Status: model.AppointmentStatusCompleted,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, cache.invalidations)
}

func TestGetAccessControl(t *testing.T) {
	f := newFixture(t)
	booked := f.book(t, slot(10, 0), slot(10, 30))

	_, err := f.svc.Get(context.Background(), f.patientClaims, booked.ID)
	assert.NoError(t, err)

	stranger := &model.TokenClaims{UserID: uuid.New(), Role: model.RolePatient}
	_, err = f.svc.Get(context.Background(), stranger, booked.ID)
	assert.Error(t, err)
}
