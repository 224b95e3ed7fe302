package analytics

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

func seed(t *testing.T) (*Service, *memory.InvoiceRepository) {
	t.Helper()
	ctx := context.Background()

	users := memory.NewUserRepository()
	appointments := memory.NewAppointmentRepository(nil)
	invoices := memory.NewInvoiceRepository(nil)

	require.NoError(t, users.Create(ctx, &model.User{Email: "a@x.test", Role: model.RoleAdmin}))
	require.NoError(t, users.Create(ctx, &model.User{Email: "d@x.test", Role: model.RoleDoctor}))
	require.NoError(t, users.Create(ctx, &model.User{Email: "p1@x.test", Role: model.RolePatient}))
	require.NoError(t, users.Create(ctx, &model.User{Email: "p2@x.test", Role: model.RolePatient}))

	require.NoError(t, appointments.Create(ctx, &model.Appointment{
		DoctorID: uuid.New(), PatientID: uuid.New(), Status: model.AppointmentStatusCompleted,
	}))
	require.NoError(t, appointments.Create(ctx, &model.Appointment{
		DoctorID: uuid.New(), PatientID: uuid.New(), Status: model.AppointmentStatusScheduled,
	}))

	require.NoError(t, invoices.Create(ctx, &model.Invoice{
		AppointmentID: uuid.New(),
		TotalAmount:   decimal.NewFromInt(739),
		Status:        model.InvoiceStatusPaid,
	}))
	require.NoError(t, invoices.Create(ctx, &model.Invoice{
		AppointmentID: uuid.New(),
		TotalAmount:   decimal.NewFromInt(300),
		Status:        model.InvoiceStatusPending,
	}))

	return NewService(users, appointments, invoices, time.Minute), invoices
}

func admin() *model.TokenClaims {
	return &model.TokenClaims{UserID: uuid.New(), Role: model.RoleAdmin}
}

func TestDashboardAggregates(t *testing.T) {
	svc, _ := seed(t)

	overview, err := svc.Dashboard(context.Background(), admin())
	require.NoError(t, err)

	assert.Equal(t, 2, overview.UsersByRole[string(model.RolePatient)])
	assert.Equal(t, 1, overview.UsersByRole[string(model.RoleDoctor)])
	assert.Equal(t, 1, overview.AppointmentsByStatus[string(model.AppointmentStatusCompleted)])
	assert.Equal(t, 2, overview.TotalInvoices)
	assert.Equal(t, 1, overview.PaidCount)
	assert.Equal(t, 1, overview.PendingCount)
	assert.True(t, overview.RevenuePaidTotal.Equal(decimal.NewFromInt(739)))
	assert.True(t, overview.PendingAmount.Equal(decimal.NewFromInt(300)))
}

func TestDashboardAdminOnly(t *testing.T) {
	svc, _ := seed(t)

	for _, role := range []model.Role{model.RoleDoctor, model.RolePatient} {
		_, err := svc.Dashboard(context.Background(), &model.TokenClaims{UserID: uuid.New(), Role: role})
		assert.Error(t, err, "role %s", role)
	}
}

func TestDashboardCachesUntilInvalidated(t *testing.T) {
	svc, invoices := seed(t)
	ctx := context.Background()

	first, err := svc.Dashboard(ctx, admin())
	require.NoError(t, err)
	assert.Equal(t, 2, first.TotalInvoices)

	require.NoError(t, invoices.Create(ctx, &model.Invoice{
		AppointmentID: uuid.New(),
		TotalAmount:   decimal.NewFromInt(100),
		Status:        model.InvoiceStatusPending,
	}))

	cached, err := svc.Dashboard(ctx, admin())
	require.NoError(t, err)
	assert.Equal(t, 2, cached.TotalInvoices, "stale until invalidated")

	svc.InvalidateDashboard()

	fresh, err := svc.Dashboard(ctx, admin())
	require.NoError(t, err)
	assert.Equal(t, 3, fresh.TotalInvoices)
}
