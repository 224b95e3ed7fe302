package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/medisync/hms-api/internal/model"
)

func TestCan(t *testing.T) {
	tests := []struct {
		role    model.Role
		action  Action
		allowed bool
	}{
		{model.RoleAdmin, ActionManageUsers, true},
		{model.RoleDoctor, ActionManageUsers, false},
		{model.RolePatient, ActionManageUsers, false},

		{model.RolePatient, ActionCreateAppointment, true},
		{model.RoleAdmin, ActionCreateAppointment, true},
		{model.RoleDoctor, ActionCreateAppointment, false},

		{model.RoleDoctor, ActionUpdateAppointment, true},
		{model.RolePatient, ActionUpdateAppointment, false},

		{model.RoleDoctor, ActionCreatePrescription, true},
		{model.RolePatient, ActionCreatePrescription, false},

		{model.RolePatient, ActionPayInvoice, true},
		{model.RoleDoctor, ActionPayInvoice, false},
		{model.RoleAdmin, ActionOverrideInvoice, true},
		{model.RolePatient, ActionOverrideInvoice, false},

		{model.RoleAdmin, ActionViewDashboard, true},
		{model.RoleDoctor, ActionViewDashboard, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, Can(tt.role, tt.action),
			"role %s action %s", tt.role, tt.action)
	}
}

func TestCanUnknownAction(t *testing.T) {
	assert.False(t, Can(model.RoleAdmin, Action("nonexistent")))
}

func TestIsAdmin(t *testing.T) {
	assert.True(t, IsAdmin(model.RoleAdmin))
	assert.False(t, IsAdmin(model.RoleDoctor))
	assert.False(t, IsAdmin(model.RolePatient))
}
