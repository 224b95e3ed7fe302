// Package authz centralizes role/action decisions so handlers never branch
// on roles inline.
package authz

import "github.com/medisync/hms-api/internal/model"

type Action string

const (
	ActionManageUsers        Action = "users:manage"
	ActionManageDoctors      Action = "doctors:manage"
	ActionManagePatients     Action = "patients:manage"
	ActionCreateAppointment  Action = "appointments:create"
	ActionUpdateAppointment  Action = "appointments:update_status"
	ActionManageMedicines    Action = "medicines:manage"
	ActionManageSettings     Action = "settings:manage"
	ActionCreatePrescription Action = "prescriptions:create"
	ActionCreateInvoice      Action = "invoices:create"
	ActionOverrideInvoice    Action = "invoices:override"
	ActionPayInvoice         Action = "invoices:pay"
	ActionViewDashboard      Action = "analytics:view"
)

var policy = map[Action][]model.Role{
	ActionManageUsers:        {model.RoleAdmin},
	ActionManageDoctors:      {model.RoleAdmin},
	ActionManagePatients:     {model.RoleAdmin},
	ActionCreateAppointment:  {model.RoleAdmin, model.RolePatient},
	ActionUpdateAppointment:  {model.RoleAdmin, model.RoleDoctor},
	ActionManageMedicines:    {model.RoleAdmin},
	ActionManageSettings:     {model.RoleAdmin},
	ActionCreatePrescription: {model.RoleAdmin, model.RoleDoctor},
	ActionCreateInvoice:      {model.RoleAdmin},
	ActionOverrideInvoice:    {model.RoleAdmin},
	ActionPayInvoice:         {model.RoleAdmin, model.RolePatient},
	ActionViewDashboard:      {model.RoleAdmin},
}

// Can reports whether the role may perform the action at all. Ownership
// checks (own appointment, own invoice) are layered on top by the services.
func Can(role model.Role, action Action) bool {
	for _, allowed := range policy[action] {
		if allowed == role {
			return true
		}
	}
	return false
}

// IsAdmin is a convenience for the override paths.
func IsAdmin(role model.Role) bool {
	return role == model.RoleAdmin
}
