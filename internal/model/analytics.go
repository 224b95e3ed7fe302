package model

import "github.com/shopspring/decimal"

// DashboardOverview is the admin analytics payload.
type DashboardOverview struct {
	UsersByRole          map[string]int  `json:"users_by_role"`
	AppointmentsByStatus map[string]int  `json:"appointments_by_status"`
	RevenuePaidTotal     decimal.Decimal `json:"revenue_paid_total"`
	TotalInvoices        int             `json:"total_invoices"`
	PaidCount            int             `json:"paid_count"`
	PendingCount         int             `json:"pending_count"`
	PendingAmount        decimal.Decimal `json:"pending_amount"`
}
