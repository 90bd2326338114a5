package domain

import "time"

// SLAAlertStatus classifies a ticket against its deadline.
type SLAAlertStatus string

const (
	SLAAlertWarning  SLAAlertStatus = "warning"
	SLAAlertBreached SLAAlertStatus = "breached"
)

// SLAAlert is derived from a ticket and its governing contract; it is never stored
// alongside the entities.
type SLAAlert struct {
	TicketID       string         `json:"ticket_id"`
	TicketTitle    string         `json:"ticket_title"`
	CompanyID      string         `json:"company_id"`
	ContractID     string         `json:"contract_id"`
	SLAHours       int            `json:"sla_hours"`
	Deadline       time.Time      `json:"deadline"`
	Status         SLAAlertStatus `json:"status"`
	HoursRemaining *float64       `json:"hours_remaining,omitempty"`
	HoursOverdue   *float64       `json:"hours_overdue,omitempty"`
}

// OwnerCompanyID returns the company of the alerted ticket.
func (a SLAAlert) OwnerCompanyID() string {
	return a.CompanyID
}
