package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketStatuses lists every defined status.
var TicketStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusInProgress,
	TicketStatusResolved,
	TicketStatusClosed,
}

// Valid reports whether s is one of the defined statuses.
func (s TicketStatus) Valid() bool {
	for _, candidate := range TicketStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Pending reports whether the ticket is still awaiting resolution and therefore
// subject to SLA tracking.
func (s TicketStatus) Pending() bool {
	return s == TicketStatusOpen || s == TicketStatusInProgress
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "low"
	TicketPriorityMedium   TicketPriority = "medium"
	TicketPriorityHigh     TicketPriority = "high"
	TicketPriorityCritical TicketPriority = "critical"
)

// TicketCategory classifies the request.
type TicketCategory string

const (
	TicketCategoryIncident    TicketCategory = "incident"
	TicketCategoryRequest     TicketCategory = "request"
	TicketCategoryMaintenance TicketCategory = "maintenance"
)

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID              string
	CompanyID       string
	AssetID         *string
	ServiceID       *string
	Title           string
	Description     string
	Category        TicketCategory
	Priority        TicketPriority
	Status          TicketStatus
	AssignedTo      *string
	Requester       string
	CreatedBy       string
	MaintenanceLog  string
	FinalResolution string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ResolvedAt      *time.Time
}

// OwnerCompanyID returns the owning company.
func (t Ticket) OwnerCompanyID() string {
	return t.CompanyID
}
