package domain

import "time"

// ContractStatus enumerates contract lifecycle states.
type ContractStatus string

const (
	ContractStatusActive    ContractStatus = "active"
	ContractStatusExpired   ContractStatus = "expired"
	ContractStatusCancelled ContractStatus = "cancelled"
)

// Valid reports whether s is a known contract status.
func (s ContractStatus) Valid() bool {
	switch s {
	case ContractStatusActive, ContractStatusExpired, ContractStatusCancelled:
		return true
	}
	return false
}

// Contract binds a service delivered to a company to an SLA response time.
// StartDate and EndDate are calendar days; a zero value leaves that side open.
type Contract struct {
	ID        string
	CompanyID string
	ServiceID string
	StartDate time.Time
	EndDate   time.Time
	SLAHours  int
	Terms     string
	Status    ContractStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OwnerCompanyID returns the owning company.
func (c Contract) OwnerCompanyID() string {
	return c.CompanyID
}

// Covers reports whether t falls inside the contract's date range. The end date is
// inclusive through the end of that day.
func (c Contract) Covers(t time.Time) bool {
	if !c.StartDate.IsZero() && t.Before(c.StartDate) {
		return false
	}
	if !c.EndDate.IsZero() && !t.Before(c.EndDate.AddDate(0, 0, 1)) {
		return false
	}
	return true
}
