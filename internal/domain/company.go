package domain

import "time"

// Company is a client organisation. Assets, services, contracts and tickets hang off it.
type Company struct {
	ID            string
	Name          string
	ContactPerson string
	Email         string
	Phone         string
	Address       string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OwnerCompanyID returns the company's own id.
func (c Company) OwnerCompanyID() string {
	return c.ID
}
