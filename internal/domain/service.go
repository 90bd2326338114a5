package domain

import "time"

// Service is a contracted or catalog service delivered to a company.
type Service struct {
	ID               string
	CompanyID        string
	ServiceType      string
	Name             string
	Description      string
	BillingPeriod    string
	Cost             string
	ExternalProvider string
	AssociatedDomain string
	LicensesQuantity *int
	StartDate        string
	ExpirationDate   string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// OwnerCompanyID returns the owning company.
func (s Service) OwnerCompanyID() string {
	return s.CompanyID
}
