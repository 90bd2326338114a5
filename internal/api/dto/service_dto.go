package dto

import (
	"time"

	"github.com/spec-kit/itsm-service/internal/domain"
)

// ServiceRequest payload for contracted services.
type ServiceRequest struct {
	CompanyID        string `json:"company_id" validate:"required"`
	ServiceType      string `json:"service_type"`
	Name             string `json:"name" validate:"required"`
	Description      string `json:"description"`
	BillingPeriod    string `json:"billing_period"`
	Cost             string `json:"cost"`
	ExternalProvider string `json:"external_provider"`
	AssociatedDomain string `json:"associated_domain"`
	LicensesQuantity *int   `json:"licenses_quantity" validate:"omitempty,min=0"`
	StartDate        string `json:"start_date"`
	ExpirationDate   string `json:"expiration_date"`
}

// ServiceResponse representation.
type ServiceResponse struct {
	ID               string    `json:"id"`
	CompanyID        string    `json:"company_id"`
	ServiceType      string    `json:"service_type"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	BillingPeriod    string    `json:"billing_period"`
	Cost             string    `json:"cost"`
	ExternalProvider string    `json:"external_provider"`
	AssociatedDomain string    `json:"associated_domain"`
	LicensesQuantity *int      `json:"licenses_quantity"`
	StartDate        string    `json:"start_date"`
	ExpirationDate   string    `json:"expiration_date"`
	CreatedAt        time.Time `json:"created_at"`
}

// FromService maps a service.
func FromService(s *domain.Service) ServiceResponse {
	return ServiceResponse{
		ID:               s.ID,
		CompanyID:        s.CompanyID,
		ServiceType:      s.ServiceType,
		Name:             s.Name,
		Description:      s.Description,
		BillingPeriod:    s.BillingPeriod,
		Cost:             s.Cost,
		ExternalProvider: s.ExternalProvider,
		AssociatedDomain: s.AssociatedDomain,
		LicensesQuantity: s.LicensesQuantity,
		StartDate:        s.StartDate,
		ExpirationDate:   s.ExpirationDate,
		CreatedAt:        s.CreatedAt,
	}
}

// FromServices maps a list of services.
func FromServices(items []domain.Service) []ServiceResponse {
	out := make([]ServiceResponse, 0, len(items))
	for i := range items {
		out = append(out, FromService(&items[i]))
	}
	return out
}
