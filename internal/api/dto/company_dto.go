package dto

import (
	"time"

	"github.com/spec-kit/itsm-service/internal/domain"
)

// CompanyRequest payload for create and update.
type CompanyRequest struct {
	Name          string `json:"name" validate:"required"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email" validate:"omitempty,email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
}

// CompanyResponse representation.
type CompanyResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contact_person"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Address       string    `json:"address"`
	CreatedAt     time.Time `json:"created_at"`
}

// FromCompany maps a company.
func FromCompany(c *domain.Company) CompanyResponse {
	return CompanyResponse{
		ID:            c.ID,
		Name:          c.Name,
		ContactPerson: c.ContactPerson,
		Email:         c.Email,
		Phone:         c.Phone,
		Address:       c.Address,
		CreatedAt:     c.CreatedAt,
	}
}

// FromCompanies maps a list of companies.
func FromCompanies(items []domain.Company) []CompanyResponse {
	out := make([]CompanyResponse, 0, len(items))
	for i := range items {
		out = append(out, FromCompany(&items[i]))
	}
	return out
}
