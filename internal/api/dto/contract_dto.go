package dto

import (
	"time"

	"github.com/spec-kit/itsm-service/internal/domain"
)

// ContractRequest payload. Dates use YYYY-MM-DD.
type ContractRequest struct {
	CompanyID string                `json:"company_id" validate:"required"`
	ServiceID string                `json:"service_id" validate:"required"`
	StartDate string                `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string                `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	SLAHours  int                   `json:"sla_hours" validate:"gt=0"`
	Terms     string                `json:"terms"`
	Status    domain.ContractStatus `json:"status" validate:"omitempty,oneof=active expired cancelled"`
}

// ContractResponse representation.
type ContractResponse struct {
	ID        string                `json:"id"`
	CompanyID string                `json:"company_id"`
	ServiceID string                `json:"service_id"`
	StartDate *string               `json:"start_date"`
	EndDate   *string               `json:"end_date"`
	SLAHours  int                   `json:"sla_hours"`
	Terms     string                `json:"terms"`
	Status    domain.ContractStatus `json:"status"`
	CreatedAt time.Time             `json:"created_at"`
}

// FromContract maps a contract.
func FromContract(c *domain.Contract) ContractResponse {
	return ContractResponse{
		ID:        c.ID,
		CompanyID: c.CompanyID,
		ServiceID: c.ServiceID,
		StartDate: formatDay(c.StartDate),
		EndDate:   formatDay(c.EndDate),
		SLAHours:  c.SLAHours,
		Terms:     c.Terms,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
	}
}

// FromContracts maps a list of contracts.
func FromContracts(items []domain.Contract) []ContractResponse {
	out := make([]ContractResponse, 0, len(items))
	for i := range items {
		out = append(out, FromContract(&items[i]))
	}
	return out
}

// ParseDay parses YYYY-MM-DD as midnight UTC. Empty yields the zero time.
func ParseDay(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(time.DateOnly, v, time.UTC)
}

func formatDay(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.Format(time.DateOnly)
	return &s
}
