package dto

import (
	"time"

	"github.com/spec-kit/itsm-service/internal/domain"
)

// SystemConfigRequest payload; omitted fields are unchanged.
type SystemConfigRequest struct {
	CompanyName  *string        `json:"company_name" validate:"omitempty,min=1"`
	CustomFields map[string]any `json:"custom_fields"`
}

// SystemConfigResponse representation.
type SystemConfigResponse struct {
	CompanyName  string         `json:"company_name"`
	CustomFields map[string]any `json:"custom_fields"`
	UpdatedAt    *time.Time     `json:"updated_at"`
}

// FromSystemConfig maps system settings.
func FromSystemConfig(c *domain.SystemConfig) SystemConfigResponse {
	resp := SystemConfigResponse{CompanyName: c.CompanyName, CustomFields: c.CustomFields}
	if resp.CustomFields == nil {
		resp.CustomFields = map[string]any{}
	}
	if !c.UpdatedAt.IsZero() {
		updated := c.UpdatedAt
		resp.UpdatedAt = &updated
	}
	return resp
}
