package dto

import (
	"time"

	"github.com/spec-kit/itsm-service/internal/domain"
)

// AssetRequest payload for create and update.
type AssetRequest struct {
	CompanyID           string             `json:"company_id" validate:"required"`
	AssetType           string             `json:"asset_type" validate:"required"`
	Manufacturer        string             `json:"manufacturer"`
	Model               string             `json:"model"`
	SerialNumber        string             `json:"serial_number"`
	HostName            string             `json:"host_name"`
	Location            string             `json:"location"`
	Status              domain.AssetStatus `json:"status" validate:"omitempty,oneof=active in_repair retired"`
	IPAddress           string             `json:"ip_address" validate:"omitempty,ip"`
	OperatingSystem     string             `json:"operating_system"`
	OSVersion           string             `json:"os_version"`
	CPU                 string             `json:"cpu"`
	RAMGB               string             `json:"ram_gb"`
	Storage             string             `json:"storage"`
	PurchaseDate        string             `json:"purchase_date"`
	PurchaseValue       string             `json:"purchase_value"`
	WarrantyExpiration  string             `json:"warranty_expiration"`
	SupportProvider     string             `json:"support_provider"`
	EstimatedLifeMonths *int               `json:"estimated_life_months" validate:"omitempty,min=0"`
	Notes               string             `json:"notes"`
}

// AssetResponse representation.
type AssetResponse struct {
	ID                  string             `json:"id"`
	CompanyID           string             `json:"company_id"`
	AssetType           string             `json:"asset_type"`
	Manufacturer        string             `json:"manufacturer"`
	Model               string             `json:"model"`
	SerialNumber        string             `json:"serial_number"`
	HostName            string             `json:"host_name"`
	Location            string             `json:"location"`
	Status              domain.AssetStatus `json:"status"`
	IPAddress           string             `json:"ip_address"`
	OperatingSystem     string             `json:"operating_system"`
	OSVersion           string             `json:"os_version"`
	CPU                 string             `json:"cpu"`
	RAMGB               string             `json:"ram_gb"`
	Storage             string             `json:"storage"`
	PurchaseDate        string             `json:"purchase_date"`
	PurchaseValue       string             `json:"purchase_value"`
	WarrantyExpiration  string             `json:"warranty_expiration"`
	SupportProvider     string             `json:"support_provider"`
	EstimatedLifeMonths *int               `json:"estimated_life_months"`
	Notes               string             `json:"notes"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// FromAsset maps an asset.
func FromAsset(a *domain.Asset) AssetResponse {
	return AssetResponse{
		ID:                  a.ID,
		CompanyID:           a.CompanyID,
		AssetType:           a.AssetType,
		Manufacturer:        a.Manufacturer,
		Model:               a.Model,
		SerialNumber:        a.SerialNumber,
		HostName:            a.HostName,
		Location:            a.Location,
		Status:              a.Status,
		IPAddress:           a.IPAddress,
		OperatingSystem:     a.OperatingSystem,
		OSVersion:           a.OSVersion,
		CPU:                 a.CPU,
		RAMGB:               a.RAMGB,
		Storage:             a.Storage,
		PurchaseDate:        a.PurchaseDate,
		PurchaseValue:       a.PurchaseValue,
		WarrantyExpiration:  a.WarrantyExpiration,
		SupportProvider:     a.SupportProvider,
		EstimatedLifeMonths: a.EstimatedLifeMonths,
		Notes:               a.Notes,
		CreatedAt:           a.CreatedAt,
		UpdatedAt:           a.UpdatedAt,
	}
}

// FromAssets maps a list of assets.
func FromAssets(items []domain.Asset) []AssetResponse {
	out := make([]AssetResponse, 0, len(items))
	for i := range items {
		out = append(out, FromAsset(&items[i]))
	}
	return out
}
