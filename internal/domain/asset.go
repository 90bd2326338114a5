package domain

import "time"

// AssetStatus tracks the operational state of an asset.
type AssetStatus string

const (
	AssetStatusActive   AssetStatus = "active"
	AssetStatusInRepair AssetStatus = "in_repair"
	AssetStatusRetired  AssetStatus = "retired"
)

// Valid reports whether s is a known asset status.
func (s AssetStatus) Valid() bool {
	switch s {
	case AssetStatusActive, AssetStatusInRepair, AssetStatusRetired:
		return true
	}
	return false
}

// Asset is a piece of hardware or software owned by a company.
type Asset struct {
	ID                  string
	CompanyID           string
	AssetType           string
	Manufacturer        string
	Model               string
	SerialNumber        string
	HostName            string
	Location            string
	Status              AssetStatus
	IPAddress           string
	OperatingSystem     string
	OSVersion           string
	CPU                 string
	RAMGB               string
	Storage             string
	PurchaseDate        string
	PurchaseValue       string
	WarrantyExpiration  string
	SupportProvider     string
	EstimatedLifeMonths *int
	Notes               string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// OwnerCompanyID returns the owning company.
func (a Asset) OwnerCompanyID() string {
	return a.CompanyID
}
