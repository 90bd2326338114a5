package domain

import "time"

// SystemConfig holds console-wide presentation settings.
type SystemConfig struct {
	CompanyName  string
	CustomFields map[string]any
	UpdatedAt    time.Time
}

// DefaultCompanyName is used until an admin sets one.
const DefaultCompanyName = "ITSM System"
