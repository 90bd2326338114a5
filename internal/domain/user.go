package domain

import "time"

// Role enumerates principal roles.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleTechnician Role = "technician"
	RoleClient     Role = "client"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTechnician, RoleClient:
		return true
	}
	return false
}

// User is an operator or client account.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CompanyID    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// OwnerCompanyID returns the company the user belongs to, or "" when unbound.
func (u User) OwnerCompanyID() string {
	if u.CompanyID == nil {
		return ""
	}
	return *u.CompanyID
}
