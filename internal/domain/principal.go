package domain

// Principal is the authenticated actor of a request. It is passed explicitly into every
// scope, transition and service call.
type Principal struct {
	UserID    string
	Name      string
	Email     string
	Role      Role
	CompanyID *string
}

// PrincipalFromUser builds the request principal for a loaded user.
func PrincipalFromUser(u *User) Principal {
	p := Principal{
		UserID: u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
	}
	if u.CompanyID != nil && *u.CompanyID != "" {
		companyID := *u.CompanyID
		p.CompanyID = &companyID
	}
	return p
}

// Company returns the bound company id, or "" when the principal has none.
func (p Principal) Company() string {
	if p.CompanyID == nil {
		return ""
	}
	return *p.CompanyID
}
