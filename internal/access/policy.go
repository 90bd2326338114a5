package access

import "github.com/spec-kit/itsm-service/internal/domain"

// Scoped is any record owned by a company.
type Scoped interface {
	OwnerCompanyID() string
}

// Predicate decides whether a record is within a principal's scope.
type Predicate func(entity Scoped) bool

// Policy is the per-role visibility rule.
type Policy interface {
	Role() domain.Role
	Visible(principal domain.Principal, entity Scoped) bool
}

type adminPolicy struct{}

func (adminPolicy) Role() domain.Role { return domain.RoleAdmin }

func (adminPolicy) Visible(domain.Principal, Scoped) bool { return true }

type technicianPolicy struct{}

func (technicianPolicy) Role() domain.Role { return domain.RoleTechnician }

func (technicianPolicy) Visible(domain.Principal, Scoped) bool { return true }

// clientPolicy limits a client to its own company. A client without a company sees
// nothing.
type clientPolicy struct{}

func (clientPolicy) Role() domain.Role { return domain.RoleClient }

func (clientPolicy) Visible(principal domain.Principal, entity Scoped) bool {
	companyID := principal.Company()
	if companyID == "" || entity == nil {
		return false
	}
	return entity.OwnerCompanyID() == companyID
}

// DefaultPolicies returns one policy per known role.
func DefaultPolicies() []Policy {
	return []Policy{adminPolicy{}, technicianPolicy{}, clientPolicy{}}
}
