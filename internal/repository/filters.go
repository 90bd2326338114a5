package repository

import (
	"fmt"
	"strings"

	"github.com/spec-kit/itsm-service/internal/domain"
)

// UserFilter narrows user listings.
type UserFilter struct {
	Role      *domain.Role
	CompanyID *string
	Page
}

func (f UserFilter) matches(u domain.User) bool {
	if f.Role != nil && u.Role != *f.Role {
		return false
	}
	if f.CompanyID != nil && u.OwnerCompanyID() != *f.CompanyID {
		return false
	}
	return true
}

// AssetFilter narrows asset listings.
type AssetFilter struct {
	CompanyID *string
	Status    *domain.AssetStatus
	AssetType *string
	Page
}

func (f AssetFilter) matches(a domain.Asset) bool {
	if f.CompanyID != nil && a.CompanyID != *f.CompanyID {
		return false
	}
	if f.Status != nil && a.Status != *f.Status {
		return false
	}
	if f.AssetType != nil && a.AssetType != *f.AssetType {
		return false
	}
	return true
}

// ServiceFilter narrows service listings.
type ServiceFilter struct {
	CompanyID *string
	Page
}

func (f ServiceFilter) matches(s domain.Service) bool {
	return f.CompanyID == nil || s.CompanyID == *f.CompanyID
}

// ContractFilter narrows contract listings.
type ContractFilter struct {
	CompanyID *string
	ServiceID *string
	Status    *domain.ContractStatus
	Page
}

func (f ContractFilter) matches(c domain.Contract) bool {
	if f.CompanyID != nil && c.CompanyID != *f.CompanyID {
		return false
	}
	if f.ServiceID != nil && c.ServiceID != *f.ServiceID {
		return false
	}
	if f.Status != nil && c.Status != *f.Status {
		return false
	}
	return true
}

// TicketFilter narrows ticket listings. Unassigned takes precedence over AssignedTo.
type TicketFilter struct {
	CompanyID  *string
	Statuses   []domain.TicketStatus
	Category   *domain.TicketCategory
	Priority   *domain.TicketPriority
	AssetID    *string
	ServiceID  *string
	AssignedTo *string
	Unassigned bool
	Page
}

func (f TicketFilter) matches(t domain.Ticket) bool {
	if f.CompanyID != nil && t.CompanyID != *f.CompanyID {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if t.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Category != nil && t.Category != *f.Category {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if f.AssetID != nil && (t.AssetID == nil || *t.AssetID != *f.AssetID) {
		return false
	}
	if f.ServiceID != nil && (t.ServiceID == nil || *t.ServiceID != *f.ServiceID) {
		return false
	}
	if f.Unassigned {
		return t.AssignedTo == nil
	}
	if f.AssignedTo != nil && (t.AssignedTo == nil || *t.AssignedTo != *f.AssignedTo) {
		return false
	}
	return true
}

// whereBuilder accumulates positional SQL predicates.
type whereBuilder struct {
	clauses []string
	args    []any
}

func (w *whereBuilder) eq(column string, value any) {
	w.args = append(w.args, value)
	w.clauses = append(w.clauses, fmt.Sprintf("%s=$%d", column, len(w.args)))
}

func (w *whereBuilder) in(column string, values []any) {
	if len(values) == 0 {
		return
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		w.args = append(w.args, v)
		placeholders[i] = fmt.Sprintf("$%d", len(w.args))
	}
	w.clauses = append(w.clauses, fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ",")))
}

func (w *whereBuilder) raw(clause string) {
	w.clauses = append(w.clauses, clause)
}

func (w *whereBuilder) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}
