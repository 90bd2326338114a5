package sla

import (
	"time"

	"github.com/spec-kit/itsm-service/internal/domain"
)

// Governs reports whether contract can set the deadline for ticket: same company, same
// service when the ticket names one, active, positive SLA hours and a date range that
// contains the ticket's creation time.
func Governs(contract domain.Contract, ticket domain.Ticket) bool {
	if contract.CompanyID != ticket.CompanyID {
		return false
	}
	if ticket.ServiceID != nil && *ticket.ServiceID != "" && contract.ServiceID != *ticket.ServiceID {
		return false
	}
	if contract.Status != domain.ContractStatusActive || contract.SLAHours <= 0 {
		return false
	}
	return contract.Covers(ticket.CreatedAt)
}

// ResolveContract picks the governing contract for ticket. When several qualify the one
// ending first wins, then the one starting last, then the lowest id. Open-ended dates
// sort as the far future (end) or the far past (start).
func ResolveContract(ticket domain.Ticket, contracts []domain.Contract) (*domain.Contract, bool) {
	var best *domain.Contract
	for i := range contracts {
		c := &contracts[i]
		if !Governs(*c, ticket) {
			continue
		}
		if best == nil || preferred(c, best) {
			best = c
		}
	}
	if best == nil {
		return nil, false
	}
	chosen := *best
	return &chosen, true
}

func preferred(a, b *domain.Contract) bool {
	if !sameInstant(a.EndDate, b.EndDate) {
		switch {
		case a.EndDate.IsZero():
			return false
		case b.EndDate.IsZero():
			return true
		default:
			return a.EndDate.Before(b.EndDate)
		}
	}
	if !sameInstant(a.StartDate, b.StartDate) {
		return a.StartDate.After(b.StartDate)
	}
	return a.ID < b.ID
}

func sameInstant(a, b time.Time) bool {
	if a.IsZero() || b.IsZero() {
		return a.IsZero() == b.IsZero()
	}
	return a.Equal(b)
}

// DeadlineFor returns created_at plus the contract's SLA hours as a plain duration.
func DeadlineFor(ticket domain.Ticket, contract domain.Contract) time.Time {
	return ticket.CreatedAt.Add(time.Duration(contract.SLAHours) * time.Hour)
}

// Deadline resolves the contract and computes the due time. ok is false when no
// contract governs the ticket, which is not an error.
func Deadline(ticket domain.Ticket, contracts []domain.Contract) (time.Time, *domain.Contract, bool) {
	contract, ok := ResolveContract(ticket, contracts)
	if !ok {
		return time.Time{}, nil, false
	}
	return DeadlineFor(ticket, *contract), contract, true
}
