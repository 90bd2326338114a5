package sla

import (
	"math"
	"sort"
	"time"

	"github.com/spec-kit/itsm-service/internal/domain"
)

// Thresholds controls when a pending ticket is flagged as at risk.
type Thresholds struct {
	WarningFraction float64
	WarningMinHours float64
}

// DefaultThresholds warns at 20% of the SLA window or 2 hours, whichever is larger.
func DefaultThresholds() Thresholds {
	return Thresholds{WarningFraction: 0.2, WarningMinHours: 2}
}

// Window returns the warning window for a contract of slaHours.
func (t Thresholds) Window(slaHours int) time.Duration {
	hours := math.Max(t.WarningFraction*float64(slaHours), t.WarningMinHours)
	return time.Duration(hours * float64(time.Hour))
}

// Evaluator classifies pending tickets against their deadlines. It holds no state
// between calls and is safe for concurrent use.
type Evaluator struct {
	thresholds Thresholds
}

// NewEvaluator builds an evaluator. Negative values fall back to the defaults.
func NewEvaluator(t Thresholds) *Evaluator {
	def := DefaultThresholds()
	if t.WarningFraction < 0 {
		t.WarningFraction = def.WarningFraction
	}
	if t.WarningMinHours < 0 {
		t.WarningMinHours = def.WarningMinHours
	}
	return &Evaluator{thresholds: t}
}

// Thresholds returns the evaluator's configuration.
func (e *Evaluator) Thresholds() Thresholds {
	return e.thresholds
}

// Evaluate returns the alerts for tickets at now: breached first by hours overdue
// descending, then warnings by hours remaining ascending, ties broken by ticket id.
// Tickets that are not pending or have no governing contract are omitted.
func (e *Evaluator) Evaluate(now time.Time, tickets []domain.Ticket, contracts []domain.Contract) []domain.SLAAlert {
	byCompany := make(map[string][]domain.Contract)
	for _, c := range contracts {
		byCompany[c.CompanyID] = append(byCompany[c.CompanyID], c)
	}

	alerts := make([]domain.SLAAlert, 0)
	for _, ticket := range tickets {
		if alert, ok := e.Classify(now, ticket, byCompany[ticket.CompanyID]); ok {
			alerts = append(alerts, alert)
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return less(alerts[i], alerts[j])
	})
	return alerts
}

// Classify evaluates a single ticket.
func (e *Evaluator) Classify(now time.Time, ticket domain.Ticket, contracts []domain.Contract) (domain.SLAAlert, bool) {
	if !ticket.Status.Pending() {
		return domain.SLAAlert{}, false
	}
	deadline, contract, ok := Deadline(ticket, contracts)
	if !ok {
		return domain.SLAAlert{}, false
	}

	alert := domain.SLAAlert{
		TicketID:    ticket.ID,
		TicketTitle: ticket.Title,
		CompanyID:   ticket.CompanyID,
		ContractID:  contract.ID,
		SLAHours:    contract.SLAHours,
		Deadline:    deadline,
	}

	remaining := deadline.Sub(now)
	switch {
	case remaining < 0:
		overdue := -remaining.Hours()
		alert.Status = domain.SLAAlertBreached
		alert.HoursOverdue = &overdue
	case remaining <= e.thresholds.Window(contract.SLAHours):
		left := remaining.Hours()
		alert.Status = domain.SLAAlertWarning
		alert.HoursRemaining = &left
	default:
		return domain.SLAAlert{}, false
	}
	return alert, true
}

func less(a, b domain.SLAAlert) bool {
	if a.Status != b.Status {
		return a.Status == domain.SLAAlertBreached
	}
	if a.Status == domain.SLAAlertBreached {
		if *a.HoursOverdue != *b.HoursOverdue {
			return *a.HoursOverdue > *b.HoursOverdue
		}
	} else if *a.HoursRemaining != *b.HoursRemaining {
		return *a.HoursRemaining < *b.HoursRemaining
	}
	return a.TicketID < b.TicketID
}

// Count splits alerts into warnings and breaches.
func Count(alerts []domain.SLAAlert) (warnings, breaches int) {
	for _, a := range alerts {
		switch a.Status {
		case domain.SLAAlertWarning:
			warnings++
		case domain.SLAAlertBreached:
			breaches++
		}
	}
	return warnings, breaches
}
