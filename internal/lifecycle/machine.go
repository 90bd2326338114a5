package lifecycle

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/itsm-service/internal/access"
	"github.com/spec-kit/itsm-service/internal/domain"
	apperrors "github.com/spec-kit/itsm-service/pkg/util"
)

// Authorizer is the access check the machine runs before touching a ticket.
type Authorizer interface {
	Authorize(principal domain.Principal, entity access.EntityType, action access.Action, target access.Scoped) error
}

// Machine applies status and assignment changes to tickets. Every defined status is
// reachable from every other one; only the actor's rights and the target value are
// checked. It never persists anything: callers store the returned ticket and history
// entry together.
type Machine struct {
	authz Authorizer
	newID func() string
}

// NewMachine constructs a machine.
func NewMachine(authz Authorizer) *Machine {
	return &Machine{authz: authz, newID: uuid.NewString}
}

// Transition moves ticket to status. The returned history entry is nil when the ticket
// already has that status. The input ticket is not modified.
func (m *Machine) Transition(ticket domain.Ticket, status domain.TicketStatus, actor domain.Principal, at time.Time) (domain.Ticket, *domain.TicketHistory, error) {
	if err := m.authz.Authorize(actor, access.EntityTicket, access.ActionTransition, ticket); err != nil {
		return ticket, nil, err
	}
	if !status.Valid() {
		return ticket, nil, apperrors.NewInvalidTransition(string(status))
	}
	if ticket.Status == status {
		return ticket, nil, nil
	}

	previous := ticket.Status
	updated := ticket
	updated.Status = status
	updated.UpdatedAt = at
	if status.Pending() {
		updated.ResolvedAt = nil
	} else if ticket.ResolvedAt == nil || ticket.Status.Pending() {
		resolvedAt := at
		updated.ResolvedAt = &resolvedAt
	}

	entry := &domain.TicketHistory{
		ID:         m.newID(),
		TicketID:   ticket.ID,
		ActorID:    actor.UserID,
		ActorRole:  actor.Role,
		ChangeType: domain.ChangeTypeStatus,
		OldValue:   map[string]any{"status": string(previous)},
		NewValue:   map[string]any{"status": string(status)},
		CreatedAt:  at,
	}
	return updated, entry, nil
}

// Assign sets or clears (technicianID == nil) the ticket's assignee.
func (m *Machine) Assign(ticket domain.Ticket, technicianID *string, actor domain.Principal, at time.Time) (domain.Ticket, *domain.TicketHistory, error) {
	if err := m.authz.Authorize(actor, access.EntityTicket, access.ActionAssign, ticket); err != nil {
		return ticket, nil, err
	}
	if sameAssignee(ticket.AssignedTo, technicianID) {
		return ticket, nil, nil
	}

	updated := ticket
	updated.UpdatedAt = at
	updated.AssignedTo = nil
	if technicianID != nil {
		id := *technicianID
		updated.AssignedTo = &id
	}

	entry := &domain.TicketHistory{
		ID:         m.newID(),
		TicketID:   ticket.ID,
		ActorID:    actor.UserID,
		ActorRole:  actor.Role,
		ChangeType: domain.ChangeTypeAssignee,
		OldValue:   map[string]any{"assigned_to": assigneeValue(ticket.AssignedTo)},
		NewValue:   map[string]any{"assigned_to": assigneeValue(technicianID)},
		CreatedAt:  at,
	}
	return updated, entry, nil
}

func sameAssignee(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func assigneeValue(id *string) any {
	if id == nil {
		return nil
	}
	return *id
}
