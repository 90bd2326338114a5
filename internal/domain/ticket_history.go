package domain

import "time"

// TicketChangeType captures what changed in a history entry.
type TicketChangeType string

const (
	ChangeTypeStatus   TicketChangeType = "status_change"
	ChangeTypeAssignee TicketChangeType = "assignment_change"
)

// TicketHistory is an immutable audit trail entry written alongside a ticket mutation.
type TicketHistory struct {
	ID         string
	TicketID   string
	ActorID    string
	ActorRole  Role
	ChangeType TicketChangeType
	OldValue   map[string]any
	NewValue   map[string]any
	CreatedAt  time.Time
}
