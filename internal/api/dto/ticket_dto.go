package dto

import (
	"time"

	"github.com/spec-kit/itsm-service/internal/domain"
)

// CreateTicketRequest payload. company_id may be omitted by clients.
type CreateTicketRequest struct {
	CompanyID       string                `json:"company_id"`
	AssetID         *string               `json:"asset_id"`
	ServiceID       *string               `json:"service_id"`
	Title           string                `json:"title" validate:"required"`
	Description     string                `json:"description"`
	Category        domain.TicketCategory `json:"category" validate:"omitempty,oneof=incident request maintenance"`
	Priority        domain.TicketPriority `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	Requester       string                `json:"requester"`
	AssignedTo      *string               `json:"assigned_to"`
	MaintenanceLog  string                `json:"maintenance_log"`
	FinalResolution string                `json:"final_resolution"`
}

// UpdateTicketRequest changes descriptive fields only.
type UpdateTicketRequest struct {
	AssetID         *string                `json:"asset_id"`
	ServiceID       *string                `json:"service_id"`
	Title           *string                `json:"title" validate:"omitempty,min=1"`
	Description     *string                `json:"description"`
	Category        *domain.TicketCategory `json:"category" validate:"omitempty,oneof=incident request maintenance"`
	Priority        *domain.TicketPriority `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	Requester       *string                `json:"requester"`
	MaintenanceLog  *string                `json:"maintenance_log"`
	FinalResolution *string                `json:"final_resolution"`
}

// StatusRequest moves a ticket through its lifecycle. Unknown or empty statuses are
// rejected by the state machine, not here.
type StatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// AssignRequest sets or clears the assignee.
type AssignRequest struct {
	TechnicianID *string `json:"technician_id"`
}

// NoteRequest payload.
type NoteRequest struct {
	Note string `json:"note" validate:"required"`
}

// TicketResponse representation.
type TicketResponse struct {
	ID              string                `json:"id"`
	CompanyID       string                `json:"company_id"`
	AssetID         *string               `json:"asset_id"`
	ServiceID       *string               `json:"service_id"`
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	Category        domain.TicketCategory `json:"category"`
	Priority        domain.TicketPriority `json:"priority"`
	Status          domain.TicketStatus   `json:"status"`
	AssignedTo      *string               `json:"assigned_to"`
	Requester       string                `json:"requester"`
	CreatedBy       string                `json:"created_by"`
	MaintenanceLog  string                `json:"maintenance_log"`
	FinalResolution string                `json:"final_resolution"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
	ResolvedAt      *time.Time            `json:"resolved_at"`
}

// TicketHistoryResponse is one audit entry.
type TicketHistoryResponse struct {
	ID         string                  `json:"id"`
	ActorID    string                  `json:"actor_id"`
	ActorRole  domain.Role             `json:"actor_role"`
	ChangeType domain.TicketChangeType `json:"change_type"`
	OldValue   map[string]any          `json:"old_value"`
	NewValue   map[string]any          `json:"new_value"`
	CreatedAt  time.Time               `json:"created_at"`
}

// TicketNoteResponse representation.
type TicketNoteResponse struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	AuthorID  string    `json:"author_id"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

// FromTicket maps a ticket.
func FromTicket(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:              t.ID,
		CompanyID:       t.CompanyID,
		AssetID:         t.AssetID,
		ServiceID:       t.ServiceID,
		Title:           t.Title,
		Description:     t.Description,
		Category:        t.Category,
		Priority:        t.Priority,
		Status:          t.Status,
		AssignedTo:      t.AssignedTo,
		Requester:       t.Requester,
		CreatedBy:       t.CreatedBy,
		MaintenanceLog:  t.MaintenanceLog,
		FinalResolution: t.FinalResolution,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
		ResolvedAt:      t.ResolvedAt,
	}
}

// FromTickets maps a list of tickets.
func FromTickets(items []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(items))
	for i := range items {
		out = append(out, FromTicket(&items[i]))
	}
	return out
}

// FromHistory maps audit entries.
func FromHistory(entries []domain.TicketHistory) []TicketHistoryResponse {
	out := make([]TicketHistoryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, TicketHistoryResponse{
			ID:         e.ID,
			ActorID:    e.ActorID,
			ActorRole:  e.ActorRole,
			ChangeType: e.ChangeType,
			OldValue:   e.OldValue,
			NewValue:   e.NewValue,
			CreatedAt:  e.CreatedAt,
		})
	}
	return out
}

// FromNote maps a note.
func FromNote(n *domain.TicketNote) TicketNoteResponse {
	return TicketNoteResponse{ID: n.ID, TicketID: n.TicketID, AuthorID: n.AuthorID, Note: n.Note, CreatedAt: n.CreatedAt}
}

// FromNotes maps a list of notes.
func FromNotes(items []domain.TicketNote) []TicketNoteResponse {
	out := make([]TicketNoteResponse, 0, len(items))
	for i := range items {
		out = append(out, FromNote(&items[i]))
	}
	return out
}
