package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/itsm-service/internal/access"
	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/events"
	"github.com/spec-kit/itsm-service/internal/lifecycle"
	"github.com/spec-kit/itsm-service/internal/repository"
	apperrors "github.com/spec-kit/itsm-service/pkg/util"
)

// Assigned filter values accepted by ListTickets besides a user id.
const (
	AssignedToMe    = "me"
	AssignedToNoone = "unassigned"
)

// TicketCreateInput describes ticket creation payload. A client's ticket defaults to
// the client's company.
type TicketCreateInput struct {
	CompanyID       string
	AssetID         *string
	ServiceID       *string
	Title           string
	Description     string
	Category        domain.TicketCategory
	Priority        domain.TicketPriority
	Requester       string
	AssignedTo      *string
	MaintenanceLog  string
	FinalResolution string
}

// TicketUpdateInput carries descriptive changes; nil fields are left unchanged. Status
// and assignee are changed through Transition and Assign only.
type TicketUpdateInput struct {
	AssetID         *string
	ServiceID       *string
	Title           *string
	Description     *string
	Category        *domain.TicketCategory
	Priority        *domain.TicketPriority
	Requester       *string
	MaintenanceLog  *string
	FinalResolution *string
}

// TicketListFilter narrows ticket listings. Assigned takes "me", "unassigned" or a
// user id.
type TicketListFilter struct {
	CompanyID *string
	Statuses  []domain.TicketStatus
	Category  *domain.TicketCategory
	Priority  *domain.TicketPriority
	AssetID   *string
	ServiceID *string
	Assigned  string
	repository.Page
}

// TicketService coordinates ticket workflows.
type TicketService struct {
	base
	machine *lifecycle.Machine
}

// NewTicketService constructs the service.
func NewTicketService(deps Dependencies) *TicketService {
	return &TicketService{base: newBase(deps), machine: lifecycle.NewMachine(deps.Access)}
}

// CreateTicket opens a ticket. An initial assignee is recorded in the audit trail in the
// same unit of work.
func (s *TicketService) CreateTicket(ctx context.Context, principal domain.Principal, input TicketCreateInput) (*domain.Ticket, error) {
	companyID := trimmed(input.CompanyID)
	if companyID == "" && principal.Role == domain.RoleClient {
		companyID = principal.Company()
	}
	if companyID == "" {
		return nil, apperrors.NewValidationError("ticket requires a company", map[string]any{"company_id": "is required"})
	}
	if trimmed(input.Title) == "" {
		return nil, apperrors.NewValidationError("ticket requires a title", map[string]any{"title": "is required"})
	}

	now := s.now()
	ticket := domain.Ticket{
		ID:              s.newID(),
		CompanyID:       companyID,
		AssetID:         optionalID(input.AssetID),
		ServiceID:       optionalID(input.ServiceID),
		Title:           trimmed(input.Title),
		Description:     trimmed(input.Description),
		Category:        input.Category,
		Priority:        input.Priority,
		Status:          domain.TicketStatusOpen,
		Requester:       trimmed(input.Requester),
		CreatedBy:       principal.UserID,
		MaintenanceLog:  input.MaintenanceLog,
		FinalResolution: input.FinalResolution,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}
	if ticket.Requester == "" {
		ticket.Requester = principal.Name
	}
	if err := validateTicketEnums(ticket); err != nil {
		return nil, err
	}

	if err := s.access.Authorize(principal, access.EntityTicket, access.ActionCreate, ticket); err != nil {
		return nil, err
	}
	assignee := optionalID(input.AssignedTo)
	if assignee != nil && !s.access.Can(principal, access.EntityTicket, access.ActionAssign) {
		return nil, apperrors.NewForbidden("role may not assign tickets")
	}

	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		if err := ensureCompany(ctx, repos, ticket.CompanyID); err != nil {
			return err
		}
		if err := checkTicketReferences(ctx, repos, ticket); err != nil {
			return err
		}
		if err := repos.Tickets.Create(ctx, &ticket); err != nil {
			return repoError(err, "ticket", ticket.ID)
		}
		if assignee == nil {
			return nil
		}
		if err := checkAssignee(ctx, repos, *assignee); err != nil {
			return err
		}
		assigned, entry, err := s.machine.Assign(ticket, assignee, principal, now)
		if err != nil {
			return err
		}
		if err := repos.Tickets.Update(ctx, &assigned); err != nil {
			return repoError(err, "ticket", ticket.ID)
		}
		ticket = assigned
		return repos.History.Create(ctx, entry)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("ticket created",
		zap.String("ticket_id", ticket.ID),
		zap.String("company_id", ticket.CompanyID),
		zap.String("actor_id", principal.UserID))
	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketCreated,
		TicketID:  ticket.ID,
		CompanyID: ticket.CompanyID,
		Actor:     events.ActorFrom(principal),
		Payload: events.TicketCreatedPayload{
			Title:    ticket.Title,
			Priority: ticket.Priority,
			Category: ticket.Category,
		},
	})
	return &ticket, nil
}

// ListTickets returns the tickets visible to principal.
func (s *TicketService) ListTickets(ctx context.Context, principal domain.Principal, filter TicketListFilter) ([]domain.Ticket, error) {
	if err := s.access.Authorize(principal, access.EntityTicket, access.ActionRead, nil); err != nil {
		return nil, err
	}
	pinned, ok := clientCompany(principal)
	if !ok {
		return []domain.Ticket{}, nil
	}
	repoFilter := repository.TicketFilter{
		CompanyID: filter.CompanyID,
		Statuses:  filter.Statuses,
		Category:  filter.Category,
		Priority:  filter.Priority,
		AssetID:   filter.AssetID,
		ServiceID: filter.ServiceID,
		Page:      filter.Page,
	}
	if pinned != nil {
		repoFilter.CompanyID = pinned
	}
	switch filter.Assigned {
	case "":
	case AssignedToNoone:
		repoFilter.Unassigned = true
	case AssignedToMe:
		me := principal.UserID
		repoFilter.AssignedTo = &me
	default:
		assigned := filter.Assigned
		repoFilter.AssignedTo = &assigned
	}

	tickets, err := s.repos().Tickets.List(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return access.Filter(tickets, s.access.ScopeFor(principal, access.EntityTicket)), nil
}

// GetTicket returns one ticket.
func (s *TicketService) GetTicket(ctx context.Context, principal domain.Principal, id string) (*domain.Ticket, error) {
	return s.readable(ctx, s.repos(), principal, id)
}

// UpdateTicket changes descriptive fields.
func (s *TicketService) UpdateTicket(ctx context.Context, principal domain.Principal, id string, input TicketUpdateInput) (*domain.Ticket, error) {
	var updated domain.Ticket
	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		ticket, err := repos.Tickets.GetByID(ctx, id)
		if err != nil {
			return repoError(err, "ticket", id)
		}
		if err := s.access.Authorize(principal, access.EntityTicket, access.ActionUpdate, *ticket); err != nil {
			return err
		}

		if input.AssetID != nil {
			ticket.AssetID = optionalID(input.AssetID)
		}
		if input.ServiceID != nil {
			ticket.ServiceID = optionalID(input.ServiceID)
		}
		if input.Title != nil {
			if trimmed(*input.Title) == "" {
				return apperrors.NewValidationError("ticket requires a title", map[string]any{"title": "is required"})
			}
			ticket.Title = trimmed(*input.Title)
		}
		if input.Description != nil {
			ticket.Description = trimmed(*input.Description)
		}
		if input.Category != nil {
			ticket.Category = *input.Category
		}
		if input.Priority != nil {
			ticket.Priority = *input.Priority
		}
		if input.Requester != nil {
			ticket.Requester = trimmed(*input.Requester)
		}
		if input.MaintenanceLog != nil {
			ticket.MaintenanceLog = *input.MaintenanceLog
		}
		if input.FinalResolution != nil {
			ticket.FinalResolution = *input.FinalResolution
		}
		if err := validateTicketEnums(*ticket); err != nil {
			return err
		}
		if err := checkTicketReferences(ctx, repos, *ticket); err != nil {
			return err
		}

		ticket.UpdatedAt = s.now()
		if err := repos.Tickets.Update(ctx, ticket); err != nil {
			return repoError(err, "ticket", id)
		}
		updated = *ticket
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &updated, nil
}

// DeleteTicket removes a ticket. Its notes and audit trail are kept.
func (s *TicketService) DeleteTicket(ctx context.Context, principal domain.Principal, id string) error {
	ticket, err := s.repos().Tickets.GetByID(ctx, id)
	if err != nil {
		return repoError(err, "ticket", id)
	}
	if err := s.access.Authorize(principal, access.EntityTicket, access.ActionDelete, *ticket); err != nil {
		return err
	}
	if err := s.repos().Tickets.Delete(ctx, id); err != nil {
		return repoError(err, "ticket", id)
	}
	s.logger.Info("ticket deleted", zap.String("ticket_id", id), zap.String("actor_id", principal.UserID))
	return nil
}

// Transition changes the ticket status. The new status and its audit entry are written
// together or not at all.
func (s *TicketService) Transition(ctx context.Context, principal domain.Principal, id string, status domain.TicketStatus) (*domain.Ticket, error) {
	var (
		updated  domain.Ticket
		previous domain.TicketStatus
		changed  bool
	)
	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		ticket, err := repos.Tickets.GetByID(ctx, id)
		if err != nil {
			return repoError(err, "ticket", id)
		}
		previous = ticket.Status

		next, entry, err := s.machine.Transition(*ticket, status, principal, s.now())
		if err != nil {
			return err
		}
		updated = next
		if entry == nil {
			return nil
		}
		if err := repos.Tickets.Update(ctx, &next); err != nil {
			return repoError(err, "ticket", id)
		}
		if err := repos.History.Create(ctx, entry); err != nil {
			return repoError(err, "ticket history", entry.ID)
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if changed {
		s.logger.Info("ticket status changed",
			zap.String("ticket_id", id),
			zap.String("from", string(previous)),
			zap.String("to", string(status)),
			zap.String("actor_id", principal.UserID))
		s.publishEvent(ctx, events.Event{
			Type:      events.EventTicketStatusChanged,
			TicketID:  id,
			CompanyID: updated.CompanyID,
			Actor:     events.ActorFrom(principal),
			Payload:   events.TicketStatusChangedPayload{OldStatus: previous, NewStatus: status},
		})
	}
	return &updated, nil
}

// Assign sets or clears the technician responsible for the ticket.
func (s *TicketService) Assign(ctx context.Context, principal domain.Principal, id string, technicianID *string) (*domain.Ticket, error) {
	technicianID = optionalID(technicianID)
	var (
		updated  domain.Ticket
		previous *string
		changed  bool
	)
	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		ticket, err := repos.Tickets.GetByID(ctx, id)
		if err != nil {
			return repoError(err, "ticket", id)
		}
		previous = ticket.AssignedTo

		next, entry, err := s.machine.Assign(*ticket, technicianID, principal, s.now())
		if err != nil {
			return err
		}
		updated = next
		if entry == nil {
			return nil
		}
		if technicianID != nil {
			if err := checkAssignee(ctx, repos, *technicianID); err != nil {
				return err
			}
		}
		if err := repos.Tickets.Update(ctx, &next); err != nil {
			return repoError(err, "ticket", id)
		}
		if err := repos.History.Create(ctx, entry); err != nil {
			return repoError(err, "ticket history", entry.ID)
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if changed {
		s.publishEvent(ctx, events.Event{
			Type:      events.EventTicketAssigned,
			TicketID:  id,
			CompanyID: updated.CompanyID,
			Actor:     events.ActorFrom(principal),
			Payload:   events.TicketAssignedPayload{PreviousAssignee: previous, Assignee: technicianID},
		})
	}
	return &updated, nil
}

// AddNote appends a note. Anyone who can read the ticket may add one; the status never
// changes.
func (s *TicketService) AddNote(ctx context.Context, principal domain.Principal, ticketID, body string) (*domain.TicketNote, error) {
	if trimmed(body) == "" {
		return nil, apperrors.NewValidationError("note is empty", map[string]any{"note": "is required"})
	}
	ticket, err := s.readable(ctx, s.repos(), principal, ticketID)
	if err != nil {
		return nil, err
	}

	note := &domain.TicketNote{
		ID:        s.newID(),
		TicketID:  ticket.ID,
		AuthorID:  principal.UserID,
		Note:      trimmed(body),
		CreatedAt: s.now(),
	}
	if err := s.repos().Notes.Create(ctx, note); err != nil {
		return nil, repoError(err, "ticket note", note.ID)
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketNoteAdded,
		TicketID:  ticket.ID,
		CompanyID: ticket.CompanyID,
		Actor:     events.ActorFrom(principal),
		Payload: events.TicketNoteAddedPayload{
			NoteID:      note.ID,
			AuthorID:    note.AuthorID,
			BodyPreview: preview(note.Note, 120),
		},
	})
	return note, nil
}

// ListNotes returns a ticket's notes oldest first.
func (s *TicketService) ListNotes(ctx context.Context, principal domain.Principal, ticketID string) ([]domain.TicketNote, error) {
	if _, err := s.readable(ctx, s.repos(), principal, ticketID); err != nil {
		return nil, err
	}
	notes, err := s.repos().Notes.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if notes == nil {
		notes = []domain.TicketNote{}
	}
	return notes, nil
}

// ListHistory returns a ticket's audit trail oldest first.
func (s *TicketService) ListHistory(ctx context.Context, principal domain.Principal, ticketID string) ([]domain.TicketHistory, error) {
	if _, err := s.readable(ctx, s.repos(), principal, ticketID); err != nil {
		return nil, err
	}
	history, err := s.repos().History.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if history == nil {
		history = []domain.TicketHistory{}
	}
	return history, nil
}

func (s *TicketService) readable(ctx context.Context, repos repository.Repositories, principal domain.Principal, id string) (*domain.Ticket, error) {
	ticket, err := repos.Tickets.GetByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "ticket", id)
	}
	if err := s.access.Authorize(principal, access.EntityTicket, access.ActionRead, *ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

func validateTicketEnums(t domain.Ticket) error {
	switch t.Priority {
	case domain.TicketPriorityLow, domain.TicketPriorityMedium, domain.TicketPriorityHigh, domain.TicketPriorityCritical:
	default:
		return apperrors.NewValidationError("invalid priority", map[string]any{"priority": string(t.Priority)})
	}
	switch t.Category {
	case "", domain.TicketCategoryIncident, domain.TicketCategoryRequest, domain.TicketCategoryMaintenance:
	default:
		return apperrors.NewValidationError("invalid category", map[string]any{"category": string(t.Category)})
	}
	return nil
}

// checkTicketReferences verifies the asset and service exist and belong to the ticket's
// company.
func checkTicketReferences(ctx context.Context, repos repository.Repositories, t domain.Ticket) error {
	if t.AssetID != nil {
		asset, err := repos.Assets.GetByID(ctx, *t.AssetID)
		if err != nil {
			return repoError(err, "asset", *t.AssetID)
		}
		if asset.CompanyID != t.CompanyID {
			return apperrors.NewValidationError("asset belongs to another company", map[string]any{"asset_id": *t.AssetID})
		}
	}
	if t.ServiceID != nil {
		svc, err := repos.Services.GetByID(ctx, *t.ServiceID)
		if err != nil {
			return repoError(err, "service", *t.ServiceID)
		}
		if svc.CompanyID != t.CompanyID {
			return apperrors.NewValidationError("service belongs to another company", map[string]any{"service_id": *t.ServiceID})
		}
	}
	return nil
}

// checkAssignee requires a staff account.
func checkAssignee(ctx context.Context, repos repository.Repositories, userID string) error {
	user, err := repos.Users.GetByID(ctx, userID)
	if err != nil {
		return repoError(err, "user", userID)
	}
	if user.Role != domain.RoleTechnician && user.Role != domain.RoleAdmin {
		return apperrors.NewValidationError("tickets can only be assigned to staff", map[string]any{"assigned_to": userID})
	}
	return nil
}
