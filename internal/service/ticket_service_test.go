package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/events"
	"github.com/spec-kit/itsm-service/internal/repository"
	apperrors "github.com/spec-kit/itsm-service/pkg/util"
)

type failingHistory struct{}

func (failingHistory) Create(context.Context, *domain.TicketHistory) error {
	return errors.New("disk full")
}

func (failingHistory) ListByTicket(context.Context, string) ([]domain.TicketHistory, error) {
	return nil, nil
}

// historyFailingStore breaks audit writes inside units of work only.
type historyFailingStore struct {
	*repository.MemoryStore
}

func (s historyFailingStore) WithinTx(ctx context.Context, fn func(repository.Repositories) error) error {
	return s.MemoryStore.WithinTx(ctx, func(r repository.Repositories) error {
		r.History = failingHistory{}
		return fn(r)
	})
}

func TestCreateTicket_ClientDefaults(t *testing.T) {
	f := newFixture(t)

	ticket := f.openTicket(t, f.acmeClient, TicketCreateInput{Title: "  VPN down  ", ServiceID: strPtr("helpdesk")})

	assert.Equal(t, "acme", ticket.CompanyID)
	assert.Equal(t, "VPN down", ticket.Title)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	assert.Equal(t, "Ann", ticket.Requester)
	assert.Equal(t, "acme-client", ticket.CreatedBy)
	assert.Nil(t, ticket.AssignedTo)
	assert.Equal(t, []events.EventType{events.EventTicketCreated}, f.recorded.types())
}

func TestCreateTicket_ClientRestrictions(t *testing.T) {
	f := newFixture(t)
	svc := f.tickets()
	ctx := context.Background()

	_, err := svc.CreateTicket(ctx, f.acmeClient, TicketCreateInput{CompanyID: "globex", Title: "not mine"})
	assert.True(t, apperrors.IsForbidden(err))

	_, err = svc.CreateTicket(ctx, f.acmeClient, TicketCreateInput{Title: "pick tom", AssignedTo: strPtr("tech")})
	assert.True(t, apperrors.IsForbidden(err))

	_, err = svc.CreateTicket(ctx, f.orphanUser, TicketCreateInput{Title: "who am i"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	all, err := svc.ListTickets(ctx, f.admin, TicketListFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateTicket_WithAssigneeRecordsHistory(t *testing.T) {
	f := newFixture(t)

	ticket := f.openTicket(t, f.admin, TicketCreateInput{CompanyID: "acme", AssignedTo: strPtr("tech"), Priority: domain.TicketPriorityHigh})
	require.NotNil(t, ticket.AssignedTo)
	assert.Equal(t, "tech", *ticket.AssignedTo)

	history, err := f.tickets().ListHistory(context.Background(), f.admin, ticket.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.ChangeTypeAssignee, history[0].ChangeType)
	assert.Equal(t, "tech", history[0].NewValue["assigned_to"])
}

func TestCreateTicket_RejectedAssigneeLeavesNothingBehind(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.tickets().CreateTicket(ctx, f.admin, TicketCreateInput{CompanyID: "acme", Title: "x", AssignedTo: strPtr("acme-client")})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	all, err := f.tickets().ListTickets(ctx, f.admin, TicketListFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, f.recorded.types())
}

func TestCreateTicket_ReferencesMustShareCompany(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.tickets().CreateTicket(ctx, f.tech, TicketCreateInput{CompanyID: "acme", Title: "x", AssetID: strPtr("globex-server")})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = f.tickets().CreateTicket(ctx, f.tech, TicketCreateInput{CompanyID: "acme", Title: "x", ServiceID: strPtr("hosting")})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = f.tickets().CreateTicket(ctx, f.tech, TicketCreateInput{CompanyID: "acme", Title: "x", AssetID: strPtr("missing")})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestTransition_ReopenFromResolved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.tickets()
	ticket := f.openTicket(t, f.acmeClient, TicketCreateInput{})

	f.clock.Set(t0.Add(2 * time.Hour))
	resolved, err := svc.Transition(ctx, f.tech, ticket.ID, domain.TicketStatusResolved)
	require.NoError(t, err)
	require.NotNil(t, resolved.ResolvedAt)
	assert.Equal(t, t0.Add(2*time.Hour), *resolved.ResolvedAt)

	f.clock.Set(t0.Add(3 * time.Hour))
	reopened, err := svc.Transition(ctx, f.tech, ticket.ID, domain.TicketStatusOpen)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, reopened.Status)
	assert.Nil(t, reopened.ResolvedAt)

	history, err := svc.ListHistory(ctx, f.acmeClient, ticket.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	last := history[1]
	assert.Equal(t, domain.ChangeTypeStatus, last.ChangeType)
	assert.Equal(t, "resolved", last.OldValue["status"])
	assert.Equal(t, "open", last.NewValue["status"])
	assert.Equal(t, "tech", last.ActorID)
	assert.Equal(t, domain.RoleTechnician, last.ActorRole)

	assert.Equal(t, []events.EventType{
		events.EventTicketCreated,
		events.EventTicketStatusChanged,
		events.EventTicketStatusChanged,
	}, f.recorded.types())
}

func TestTransition_AuditFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.openTicket(t, f.tech, TicketCreateInput{CompanyID: "acme"})

	deps := f.deps
	deps.Store = historyFailingStore{MemoryStore: f.store}
	svc := NewTicketService(deps)

	_, err := svc.Transition(ctx, f.tech, ticket.ID, domain.TicketStatusInProgress)
	require.Error(t, err)

	stored, err := f.tickets().GetTicket(ctx, f.admin, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, stored.Status)
	assert.Equal(t, ticket.UpdatedAt, stored.UpdatedAt)
	assert.Equal(t, []events.EventType{events.EventTicketCreated}, f.recorded.types())
}

func TestTransition_ClientAlwaysForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.openTicket(t, f.acmeClient, TicketCreateInput{})

	for _, status := range append(domain.TicketStatuses, domain.TicketStatus("archived")) {
		_, err := f.tickets().Transition(ctx, f.acmeClient, ticket.ID, status)
		assert.True(t, apperrors.IsForbidden(err), "status %s", status)
	}

	stored, err := f.tickets().GetTicket(ctx, f.acmeClient, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, stored.Status)
	history, err := f.tickets().ListHistory(ctx, f.acmeClient, ticket.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestTransition_UnknownStatusAndNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.openTicket(t, f.tech, TicketCreateInput{CompanyID: "acme"})

	_, err := f.tickets().Transition(ctx, f.tech, ticket.ID, domain.TicketStatus("archived"))
	assert.True(t, apperrors.IsInvalidTransition(err))

	same, err := f.tickets().Transition(ctx, f.tech, ticket.ID, domain.TicketStatusOpen)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, same.Status)

	history, err := f.tickets().ListHistory(ctx, f.tech, ticket.ID)
	require.NoError(t, err)
	assert.Empty(t, history)

	_, err = f.tickets().Transition(ctx, f.tech, "missing", domain.TicketStatusClosed)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestAssign(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.openTicket(t, f.acmeClient, TicketCreateInput{})

	assigned, err := f.tickets().Assign(ctx, f.tech, ticket.ID, strPtr("tech"))
	require.NoError(t, err)
	assert.Equal(t, "tech", *assigned.AssignedTo)

	_, err = f.tickets().Assign(ctx, f.acmeClient, ticket.ID, strPtr("tech"))
	assert.True(t, apperrors.IsForbidden(err))

	_, err = f.tickets().Assign(ctx, f.admin, ticket.ID, strPtr("globex-client"))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	cleared, err := f.tickets().Assign(ctx, f.admin, ticket.ID, strPtr(" "))
	require.NoError(t, err)
	assert.Nil(t, cleared.AssignedTo)

	history, err := f.tickets().ListHistory(ctx, f.admin, ticket.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "tech", history[1].OldValue["assigned_to"])
}

func TestListTickets_ScopedByCompany(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.tickets()

	acme := f.openTicket(t, f.acmeClient, TicketCreateInput{Title: "acme"})
	globex := f.openTicket(t, f.globexUser, TicketCreateInput{Title: "globex"})

	visible, err := svc.ListTickets(ctx, f.globexUser, TicketListFilter{CompanyID: strPtr("acme")})
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, globex.ID, visible[0].ID)

	_, err = svc.GetTicket(ctx, f.globexUser, acme.ID)
	assert.True(t, apperrors.IsForbidden(err))
	_, err = svc.ListHistory(ctx, f.globexUser, acme.ID)
	assert.True(t, apperrors.IsForbidden(err))

	orphan, err := svc.ListTickets(ctx, f.orphanUser, TicketListFilter{})
	require.NoError(t, err)
	assert.Empty(t, orphan)

	staff, err := svc.ListTickets(ctx, f.tech, TicketListFilter{})
	require.NoError(t, err)
	assert.Len(t, staff, 2)
}

func TestListTickets_AssignedFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.tickets()

	mine := f.openTicket(t, f.admin, TicketCreateInput{CompanyID: "acme", AssignedTo: strPtr("tech")})
	f.openTicket(t, f.admin, TicketCreateInput{CompanyID: "acme"})

	got, err := svc.ListTickets(ctx, f.tech, TicketListFilter{Assigned: AssignedToMe})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, mine.ID, got[0].ID)

	got, err = svc.ListTickets(ctx, f.tech, TicketListFilter{Assigned: AssignedToNoone})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NotEqual(t, mine.ID, got[0].ID)
}

func TestUpdateTicket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.openTicket(t, f.acmeClient, TicketCreateInput{})

	_, err := f.tickets().UpdateTicket(ctx, f.acmeClient, ticket.ID, TicketUpdateInput{Title: strPtr("mine")})
	assert.True(t, apperrors.IsForbidden(err))

	critical := domain.TicketPriorityCritical
	updated, err := f.tickets().UpdateTicket(ctx, f.tech, ticket.ID, TicketUpdateInput{
		Title:    strPtr("printer on fire"),
		Priority: &critical,
		AssetID:  strPtr("acme-laptop"),
	})
	require.NoError(t, err)
	assert.Equal(t, "printer on fire", updated.Title)
	assert.Equal(t, critical, updated.Priority)
	assert.Equal(t, domain.TicketStatusOpen, updated.Status)

	bogus := domain.TicketPriority("urgent")
	_, err = f.tickets().UpdateTicket(ctx, f.tech, ticket.ID, TicketUpdateInput{Priority: &bogus})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestNotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.tickets()
	ticket := f.openTicket(t, f.acmeClient, TicketCreateInput{})

	_, err := svc.AddNote(ctx, f.acmeClient, ticket.ID, "   ")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = svc.AddNote(ctx, f.globexUser, ticket.ID, "hello")
	assert.True(t, apperrors.IsForbidden(err))

	note, err := svc.AddNote(ctx, f.acmeClient, ticket.ID, "still broken")
	require.NoError(t, err)
	assert.Equal(t, "acme-client", note.AuthorID)

	notes, err := svc.ListNotes(ctx, f.tech, ticket.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "still broken", notes[0].Note)

	stored, err := svc.GetTicket(ctx, f.tech, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, stored.Status)
}

func TestDeleteTicket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.openTicket(t, f.acmeClient, TicketCreateInput{})

	assert.True(t, apperrors.IsForbidden(f.tickets().DeleteTicket(ctx, f.tech, ticket.ID)))
	require.NoError(t, f.tickets().DeleteTicket(ctx, f.admin, ticket.ID))
	assert.True(t, apperrors.IsNotFound(f.tickets().DeleteTicket(ctx, f.admin, ticket.ID)))
}

func TestDeleteTicketKeepsNotesAndHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.tickets()
	ticket := f.openTicket(t, f.acmeClient, TicketCreateInput{})

	_, err := svc.AddNote(ctx, f.acmeClient, ticket.ID, "printer on fire")
	require.NoError(t, err)
	_, err = svc.Transition(ctx, f.tech, ticket.ID, domain.TicketStatusInProgress)
	require.NoError(t, err)

	repos := f.store.Repos()
	history, err := repos.History.ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	require.NotEmpty(t, history)

	require.NoError(t, svc.DeleteTicket(ctx, f.admin, ticket.ID))

	notes, err := repos.Notes.ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "printer on fire", notes[0].Note)
	kept, err := repos.History.ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, kept, len(history))
}
