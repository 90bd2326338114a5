package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/itsm-service/internal/domain"
)

func strPtr(s string) *string { return &s }

var base = time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)

func seed(t *testing.T) *MemoryStore {
	t.Helper()
	ctx := context.Background()
	store := NewMemoryStore()
	repos := store.Repos()

	require.NoError(t, repos.Companies.Create(ctx, &domain.Company{ID: "c1", Name: "Acme"}))
	require.NoError(t, repos.Companies.Create(ctx, &domain.Company{ID: "c2", Name: "Globex"}))
	require.NoError(t, repos.Users.Create(ctx, &domain.User{ID: "u1", Email: "tech@acme.io", Role: domain.RoleTechnician}))
	require.NoError(t, repos.Tickets.Create(ctx, &domain.Ticket{ID: "t1", CompanyID: "c1", Status: domain.TicketStatusOpen, CreatedAt: base}))
	require.NoError(t, repos.Tickets.Create(ctx, &domain.Ticket{ID: "t2", CompanyID: "c2", Status: domain.TicketStatusResolved, CreatedAt: base.Add(time.Hour), AssignedTo: strPtr("u1")}))
	require.NoError(t, repos.Tickets.Create(ctx, &domain.Ticket{ID: "t3", CompanyID: "c1", Status: domain.TicketStatusInProgress, CreatedAt: base.Add(2 * time.Hour)}))
	return store
}

func TestMemoryStore_WithinTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := seed(t)
	boom := errors.New("boom")

	err := store.WithinTx(ctx, func(r Repositories) error {
		tk, err := r.Tickets.GetByID(ctx, "t1")
		require.NoError(t, err)
		tk.Status = domain.TicketStatusClosed
		require.NoError(t, r.Tickets.Update(ctx, tk))
		require.NoError(t, r.History.Create(ctx, &domain.TicketHistory{ID: "h1", TicketID: "t1"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	tk, err := store.Repos().Tickets.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, tk.Status)
	history, err := store.Repos().History.ListByTicket(ctx, "t1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestMemoryStore_WithinTxCommits(t *testing.T) {
	ctx := context.Background()
	store := seed(t)

	require.NoError(t, store.WithinTx(ctx, func(r Repositories) error {
		tk, err := r.Tickets.GetByID(ctx, "t1")
		if err != nil {
			return err
		}
		tk.Status = domain.TicketStatusInProgress
		if err := r.Tickets.Update(ctx, tk); err != nil {
			return err
		}
		return r.History.Create(ctx, &domain.TicketHistory{ID: "h1", TicketID: "t1", CreatedAt: base})
	}))

	tk, err := store.Repos().Tickets.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, tk.Status)
	history, err := store.Repos().History.ListByTicket(ctx, "t1")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestMemoryStore_TicketFilters(t *testing.T) {
	ctx := context.Background()
	repos := seed(t).Repos()

	all, err := repos.Tickets.List(ctx, TicketFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "t3", all[0].ID, "newest first")

	own, err := repos.Tickets.List(ctx, TicketFilter{CompanyID: strPtr("c1")})
	require.NoError(t, err)
	assert.Len(t, own, 2)

	pending, err := repos.Tickets.List(ctx, TicketFilter{Statuses: []domain.TicketStatus{domain.TicketStatusOpen, domain.TicketStatusInProgress}})
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	mine, err := repos.Tickets.List(ctx, TicketFilter{AssignedTo: strPtr("u1")})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "t2", mine[0].ID)

	unassigned, err := repos.Tickets.List(ctx, TicketFilter{Unassigned: true})
	require.NoError(t, err)
	assert.Len(t, unassigned, 2)

	paged, err := repos.Tickets.List(ctx, TicketFilter{Page: Page{Limit: 1, Offset: 1}})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, "t2", paged[0].ID)
}

func TestMemoryStore_Constraints(t *testing.T) {
	ctx := context.Background()
	repos := seed(t).Repos()

	err := repos.Users.Create(ctx, &domain.User{ID: "u2", Email: "TECH@acme.io"})
	assert.ErrorIs(t, err, ErrConflict)

	err = repos.Companies.Delete(ctx, "c1")
	assert.ErrorIs(t, err, ErrConflict)

	err = repos.Assets.Create(ctx, &domain.Asset{ID: "a1", CompanyID: "missing"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = repos.Tickets.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repos.Users.Delete(ctx, "u1"))
	tk, err := repos.Tickets.GetByID(ctx, "t2")
	require.NoError(t, err)
	assert.Nil(t, tk.AssignedTo)
}

func TestMemoryStore_TicketDeleteKeepsNotesAndHistory(t *testing.T) {
	ctx := context.Background()
	repos := seed(t).Repos()

	require.NoError(t, repos.Notes.Create(ctx, &domain.TicketNote{ID: "n1", TicketID: "t1", Note: "hi"}))
	require.NoError(t, repos.History.Create(ctx, &domain.TicketHistory{ID: "h1", TicketID: "t1"}))
	require.NoError(t, repos.Tickets.Delete(ctx, "t1"))

	_, err := repos.Tickets.GetByID(ctx, "t1")
	assert.ErrorIs(t, err, ErrNotFound)
	notes, err := repos.Notes.ListByTicket(ctx, "t1")
	require.NoError(t, err)
	assert.Len(t, notes, 1)
	history, err := repos.History.ListByTicket(ctx, "t1")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}
