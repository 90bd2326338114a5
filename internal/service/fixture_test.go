package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/itsm-service/internal/access"
	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/events"
	"github.com/spec-kit/itsm-service/internal/repository"
)

var t0 = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store      *repository.MemoryStore
	clock      *clock
	deps       Dependencies
	dispatcher events.Dispatcher
	recorded   *recorder

	admin      domain.Principal
	tech       domain.Principal
	acmeClient domain.Principal
	globexUser domain.Principal
	orphanUser domain.Principal
}

// newFixture seeds two companies, staff, one client per company, a client without a
// company, and a 24h contract for Acme's helpdesk service starting the day before t0.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemoryStore()
	resolver, err := access.NewResolver()
	require.NoError(t, err)

	rec := &recorder{}
	dispatcher := events.NewInMemoryDispatcher()
	for _, et := range []events.EventType{
		events.EventTicketCreated, events.EventTicketStatusChanged, events.EventTicketAssigned,
		events.EventTicketNoteAdded, events.EventSLAWarning, events.EventSLABreached,
	} {
		dispatcher.Subscribe(et, rec.handle)
	}

	clk := &clock{now: t0}
	var seq int
	var seqMu sync.Mutex
	deps := Dependencies{
		Store:      store,
		Access:     resolver,
		Dispatcher: dispatcher,
		Now:        clk.Now,
		NewID: func() string {
			seqMu.Lock()
			defer seqMu.Unlock()
			seq++
			return fmt.Sprintf("id-%03d", seq)
		},
	}

	repos := store.Repos()
	require.NoError(t, repos.Companies.Create(ctx, &domain.Company{ID: "acme", Name: "Acme"}))
	require.NoError(t, repos.Companies.Create(ctx, &domain.Company{ID: "globex", Name: "Globex"}))

	users := []domain.User{
		{ID: "admin", Name: "Ada", Email: "admin@itsm.io", Role: domain.RoleAdmin},
		{ID: "tech", Name: "Tom", Email: "tech@itsm.io", Role: domain.RoleTechnician},
		{ID: "acme-client", Name: "Ann", Email: "ann@acme.io", Role: domain.RoleClient, CompanyID: strPtr("acme")},
		{ID: "globex-client", Name: "Gus", Email: "gus@globex.io", Role: domain.RoleClient, CompanyID: strPtr("globex")},
		{ID: "orphan", Name: "Olly", Email: "olly@nowhere.io", Role: domain.RoleClient},
	}
	for i := range users {
		require.NoError(t, repos.Users.Create(ctx, &users[i]))
	}

	require.NoError(t, repos.Services.Create(ctx, &domain.Service{ID: "helpdesk", CompanyID: "acme", Name: "Helpdesk"}))
	require.NoError(t, repos.Services.Create(ctx, &domain.Service{ID: "hosting", CompanyID: "globex", Name: "Hosting"}))
	require.NoError(t, repos.Contracts.Create(ctx, &domain.Contract{
		ID:        "acme-sla",
		CompanyID: "acme",
		ServiceID: "helpdesk",
		StartDate: t0.AddDate(0, 0, -1).Truncate(24 * time.Hour),
		SLAHours:  24,
		Status:    domain.ContractStatusActive,
	}))
	require.NoError(t, repos.Assets.Create(ctx, &domain.Asset{ID: "acme-laptop", CompanyID: "acme", AssetType: "laptop", Status: domain.AssetStatusActive}))
	require.NoError(t, repos.Assets.Create(ctx, &domain.Asset{ID: "globex-server", CompanyID: "globex", AssetType: "server", Status: domain.AssetStatusInRepair}))

	return &fixture{
		store:      store,
		clock:      clk,
		deps:       deps,
		dispatcher: dispatcher,
		recorded:   rec,
		admin:      domain.PrincipalFromUser(&users[0]),
		tech:       domain.PrincipalFromUser(&users[1]),
		acmeClient: domain.PrincipalFromUser(&users[2]),
		globexUser: domain.PrincipalFromUser(&users[3]),
		orphanUser: domain.PrincipalFromUser(&users[4]),
	}
}

func (f *fixture) tickets() *TicketService {
	return NewTicketService(f.deps)
}

// openTicket creates a ticket as principal at the current clock.
func (f *fixture) openTicket(t *testing.T, principal domain.Principal, input TicketCreateInput) *domain.Ticket {
	t.Helper()
	if input.Title == "" {
		input.Title = "printer jammed"
	}
	ticket, err := f.tickets().CreateTicket(context.Background(), principal, input)
	require.NoError(t, err)
	return ticket
}
