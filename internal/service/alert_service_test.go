package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/persistence"
	"github.com/spec-kit/itsm-service/internal/sla"
)

func TestAlertService_EvaluateScenarios(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.openTicket(t, f.acmeClient, TicketCreateInput{ServiceID: strPtr("helpdesk")})
	f.openTicket(t, f.globexUser, TicketCreateInput{ServiceID: strPtr("hosting")})
	alerts := NewAlertService(sla.NewEvaluator(sla.DefaultThresholds()), nil, f.deps)

	f.clock.Set(t0.Add(23 * time.Hour))
	report, err := alerts.Evaluate(ctx, f.admin)
	require.NoError(t, err)
	require.Len(t, report.Alerts, 1)
	assert.Equal(t, ticket.ID, report.Alerts[0].TicketID)
	assert.Equal(t, domain.SLAAlertWarning, report.Alerts[0].Status)
	assert.InDelta(t, 1.0, *report.Alerts[0].HoursRemaining, 1e-9)

	f.clock.Set(t0.Add(25 * time.Hour))
	report, err = alerts.Evaluate(ctx, f.admin)
	require.NoError(t, err)
	require.Len(t, report.Alerts, 1)
	assert.Equal(t, domain.SLAAlertBreached, report.Alerts[0].Status)
	assert.InDelta(t, 1.0, *report.Alerts[0].HoursOverdue, 1e-9)
	assert.Equal(t, t0.Add(25*time.Hour), report.GeneratedAt)
}

func TestAlertService_ScopedToClient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.openTicket(t, f.acmeClient, TicketCreateInput{})
	f.clock.Set(t0.Add(30 * time.Hour))
	alerts := NewAlertService(nil, nil, f.deps)

	acme, err := alerts.Evaluate(ctx, f.acmeClient)
	require.NoError(t, err)
	assert.Len(t, acme.Alerts, 1)

	globex, err := alerts.Evaluate(ctx, f.globexUser)
	require.NoError(t, err)
	assert.NotNil(t, globex.Alerts)
	assert.Empty(t, globex.Alerts)

	orphan, err := alerts.Evaluate(ctx, f.orphanUser)
	require.NoError(t, err)
	assert.Empty(t, orphan.Alerts)
}

func TestAlertService_ResolvedTicketsDropOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.openTicket(t, f.acmeClient, TicketCreateInput{})
	alerts := NewAlertService(nil, nil, f.deps)

	f.clock.Set(t0.Add(30 * time.Hour))
	_, err := f.tickets().Transition(ctx, f.tech, ticket.ID, domain.TicketStatusResolved)
	require.NoError(t, err)

	report, err := alerts.EvaluateAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.Alerts)
}

func TestAlertService_LatestFiltersSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	snapshots := &persistence.MemoryAlertSnapshotStore{}
	alerts := NewAlertService(nil, snapshots, f.deps)

	generated := t0.Add(-time.Minute)
	_, err := snapshots.Save(ctx, persistence.AlertSnapshot{
		GeneratedAt: generated,
		Alerts: []domain.SLAAlert{
			{TicketID: "a", CompanyID: "acme", Status: domain.SLAAlertBreached},
			{TicketID: "g", CompanyID: "globex", Status: domain.SLAAlertWarning},
		},
	})
	require.NoError(t, err)

	report, err := alerts.Latest(ctx, f.globexUser)
	require.NoError(t, err)
	assert.Equal(t, generated, report.GeneratedAt)
	require.Len(t, report.Alerts, 1)
	assert.Equal(t, "g", report.Alerts[0].TicketID)

	report, err = alerts.Latest(ctx, f.tech)
	require.NoError(t, err)
	assert.Len(t, report.Alerts, 2)
}

func TestAlertService_LatestFallsBackToEvaluation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.openTicket(t, f.acmeClient, TicketCreateInput{})
	f.clock.Set(t0.Add(23 * time.Hour))
	alerts := NewAlertService(nil, &persistence.MemoryAlertSnapshotStore{}, f.deps)

	report, err := alerts.Latest(ctx, f.acmeClient)
	require.NoError(t, err)
	assert.Equal(t, t0.Add(23*time.Hour), report.GeneratedAt)
	assert.Len(t, report.Alerts, 1)
}
