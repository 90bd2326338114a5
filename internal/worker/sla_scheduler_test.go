package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/events"
	"github.com/spec-kit/itsm-service/internal/observability"
	"github.com/spec-kit/itsm-service/internal/persistence"
)

var t0 = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

type scriptedEvaluator struct {
	mu    sync.Mutex
	queue []*persistence.AlertSnapshot
	err   error
	calls int
}

func (e *scriptedEvaluator) EvaluateAll(context.Context) (*persistence.AlertSnapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	next := e.queue[0]
	if len(e.queue) > 1 {
		e.queue = e.queue[1:]
	}
	return next, nil
}

func (e *scriptedEvaluator) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

type eventLog struct {
	mu     sync.Mutex
	events []events.Event
}

func (l *eventLog) handle(_ context.Context, e events.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
	return nil
}

func (l *eventLog) all() []events.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]events.Event(nil), l.events...)
}

func snapshot(at time.Time, alerts ...domain.SLAAlert) *persistence.AlertSnapshot {
	return &persistence.AlertSnapshot{GeneratedAt: at, Alerts: alerts}
}

func alert(ticketID string, status domain.SLAAlertStatus) domain.SLAAlert {
	return domain.SLAAlert{TicketID: ticketID, CompanyID: "acme", ContractID: "k1", SLAHours: 24, Status: status}
}

func newTestScheduler(eval AlertEvaluator, snapshots persistence.AlertSnapshotStore, metrics *observability.Metrics) (*SLAScheduler, *eventLog) {
	log := &eventLog{}
	dispatcher := events.NewInMemoryDispatcher()
	dispatcher.Subscribe(events.EventSLAWarning, log.handle)
	dispatcher.Subscribe(events.EventSLABreached, log.handle)
	s := NewSLAScheduler(SLASchedulerConfig{
		Alerts:     eval,
		Snapshots:  snapshots,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Interval:   time.Hour,
	})
	return s, log
}

func TestSLAScheduler_AnnouncesOncePerTicketAndStatus(t *testing.T) {
	ctx := context.Background()
	eval := &scriptedEvaluator{queue: []*persistence.AlertSnapshot{
		snapshot(t0, alert("t1", domain.SLAAlertWarning)),
		snapshot(t0.Add(time.Minute), alert("t1", domain.SLAAlertWarning), alert("t2", domain.SLAAlertWarning)),
		snapshot(t0.Add(2*time.Minute), alert("t1", domain.SLAAlertBreached)),
	}}
	snapshots := &persistence.MemoryAlertSnapshotStore{}
	metrics := observability.NewMetrics()
	s, log := newTestScheduler(eval, snapshots, metrics)

	for i := 0; i < 3; i++ {
		_, err := s.RunOnce(ctx)
		require.NoError(t, err)
	}

	got := log.all()
	require.Len(t, got, 3)
	assert.Equal(t, events.EventSLAWarning, got[0].Type)
	assert.Equal(t, "t1", got[0].TicketID)
	assert.Equal(t, "t2", got[1].TicketID)
	assert.Equal(t, events.EventSLABreached, got[2].Type)
	assert.Equal(t, t0.Add(2*time.Minute), got[2].Timestamp)

	latest, err := snapshots.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, t0.Add(2*time.Minute), latest.GeneratedAt)

	m := metrics.Snapshot()
	assert.EqualValues(t, 3, m.SLARuns)
	assert.Equal(t, 1, m.LastSLAAlerts["breached"])
	assert.Equal(t, 0, m.LastSLAAlerts["warning"])
}

func TestSLAScheduler_OlderRunDoesNotReplaceSnapshot(t *testing.T) {
	ctx := context.Background()
	snapshots := &persistence.MemoryAlertSnapshotStore{}
	_, err := snapshots.Save(ctx, *snapshot(t0.Add(time.Hour), alert("new", domain.SLAAlertBreached)))
	require.NoError(t, err)

	s, _ := newTestScheduler(&scriptedEvaluator{queue: []*persistence.AlertSnapshot{snapshot(t0, alert("old", domain.SLAAlertWarning))}}, snapshots, nil)
	_, err = s.RunOnce(ctx)
	require.NoError(t, err)

	latest, err := snapshots.Latest(ctx)
	require.NoError(t, err)
	require.Len(t, latest.Alerts, 1)
	assert.Equal(t, "new", latest.Alerts[0].TicketID)
}

func TestSLAScheduler_RecordsFailures(t *testing.T) {
	metrics := observability.NewMetrics()
	s, log := newTestScheduler(&scriptedEvaluator{err: errors.New("db down")}, nil, metrics)

	_, err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.Empty(t, log.all())
	assert.EqualValues(t, 1, metrics.Snapshot().SLAFailures)
}

func TestSLAScheduler_StartRunsImmediatelyAndStops(t *testing.T) {
	eval := &scriptedEvaluator{queue: []*persistence.AlertSnapshot{snapshot(t0)}}
	s, _ := newTestScheduler(eval, nil, nil)

	s.Start(context.Background())
	require.Eventually(t, func() bool { return eval.Calls() >= 1 }, time.Second, 5*time.Millisecond)
	s.Stop()
	s.Stop()
	assert.Equal(t, 1, eval.Calls())
}
