package worker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/events"
	"github.com/spec-kit/itsm-service/internal/observability"
	"github.com/spec-kit/itsm-service/internal/persistence"
	"github.com/spec-kit/itsm-service/internal/sla"
)

// AlertEvaluator produces a company-wide alert report.
type AlertEvaluator interface {
	EvaluateAll(ctx context.Context) (*persistence.AlertSnapshot, error)
}

// SLASchedulerConfig bundles the scheduler collaborators.
type SLASchedulerConfig struct {
	Alerts     AlertEvaluator
	Snapshots  persistence.AlertSnapshotStore
	Marker     persistence.NotifyOnceMarker
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	Interval   time.Duration
	// DedupeWindow is how long an alert for the same ticket and status stays quiet.
	DedupeWindow time.Duration
}

// SLAScheduler periodically evaluates SLA compliance, stores the newest snapshot and
// announces new warnings and breaches.
// - Runs once on start, then every Interval
// - Overlapping runs are safe: older snapshots never replace newer ones
type SLAScheduler struct {
	cfg      SLASchedulerConfig
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewSLAScheduler builds a scheduler.
func NewSLAScheduler(cfg SLASchedulerConfig) *SLAScheduler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.DedupeWindow <= 0 {
		cfg.DedupeWindow = 24 * time.Hour
	}
	if cfg.Snapshots == nil {
		cfg.Snapshots = &persistence.MemoryAlertSnapshotStore{}
	}
	if cfg.Marker == nil {
		cfg.Marker = persistence.NewMemoryNotifyMarker(time.Now)
	}
	return &SLAScheduler{cfg: cfg, stopChan: make(chan struct{})}
}

// Start launches the evaluation loop and returns immediately.
func (s *SLAScheduler) Start(ctx context.Context) {
	s.cfg.Logger.Info("starting sla scheduler", zap.Duration("interval", s.cfg.Interval))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop(ctx)
	}()
}

// Stop ends the loop and waits for a running evaluation to finish. Safe to call more
// than once.
func (s *SLAScheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
		s.cfg.Logger.Info("sla scheduler stopped")
	})
}

func (s *SLAScheduler) loop(ctx context.Context) {
	s.runLogged(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.runLogged(ctx)
		}
	}
}

func (s *SLAScheduler) runLogged(ctx context.Context) {
	if _, err := s.RunOnce(ctx); err != nil {
		s.cfg.Logger.Error("sla evaluation failed", zap.Error(err))
	}
}

// RunOnce performs a single evaluation and returns its snapshot.
func (s *SLAScheduler) RunOnce(ctx context.Context) (*persistence.AlertSnapshot, error) {
	started := time.Now()
	snap, err := s.cfg.Alerts.EvaluateAll(ctx)
	if err != nil {
		s.cfg.Metrics.RecordSLARun(started, 0, 0, err)
		return nil, err
	}
	warnings, breaches := sla.Count(snap.Alerts)

	stored, err := s.cfg.Snapshots.Save(ctx, *snap)
	if err != nil {
		s.cfg.Metrics.RecordSLARun(snap.GeneratedAt, warnings, breaches, err)
		return nil, err
	}
	if !stored {
		s.cfg.Logger.Debug("newer sla snapshot already stored", zap.Time("generated_at", snap.GeneratedAt))
	}

	announced := 0
	for _, alert := range snap.Alerts {
		if s.announce(ctx, alert, snap.GeneratedAt) {
			announced++
		}
	}
	s.cfg.Metrics.RecordSLARun(snap.GeneratedAt, warnings, breaches, nil)

	s.cfg.Logger.Info("sla evaluation completed",
		zap.Int("warnings", warnings),
		zap.Int("breaches", breaches),
		zap.Int("announced", announced),
		zap.Duration("duration", time.Since(started)))
	return snap, nil
}

func (s *SLAScheduler) announce(ctx context.Context, alert domain.SLAAlert, at time.Time) bool {
	if s.cfg.Dispatcher == nil {
		return false
	}
	first, err := s.cfg.Marker.MarkOnce(ctx, alert.TicketID+":"+string(alert.Status), s.cfg.DedupeWindow)
	if err != nil {
		s.cfg.Logger.Warn("notify marker unavailable", zap.String("ticket_id", alert.TicketID), zap.Error(err))
		return false
	}
	if !first {
		return false
	}

	eventType := events.EventSLAWarning
	if alert.Status == domain.SLAAlertBreached {
		eventType = events.EventSLABreached
	}
	err = s.cfg.Dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  alert.TicketID,
		CompanyID: alert.CompanyID,
		Timestamp: at,
		Payload:   events.SLAAlertPayload{Alert: alert},
	})
	if err != nil {
		s.cfg.Logger.Warn("sla alert handler failed", zap.String("ticket_id", alert.TicketID), zap.Error(err))
	}
	return true
}
