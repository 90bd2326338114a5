package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/itsm-service/internal/access"
	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/persistence"
	"github.com/spec-kit/itsm-service/internal/repository"
	"github.com/spec-kit/itsm-service/internal/sla"
	apperrors "github.com/spec-kit/itsm-service/pkg/util"
)

// AlertReport is the result returned to callers of the alert endpoints.
type AlertReport = persistence.AlertSnapshot

// AlertService evaluates SLA compliance of pending tickets.
type AlertService struct {
	base
	evaluator *sla.Evaluator
	snapshots persistence.AlertSnapshotStore
}

// NewAlertService constructs the service. snapshots may be nil, in which case every
// read evaluates on demand.
func NewAlertService(evaluator *sla.Evaluator, snapshots persistence.AlertSnapshotStore, deps Dependencies) *AlertService {
	if evaluator == nil {
		evaluator = sla.NewEvaluator(sla.DefaultThresholds())
	}
	return &AlertService{base: newBase(deps), evaluator: evaluator, snapshots: snapshots}
}

// Evaluate computes the alerts visible to principal at the current time.
func (s *AlertService) Evaluate(ctx context.Context, principal domain.Principal) (*AlertReport, error) {
	if err := s.access.Authorize(principal, access.EntityTicket, access.ActionRead, nil); err != nil {
		return nil, err
	}
	pinned, ok := clientCompany(principal)
	if !ok {
		return &AlertReport{GeneratedAt: s.now(), Alerts: []domain.SLAAlert{}}, nil
	}
	report, err := s.evaluate(ctx, pinned)
	if err != nil {
		return nil, err
	}
	report.Alerts = access.Filter(report.Alerts, s.access.ScopeFor(principal, access.EntityTicket))
	return report, nil
}

// EvaluateAll computes alerts across every company. It is meant for trusted callers
// such as the scheduler.
func (s *AlertService) EvaluateAll(ctx context.Context) (*AlertReport, error) {
	return s.evaluate(ctx, nil)
}

// Latest returns the newest scheduled snapshot narrowed to principal, evaluating on
// demand when none is stored.
func (s *AlertService) Latest(ctx context.Context, principal domain.Principal) (*AlertReport, error) {
	if s.snapshots == nil {
		return s.Evaluate(ctx, principal)
	}
	if err := s.access.Authorize(principal, access.EntityTicket, access.ActionRead, nil); err != nil {
		return nil, err
	}
	snap, err := s.snapshots.Latest(ctx)
	if err != nil {
		s.logger.Warn("alert snapshot unavailable", zap.Error(err))
		return s.Evaluate(ctx, principal)
	}
	if snap == nil {
		return s.Evaluate(ctx, principal)
	}
	return &AlertReport{
		GeneratedAt: snap.GeneratedAt,
		Alerts:      access.Filter(snap.Alerts, s.access.ScopeFor(principal, access.EntityTicket)),
	}, nil
}

// Evaluator exposes the configured evaluator.
func (s *AlertService) Evaluator() *sla.Evaluator {
	return s.evaluator
}

func (s *AlertService) evaluate(ctx context.Context, companyID *string) (*AlertReport, error) {
	repos := s.repos()
	tickets, err := repos.Tickets.List(ctx, repository.TicketFilter{
		CompanyID: companyID,
		Statuses:  []domain.TicketStatus{domain.TicketStatusOpen, domain.TicketStatusInProgress},
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	contracts, err := repos.Contracts.List(ctx, repository.ContractFilter{CompanyID: companyID})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	now := s.now()
	return &AlertReport{GeneratedAt: now, Alerts: s.evaluator.Evaluate(now, tickets, contracts)}, nil
}
