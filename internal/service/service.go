package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/itsm-service/internal/access"
	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/events"
	"github.com/spec-kit/itsm-service/internal/repository"
	apperrors "github.com/spec-kit/itsm-service/pkg/util"
)

// Dependencies bundles what every service needs.
type Dependencies struct {
	Store      repository.Store
	Access     *access.Resolver
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	// Now defaults to time.Now in UTC.
	Now func() time.Time
	// NewID defaults to uuid.NewString.
	NewID func() string
}

type base struct {
	store      repository.Store
	access     *access.Resolver
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
	newID      func() string
}

func newBase(deps Dependencies) base {
	b := base{
		store:      deps.Store,
		access:     deps.Access,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		now:        deps.Now,
		newID:      deps.NewID,
	}
	if b.logger == nil {
		b.logger = zap.NewNop()
	}
	if b.now == nil {
		b.now = func() time.Time { return time.Now().UTC() }
	}
	if b.newID == nil {
		b.newID = uuid.NewString
	}
	return b
}

func (b base) repos() repository.Repositories {
	return b.store.Repos()
}

func (b base) publishEvent(ctx context.Context, event events.Event) {
	if b.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = b.newID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = b.now()
	}
	if err := b.dispatcher.Publish(ctx, event); err != nil {
		b.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.Error(err))
	}
}

// repoError converts repository sentinel errors into domain errors for resource.
func repoError(err error, resource, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	case errors.Is(err, repository.ErrConflict):
		return apperrors.NewConflict(resource+" conflicts with existing data", map[string]any{"id": id})
	default:
		return apperrors.MapError(err)
	}
}

// clientCompany returns the company a client is pinned to. ok is false for a client
// without a company, whose scope is empty.
func clientCompany(p domain.Principal) (filter *string, ok bool) {
	if p.Role != domain.RoleClient {
		return nil, true
	}
	companyID := p.Company()
	if companyID == "" {
		return nil, false
	}
	return &companyID, true
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}

func optionalID(id *string) *string {
	if id == nil {
		return nil
	}
	v := strings.TrimSpace(*id)
	if v == "" {
		return nil
	}
	return &v
}

func preview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	return string(runes[:max]) + "..."
}
