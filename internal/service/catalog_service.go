package service

import (
	"context"

	"github.com/spec-kit/itsm-service/internal/access"
	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/repository"
	apperrors "github.com/spec-kit/itsm-service/pkg/util"
)

// ServiceInput carries contracted service fields.
type ServiceInput struct {
	CompanyID        string
	ServiceType      string
	Name             string
	Description      string
	BillingPeriod    string
	Cost             string
	ExternalProvider string
	AssociatedDomain string
	LicensesQuantity *int
	StartDate        string
	ExpirationDate   string
}

// CatalogService manages the services delivered to companies.
type CatalogService struct {
	base
}

// NewCatalogService constructs the service.
func NewCatalogService(deps Dependencies) *CatalogService {
	return &CatalogService{base: newBase(deps)}
}

// List returns the services visible to principal.
func (s *CatalogService) List(ctx context.Context, principal domain.Principal, companyID *string, page repository.Page) ([]domain.Service, error) {
	if err := s.access.Authorize(principal, access.EntityService, access.ActionRead, nil); err != nil {
		return nil, err
	}
	pinned, ok := clientCompany(principal)
	if !ok {
		return []domain.Service{}, nil
	}
	filter := repository.ServiceFilter{CompanyID: companyID, Page: page}
	if pinned != nil {
		filter.CompanyID = pinned
	}
	services, err := s.repos().Services.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return access.Filter(services, s.access.ScopeFor(principal, access.EntityService)), nil
}

// Get returns one service.
func (s *CatalogService) Get(ctx context.Context, principal domain.Principal, id string) (*domain.Service, error) {
	svc, err := s.repos().Services.GetByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "service", id)
	}
	if err := s.access.Authorize(principal, access.EntityService, access.ActionRead, *svc); err != nil {
		return nil, err
	}
	return svc, nil
}

// Create adds a service for an existing company.
func (s *CatalogService) Create(ctx context.Context, principal domain.Principal, input ServiceInput) (*domain.Service, error) {
	now := s.now()
	svc := &domain.Service{ID: s.newID(), CreatedAt: now, UpdatedAt: now}
	if err := applyServiceInput(svc, input); err != nil {
		return nil, err
	}
	if err := s.access.Authorize(principal, access.EntityService, access.ActionCreate, *svc); err != nil {
		return nil, err
	}
	if err := ensureCompany(ctx, s.repos(), svc.CompanyID); err != nil {
		return nil, err
	}
	if err := s.repos().Services.Create(ctx, svc); err != nil {
		return nil, repoError(err, "service", svc.ID)
	}
	return svc, nil
}

// Update replaces the service's fields.
func (s *CatalogService) Update(ctx context.Context, principal domain.Principal, id string, input ServiceInput) (*domain.Service, error) {
	svc, err := s.repos().Services.GetByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "service", id)
	}
	if err := s.access.Authorize(principal, access.EntityService, access.ActionUpdate, *svc); err != nil {
		return nil, err
	}
	if err := applyServiceInput(svc, input); err != nil {
		return nil, err
	}
	if err := s.access.Authorize(principal, access.EntityService, access.ActionUpdate, *svc); err != nil {
		return nil, err
	}
	if err := ensureCompany(ctx, s.repos(), svc.CompanyID); err != nil {
		return nil, err
	}
	svc.UpdatedAt = s.now()
	if err := s.repos().Services.Update(ctx, svc); err != nil {
		return nil, repoError(err, "service", id)
	}
	return svc, nil
}

// Delete removes a service that no contract references.
func (s *CatalogService) Delete(ctx context.Context, principal domain.Principal, id string) error {
	svc, err := s.repos().Services.GetByID(ctx, id)
	if err != nil {
		return repoError(err, "service", id)
	}
	if err := s.access.Authorize(principal, access.EntityService, access.ActionDelete, *svc); err != nil {
		return err
	}
	return repoError(s.repos().Services.Delete(ctx, id), "service", id)
}

func applyServiceInput(svc *domain.Service, input ServiceInput) error {
	if trimmed(input.CompanyID) == "" {
		return apperrors.NewValidationError("service requires a company", map[string]any{"company_id": "is required"})
	}
	if trimmed(input.Name) == "" {
		return apperrors.NewValidationError("service requires a name", map[string]any{"name": "is required"})
	}
	svc.CompanyID = trimmed(input.CompanyID)
	svc.ServiceType = trimmed(input.ServiceType)
	svc.Name = trimmed(input.Name)
	svc.Description = input.Description
	svc.BillingPeriod = trimmed(input.BillingPeriod)
	svc.Cost = trimmed(input.Cost)
	svc.ExternalProvider = trimmed(input.ExternalProvider)
	svc.AssociatedDomain = trimmed(input.AssociatedDomain)
	svc.LicensesQuantity = input.LicensesQuantity
	svc.StartDate = trimmed(input.StartDate)
	svc.ExpirationDate = trimmed(input.ExpirationDate)
	return nil
}
