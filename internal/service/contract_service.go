package service

import (
	"context"
	"time"

	"github.com/spec-kit/itsm-service/internal/access"
	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/repository"
	apperrors "github.com/spec-kit/itsm-service/pkg/util"
)

// ContractInput carries contract fields. Dates are calendar days; zero means open.
// An empty Status defaults to active.
type ContractInput struct {
	CompanyID string
	ServiceID string
	StartDate time.Time
	EndDate   time.Time
	SLAHours  int
	Terms     string
	Status    domain.ContractStatus
}

// ContractListFilter narrows contract listings.
type ContractListFilter struct {
	CompanyID *string
	ServiceID *string
	Status    *domain.ContractStatus
	repository.Page
}

// ContractService manages SLA contracts.
type ContractService struct {
	base
}

// NewContractService constructs the service.
func NewContractService(deps Dependencies) *ContractService {
	return &ContractService{base: newBase(deps)}
}

// List returns the contracts visible to principal.
func (s *ContractService) List(ctx context.Context, principal domain.Principal, filter ContractListFilter) ([]domain.Contract, error) {
	if err := s.access.Authorize(principal, access.EntityContract, access.ActionRead, nil); err != nil {
		return nil, err
	}
	pinned, ok := clientCompany(principal)
	if !ok {
		return []domain.Contract{}, nil
	}
	repoFilter := repository.ContractFilter{CompanyID: filter.CompanyID, ServiceID: filter.ServiceID, Status: filter.Status, Page: filter.Page}
	if pinned != nil {
		repoFilter.CompanyID = pinned
	}
	contracts, err := s.repos().Contracts.List(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return access.Filter(contracts, s.access.ScopeFor(principal, access.EntityContract)), nil
}

// Get returns one contract.
func (s *ContractService) Get(ctx context.Context, principal domain.Principal, id string) (*domain.Contract, error) {
	contract, err := s.repos().Contracts.GetByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "contract", id)
	}
	if err := s.access.Authorize(principal, access.EntityContract, access.ActionRead, *contract); err != nil {
		return nil, err
	}
	return contract, nil
}

// Create adds a contract binding a company's service to an SLA.
func (s *ContractService) Create(ctx context.Context, principal domain.Principal, input ContractInput) (*domain.Contract, error) {
	if err := s.access.Authorize(principal, access.EntityContract, access.ActionCreate, nil); err != nil {
		return nil, err
	}
	now := s.now()
	contract := &domain.Contract{ID: s.newID(), CreatedAt: now, UpdatedAt: now}
	if err := applyContractInput(contract, input); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, contract); err != nil {
		return nil, err
	}
	if err := s.repos().Contracts.Create(ctx, contract); err != nil {
		return nil, repoError(err, "contract", contract.ID)
	}
	return contract, nil
}

// Update replaces the contract's fields.
func (s *ContractService) Update(ctx context.Context, principal domain.Principal, id string, input ContractInput) (*domain.Contract, error) {
	contract, err := s.repos().Contracts.GetByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "contract", id)
	}
	if err := s.access.Authorize(principal, access.EntityContract, access.ActionUpdate, *contract); err != nil {
		return nil, err
	}
	if err := applyContractInput(contract, input); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, contract); err != nil {
		return nil, err
	}
	contract.UpdatedAt = s.now()
	if err := s.repos().Contracts.Update(ctx, contract); err != nil {
		return nil, repoError(err, "contract", id)
	}
	return contract, nil
}

// Delete removes a contract.
func (s *ContractService) Delete(ctx context.Context, principal domain.Principal, id string) error {
	contract, err := s.repos().Contracts.GetByID(ctx, id)
	if err != nil {
		return repoError(err, "contract", id)
	}
	if err := s.access.Authorize(principal, access.EntityContract, access.ActionDelete, *contract); err != nil {
		return err
	}
	return repoError(s.repos().Contracts.Delete(ctx, id), "contract", id)
}

func (s *ContractService) checkReferences(ctx context.Context, c *domain.Contract) error {
	if err := ensureCompany(ctx, s.repos(), c.CompanyID); err != nil {
		return err
	}
	svc, err := s.repos().Services.GetByID(ctx, c.ServiceID)
	if err != nil {
		return repoError(err, "service", c.ServiceID)
	}
	if svc.CompanyID != c.CompanyID {
		return apperrors.NewValidationError("service belongs to another company",
			map[string]any{"service_id": c.ServiceID, "company_id": c.CompanyID})
	}
	return nil
}

func applyContractInput(c *domain.Contract, input ContractInput) error {
	details := map[string]any{}
	if trimmed(input.CompanyID) == "" {
		details["company_id"] = "is required"
	}
	if trimmed(input.ServiceID) == "" {
		details["service_id"] = "is required"
	}
	if input.SLAHours <= 0 {
		details["sla_hours"] = "must be greater than 0"
	}
	status := input.Status
	if status == "" {
		status = domain.ContractStatusActive
	}
	if !status.Valid() {
		details["status"] = "must be one of: active expired cancelled"
	}
	if !input.StartDate.IsZero() && !input.EndDate.IsZero() && input.EndDate.Before(input.StartDate) {
		details["end_date"] = "must not be before start_date"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid contract", details)
	}

	c.CompanyID = trimmed(input.CompanyID)
	c.ServiceID = trimmed(input.ServiceID)
	c.StartDate = input.StartDate
	c.EndDate = input.EndDate
	c.SLAHours = input.SLAHours
	c.Terms = input.Terms
	c.Status = status
	return nil
}
