package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/itsm-service/internal/access"
	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/repository"
	apperrors "github.com/spec-kit/itsm-service/pkg/util"
)

// CompanyInput carries company fields.
type CompanyInput struct {
	Name          string
	ContactPerson string
	Email         string
	Phone         string
	Address       string
}

// CompanyService manages client companies.
type CompanyService struct {
	base
}

// NewCompanyService constructs the service.
func NewCompanyService(deps Dependencies) *CompanyService {
	return &CompanyService{base: newBase(deps)}
}

// List returns the companies visible to principal.
func (s *CompanyService) List(ctx context.Context, principal domain.Principal, page repository.Page) ([]domain.Company, error) {
	if err := s.access.Authorize(principal, access.EntityCompany, access.ActionRead, nil); err != nil {
		return nil, err
	}
	pinned, ok := clientCompany(principal)
	if !ok {
		return []domain.Company{}, nil
	}
	if pinned != nil {
		company, err := s.repos().Companies.GetByID(ctx, *pinned)
		if err != nil {
			return []domain.Company{}, nil
		}
		return []domain.Company{*company}, nil
	}
	companies, err := s.repos().Companies.List(ctx, page)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return access.Filter(companies, s.access.ScopeFor(principal, access.EntityCompany)), nil
}

// Get returns one company.
func (s *CompanyService) Get(ctx context.Context, principal domain.Principal, id string) (*domain.Company, error) {
	company, err := s.repos().Companies.GetByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "company", id)
	}
	if err := s.access.Authorize(principal, access.EntityCompany, access.ActionRead, *company); err != nil {
		return nil, err
	}
	return company, nil
}

// Create adds a company.
func (s *CompanyService) Create(ctx context.Context, principal domain.Principal, input CompanyInput) (*domain.Company, error) {
	if err := s.access.Authorize(principal, access.EntityCompany, access.ActionCreate, nil); err != nil {
		return nil, err
	}
	now := s.now()
	company := &domain.Company{ID: s.newID(), CreatedAt: now}
	applyCompanyInput(company, input, now)
	if err := s.repos().Companies.Create(ctx, company); err != nil {
		return nil, repoError(err, "company", company.ID)
	}
	s.logger.Info("company created", zap.String("company_id", company.ID))
	return company, nil
}

// Update replaces the company's fields.
func (s *CompanyService) Update(ctx context.Context, principal domain.Principal, id string, input CompanyInput) (*domain.Company, error) {
	company, err := s.repos().Companies.GetByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "company", id)
	}
	if err := s.access.Authorize(principal, access.EntityCompany, access.ActionUpdate, *company); err != nil {
		return nil, err
	}
	applyCompanyInput(company, input, s.now())
	if err := s.repos().Companies.Update(ctx, company); err != nil {
		return nil, repoError(err, "company", id)
	}
	return company, nil
}

// Delete removes a company that owns nothing.
func (s *CompanyService) Delete(ctx context.Context, principal domain.Principal, id string) error {
	company, err := s.repos().Companies.GetByID(ctx, id)
	if err != nil {
		return repoError(err, "company", id)
	}
	if err := s.access.Authorize(principal, access.EntityCompany, access.ActionDelete, *company); err != nil {
		return err
	}
	return repoError(s.repos().Companies.Delete(ctx, id), "company", id)
}

func applyCompanyInput(c *domain.Company, input CompanyInput, now time.Time) {
	c.Name = trimmed(input.Name)
	c.ContactPerson = trimmed(input.ContactPerson)
	c.Email = normalizeEmail(input.Email)
	c.Phone = trimmed(input.Phone)
	c.Address = trimmed(input.Address)
	c.UpdatedAt = now
}
