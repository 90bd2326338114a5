package service

import (
	"context"
	"errors"

	"github.com/spec-kit/itsm-service/internal/access"
	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/repository"
	apperrors "github.com/spec-kit/itsm-service/pkg/util"
)

// SystemConfigInput carries console settings; nil fields are left unchanged.
type SystemConfigInput struct {
	CompanyName  *string
	CustomFields map[string]any
}

// SystemConfigService reads and writes the console-wide settings.
type SystemConfigService struct {
	base
}

// NewSystemConfigService constructs the service.
func NewSystemConfigService(deps Dependencies) *SystemConfigService {
	return &SystemConfigService{base: newBase(deps)}
}

// Get returns the stored settings or the defaults. Any authenticated role may read them.
func (s *SystemConfigService) Get(ctx context.Context) (*domain.SystemConfig, error) {
	cfg, err := s.repos().SystemConfig.Get(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return &domain.SystemConfig{CompanyName: domain.DefaultCompanyName, CustomFields: map[string]any{}}, nil
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if cfg.CompanyName == "" {
		cfg.CompanyName = domain.DefaultCompanyName
	}
	if cfg.CustomFields == nil {
		cfg.CustomFields = map[string]any{}
	}
	return cfg, nil
}

// Update changes the settings.
func (s *SystemConfigService) Update(ctx context.Context, principal domain.Principal, input SystemConfigInput) (*domain.SystemConfig, error) {
	if err := s.access.Authorize(principal, access.EntitySystem, access.ActionUpdate, nil); err != nil {
		return nil, err
	}
	cfg, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	if input.CompanyName != nil {
		name := trimmed(*input.CompanyName)
		if name == "" {
			return nil, apperrors.NewValidationError("company name is required", map[string]any{"company_name": "is required"})
		}
		cfg.CompanyName = name
	}
	if input.CustomFields != nil {
		cfg.CustomFields = input.CustomFields
	}
	cfg.UpdatedAt = s.now()
	if err := s.repos().SystemConfig.Upsert(ctx, cfg); err != nil {
		return nil, apperrors.MapError(err)
	}
	return cfg, nil
}
