package service

import (
	"context"

	"github.com/spec-kit/itsm-service/internal/access"
	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/repository"
	apperrors "github.com/spec-kit/itsm-service/pkg/util"
)

// AssetInput carries asset fields. An empty Status defaults to active.
type AssetInput struct {
	CompanyID           string
	AssetType           string
	Manufacturer        string
	Model               string
	SerialNumber        string
	HostName            string
	Location            string
	Status              domain.AssetStatus
	IPAddress           string
	OperatingSystem     string
	OSVersion           string
	CPU                 string
	RAMGB               string
	Storage             string
	PurchaseDate        string
	PurchaseValue       string
	WarrantyExpiration  string
	SupportProvider     string
	EstimatedLifeMonths *int
	Notes               string
}

// AssetListFilter narrows asset listings.
type AssetListFilter struct {
	CompanyID *string
	Status    *domain.AssetStatus
	AssetType *string
	repository.Page
}

// AssetService manages company assets.
type AssetService struct {
	base
}

// NewAssetService constructs the service.
func NewAssetService(deps Dependencies) *AssetService {
	return &AssetService{base: newBase(deps)}
}

// List returns the assets visible to principal.
func (s *AssetService) List(ctx context.Context, principal domain.Principal, filter AssetListFilter) ([]domain.Asset, error) {
	if err := s.access.Authorize(principal, access.EntityAsset, access.ActionRead, nil); err != nil {
		return nil, err
	}
	pinned, ok := clientCompany(principal)
	if !ok {
		return []domain.Asset{}, nil
	}
	repoFilter := repository.AssetFilter{CompanyID: filter.CompanyID, Status: filter.Status, AssetType: filter.AssetType, Page: filter.Page}
	if pinned != nil {
		repoFilter.CompanyID = pinned
	}
	assets, err := s.repos().Assets.List(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return access.Filter(assets, s.access.ScopeFor(principal, access.EntityAsset)), nil
}

// Get returns one asset.
func (s *AssetService) Get(ctx context.Context, principal domain.Principal, id string) (*domain.Asset, error) {
	asset, err := s.repos().Assets.GetByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "asset", id)
	}
	if err := s.access.Authorize(principal, access.EntityAsset, access.ActionRead, *asset); err != nil {
		return nil, err
	}
	return asset, nil
}

// Create adds an asset to an existing company.
func (s *AssetService) Create(ctx context.Context, principal domain.Principal, input AssetInput) (*domain.Asset, error) {
	now := s.now()
	asset := &domain.Asset{ID: s.newID(), CreatedAt: now}
	if err := applyAssetInput(asset, input); err != nil {
		return nil, err
	}
	asset.UpdatedAt = now
	if err := s.access.Authorize(principal, access.EntityAsset, access.ActionCreate, *asset); err != nil {
		return nil, err
	}
	if err := ensureCompany(ctx, s.repos(), asset.CompanyID); err != nil {
		return nil, err
	}
	if err := s.repos().Assets.Create(ctx, asset); err != nil {
		return nil, repoError(err, "asset", asset.ID)
	}
	return asset, nil
}

// Update replaces the asset's fields.
func (s *AssetService) Update(ctx context.Context, principal domain.Principal, id string, input AssetInput) (*domain.Asset, error) {
	asset, err := s.repos().Assets.GetByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "asset", id)
	}
	if err := s.access.Authorize(principal, access.EntityAsset, access.ActionUpdate, *asset); err != nil {
		return nil, err
	}
	if err := applyAssetInput(asset, input); err != nil {
		return nil, err
	}
	if err := s.access.Authorize(principal, access.EntityAsset, access.ActionUpdate, *asset); err != nil {
		return nil, err
	}
	if err := ensureCompany(ctx, s.repos(), asset.CompanyID); err != nil {
		return nil, err
	}
	asset.UpdatedAt = s.now()
	if err := s.repos().Assets.Update(ctx, asset); err != nil {
		return nil, repoError(err, "asset", id)
	}
	return asset, nil
}

// Delete removes an asset. Tickets referencing it keep existing without the reference.
func (s *AssetService) Delete(ctx context.Context, principal domain.Principal, id string) error {
	asset, err := s.repos().Assets.GetByID(ctx, id)
	if err != nil {
		return repoError(err, "asset", id)
	}
	if err := s.access.Authorize(principal, access.EntityAsset, access.ActionDelete, *asset); err != nil {
		return err
	}
	return repoError(s.repos().Assets.Delete(ctx, id), "asset", id)
}

func applyAssetInput(a *domain.Asset, input AssetInput) error {
	status := input.Status
	if status == "" {
		status = domain.AssetStatusActive
	}
	if !status.Valid() {
		return apperrors.NewValidationError("invalid asset status", map[string]any{"status": string(status)})
	}
	if trimmed(input.CompanyID) == "" {
		return apperrors.NewValidationError("asset requires a company", map[string]any{"company_id": "is required"})
	}
	a.CompanyID = trimmed(input.CompanyID)
	a.AssetType = trimmed(input.AssetType)
	a.Manufacturer = trimmed(input.Manufacturer)
	a.Model = trimmed(input.Model)
	a.SerialNumber = trimmed(input.SerialNumber)
	a.HostName = trimmed(input.HostName)
	a.Location = trimmed(input.Location)
	a.Status = status
	a.IPAddress = trimmed(input.IPAddress)
	a.OperatingSystem = trimmed(input.OperatingSystem)
	a.OSVersion = trimmed(input.OSVersion)
	a.CPU = trimmed(input.CPU)
	a.RAMGB = trimmed(input.RAMGB)
	a.Storage = trimmed(input.Storage)
	a.PurchaseDate = trimmed(input.PurchaseDate)
	a.PurchaseValue = trimmed(input.PurchaseValue)
	a.WarrantyExpiration = trimmed(input.WarrantyExpiration)
	a.SupportProvider = trimmed(input.SupportProvider)
	a.EstimatedLifeMonths = input.EstimatedLifeMonths
	a.Notes = input.Notes
	return nil
}

func ensureCompany(ctx context.Context, repos repository.Repositories, companyID string) error {
	if _, err := repos.Companies.GetByID(ctx, companyID); err != nil {
		return repoError(err, "company", companyID)
	}
	return nil
}
