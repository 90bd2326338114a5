package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/itsm-service/internal/api/dto"
	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/service"
)

// AssetsHandler manages the hardware inventory.
type AssetsHandler struct {
	service *service.AssetService
}

// NewAssetsHandler constructs handler.
func NewAssetsHandler(assetService *service.AssetService) *AssetsHandler {
	return &AssetsHandler{service: assetService}
}

// List GET /api/assets.
func (h *AssetsHandler) List(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	assets, err := h.service.List(c.UserContext(), principal, parseAssetFilter(c))
	if err != nil {
		return err
	}
	return listResponse(c, dto.FromAssets(assets), len(assets))
}

// Get GET /api/assets/:id.
func (h *AssetsHandler) Get(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	asset, err := h.service.Get(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromAsset(asset)})
}

// Create POST /api/assets.
func (h *AssetsHandler) Create(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.AssetRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	asset, err := h.service.Create(c.UserContext(), principal, assetInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromAsset(asset)})
}

// Update PUT /api/assets/:id.
func (h *AssetsHandler) Update(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.AssetRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	asset, err := h.service.Update(c.UserContext(), principal, c.Params("id"), assetInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromAsset(asset)})
}

// Delete DELETE /api/assets/:id.
func (h *AssetsHandler) Delete(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), principal, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func parseAssetFilter(c *fiber.Ctx) service.AssetListFilter {
	filter := service.AssetListFilter{
		CompanyID: optionalQuery(c, "company_id"),
		AssetType: optionalQuery(c, "asset_type"),
		Page:      parsePage(c),
	}
	if status := optionalQuery(c, "status"); status != nil {
		s := domain.AssetStatus(*status)
		filter.Status = &s
	}
	return filter
}

func assetInput(req dto.AssetRequest) service.AssetInput {
	return service.AssetInput{
		CompanyID:           req.CompanyID,
		AssetType:           req.AssetType,
		Manufacturer:        req.Manufacturer,
		Model:               req.Model,
		SerialNumber:        req.SerialNumber,
		HostName:            req.HostName,
		Location:            req.Location,
		Status:              req.Status,
		IPAddress:           req.IPAddress,
		OperatingSystem:     req.OperatingSystem,
		OSVersion:           req.OSVersion,
		CPU:                 req.CPU,
		RAMGB:               req.RAMGB,
		Storage:             req.Storage,
		PurchaseDate:        req.PurchaseDate,
		PurchaseValue:       req.PurchaseValue,
		WarrantyExpiration:  req.WarrantyExpiration,
		SupportProvider:     req.SupportProvider,
		EstimatedLifeMonths: req.EstimatedLifeMonths,
		Notes:               req.Notes,
	}
}
