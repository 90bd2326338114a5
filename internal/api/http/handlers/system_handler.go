package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/itsm-service/internal/api/dto"
	"github.com/spec-kit/itsm-service/internal/service"
)

// SystemHandler exposes global settings.
type SystemHandler struct {
	service *service.SystemConfigService
}

// NewSystemHandler constructs handler.
func NewSystemHandler(settings *service.SystemConfigService) *SystemHandler {
	return &SystemHandler{service: settings}
}

// Get GET /api/system/config.
func (h *SystemHandler) Get(c *fiber.Ctx) error {
	cfg, err := h.service.Get(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromSystemConfig(cfg)})
}

// Update PUT /api/system/config.
func (h *SystemHandler) Update(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.SystemConfigRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	cfg, err := h.service.Update(c.UserContext(), principal, service.SystemConfigInput{
		CompanyName:  req.CompanyName,
		CustomFields: req.CustomFields,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromSystemConfig(cfg)})
}
