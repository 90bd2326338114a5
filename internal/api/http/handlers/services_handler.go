package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/itsm-service/internal/api/dto"
	"github.com/spec-kit/itsm-service/internal/service"
)

// ServicesHandler manages contracted services.
type ServicesHandler struct {
	service *service.CatalogService
}

// NewServicesHandler constructs handler.
func NewServicesHandler(catalog *service.CatalogService) *ServicesHandler {
	return &ServicesHandler{service: catalog}
}

// List GET /api/services.
func (h *ServicesHandler) List(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	items, err := h.service.List(c.UserContext(), principal, optionalQuery(c, "company_id"), parsePage(c))
	if err != nil {
		return err
	}
	return listResponse(c, dto.FromServices(items), len(items))
}

// Get GET /api/services/:id.
func (h *ServicesHandler) Get(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	svc, err := h.service.Get(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromService(svc)})
}

// Create POST /api/services.
func (h *ServicesHandler) Create(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.ServiceRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	svc, err := h.service.Create(c.UserContext(), principal, serviceInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromService(svc)})
}

// Update PUT /api/services/:id.
func (h *ServicesHandler) Update(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.ServiceRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	svc, err := h.service.Update(c.UserContext(), principal, c.Params("id"), serviceInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromService(svc)})
}

// Delete DELETE /api/services/:id.
func (h *ServicesHandler) Delete(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), principal, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func serviceInput(req dto.ServiceRequest) service.ServiceInput {
	return service.ServiceInput{
		CompanyID:        req.CompanyID,
		ServiceType:      req.ServiceType,
		Name:             req.Name,
		Description:      req.Description,
		BillingPeriod:    req.BillingPeriod,
		Cost:             req.Cost,
		ExternalProvider: req.ExternalProvider,
		AssociatedDomain: req.AssociatedDomain,
		LicensesQuantity: req.LicensesQuantity,
		StartDate:        req.StartDate,
		ExpirationDate:   req.ExpirationDate,
	}
}
