package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/itsm-service/internal/api/dto"
	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/service"
	apperrors "github.com/spec-kit/itsm-service/pkg/util"
)

// ContractsHandler manages service contracts and their SLA hours.
type ContractsHandler struct {
	service *service.ContractService
}

// NewContractsHandler constructs handler.
func NewContractsHandler(contractService *service.ContractService) *ContractsHandler {
	return &ContractsHandler{service: contractService}
}

// List GET /api/contracts.
func (h *ContractsHandler) List(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	filter := service.ContractListFilter{
		CompanyID: optionalQuery(c, "company_id"),
		ServiceID: optionalQuery(c, "service_id"),
		Page:      parsePage(c),
	}
	if status := optionalQuery(c, "status"); status != nil {
		s := domain.ContractStatus(*status)
		filter.Status = &s
	}
	items, err := h.service.List(c.UserContext(), principal, filter)
	if err != nil {
		return err
	}
	return listResponse(c, dto.FromContracts(items), len(items))
}

// Get GET /api/contracts/:id.
func (h *ContractsHandler) Get(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	contract, err := h.service.Get(c.UserContext(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromContract(contract)})
}

// Create POST /api/contracts.
func (h *ContractsHandler) Create(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	input, err := parseContract(c)
	if err != nil {
		return err
	}
	contract, err := h.service.Create(c.UserContext(), principal, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromContract(contract)})
}

// Update PUT /api/contracts/:id.
func (h *ContractsHandler) Update(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	input, err := parseContract(c)
	if err != nil {
		return err
	}
	contract, err := h.service.Update(c.UserContext(), principal, c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromContract(contract)})
}

// Delete DELETE /api/contracts/:id.
func (h *ContractsHandler) Delete(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), principal, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func parseContract(c *fiber.Ctx) (service.ContractInput, error) {
	var req dto.ContractRequest
	if err := parseBody(c, &req); err != nil {
		return service.ContractInput{}, err
	}
	start, err := dto.ParseDay(req.StartDate)
	if err != nil {
		return service.ContractInput{}, apperrors.NewValidationError("validation failed", map[string]any{"start_date": "must be a date formatted as 2006-01-02"})
	}
	end, err := dto.ParseDay(req.EndDate)
	if err != nil {
		return service.ContractInput{}, apperrors.NewValidationError("validation failed", map[string]any{"end_date": "must be a date formatted as 2006-01-02"})
	}
	return service.ContractInput{
		CompanyID: req.CompanyID,
		ServiceID: req.ServiceID,
		StartDate: start,
		EndDate:   end,
		SLAHours:  req.SLAHours,
		Terms:     req.Terms,
		Status:    req.Status,
	}, nil
}
