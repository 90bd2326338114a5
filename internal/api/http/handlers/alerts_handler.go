package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/service"
)

// AlertsHandler serves SLA alert lists scoped to the caller.
type AlertsHandler struct {
	service *service.AlertService
}

// NewAlertsHandler constructs handler.
func NewAlertsHandler(alertService *service.AlertService) *AlertsHandler {
	return &AlertsHandler{service: alertService}
}

// Evaluate GET /api/alerts/sla.
func (h *AlertsHandler) Evaluate(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	report, err := h.service.Evaluate(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return alertsResponse(c, report)
}

// Latest GET /api/alerts/sla/latest.
func (h *AlertsHandler) Latest(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	report, err := h.service.Latest(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return alertsResponse(c, report)
}

func alertsResponse(c *fiber.Ctx, report *service.AlertReport) error {
	alerts := report.Alerts
	if alerts == nil {
		alerts = []domain.SLAAlert{}
	}
	return c.JSON(fiber.Map{
		"data":         alerts,
		"count":        len(alerts),
		"generated_at": report.GeneratedAt,
	})
}
