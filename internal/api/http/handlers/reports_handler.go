package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/itsm-service/internal/api/dto"
	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/service"
	apperrors "github.com/spec-kit/itsm-service/pkg/util"
)

// ReportsHandler renders ticket and asset reports.
type ReportsHandler struct {
	service *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reports *service.ReportService) *ReportsHandler {
	return &ReportsHandler{service: reports}
}

// Tickets GET /api/reports/tickets?format=markdown|html&from=YYYY-MM-DD&to=YYYY-MM-DD.
func (h *ReportsHandler) Tickets(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	format, err := service.ParseReportFormat(c.Query("format"))
	if err != nil {
		return err
	}
	filter := service.TicketReportFilter{CompanyID: optionalQuery(c, "company_id")}
	if category := optionalQuery(c, "category"); category != nil {
		cat := domain.TicketCategory(*category)
		filter.Category = &cat
	}
	if filter.From, err = queryDay(c, "from"); err != nil {
		return err
	}
	if filter.To, err = queryDay(c, "to"); err != nil {
		return err
	}
	if filter.To != nil {
		end := filter.To.Add(24*time.Hour - time.Nanosecond)
		filter.To = &end
	}
	report, err := h.service.Tickets(c.UserContext(), principal, filter, format)
	if err != nil {
		return err
	}
	return sendReport(c, report)
}

// Assets GET /api/reports/assets?format=markdown|html.
func (h *ReportsHandler) Assets(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	format, err := service.ParseReportFormat(c.Query("format"))
	if err != nil {
		return err
	}
	report, err := h.service.Assets(c.UserContext(), principal, parseAssetFilter(c), format)
	if err != nil {
		return err
	}
	return sendReport(c, report)
}

func queryDay(c *fiber.Ctx, key string) (*time.Time, error) {
	val := c.Query(key)
	if val == "" {
		return nil, nil
	}
	day, err := dto.ParseDay(val)
	if err != nil {
		return nil, apperrors.NewValidationError("validation failed", map[string]any{key: "must be a date formatted as 2006-01-02"})
	}
	return &day, nil
}

func sendReport(c *fiber.Ctx, report *service.Report) error {
	c.Set(fiber.HeaderContentType, report.ContentType)
	return c.Send(report.Body)
}
