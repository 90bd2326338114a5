package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/spec-kit/itsm-service/internal/domain"
	apperrors "github.com/spec-kit/itsm-service/pkg/util"
)

// ReportFormat selects the report encoding.
type ReportFormat string

const (
	ReportFormatMarkdown ReportFormat = "markdown"
	ReportFormatHTML     ReportFormat = "html"
)

// ParseReportFormat maps a query value to a format. Empty means markdown.
func ParseReportFormat(v string) (ReportFormat, error) {
	switch ReportFormat(strings.ToLower(strings.TrimSpace(v))) {
	case "", ReportFormatMarkdown:
		return ReportFormatMarkdown, nil
	case ReportFormatHTML:
		return ReportFormatHTML, nil
	}
	return "", apperrors.NewValidationError("unsupported report format", map[string]any{"format": v})
}

// Report is a rendered document.
type Report struct {
	Title       string
	Format      ReportFormat
	ContentType string
	Body        []byte
}

// TicketReportFilter narrows the ticket report. From and To bound created_at inclusively.
type TicketReportFilter struct {
	CompanyID *string
	Category  *domain.TicketCategory
	From      *time.Time
	To        *time.Time
}

// ReportService renders ticket and asset listings. Visibility comes from the listing
// services so a report never shows more than the matching list endpoint.
type ReportService struct {
	tickets   *TicketService
	assets    *AssetService
	companies *CompanyService
	settings  *SystemConfigService
	md        goldmark.Markdown
	policy    *bluemonday.Policy
}

// NewReportService constructs the service.
func NewReportService(tickets *TicketService, assets *AssetService, companies *CompanyService, settings *SystemConfigService) *ReportService {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Table),
		goldmark.WithRendererOptions(html.WithXHTML()),
	)
	return &ReportService{
		tickets:   tickets,
		assets:    assets,
		companies: companies,
		settings:  settings,
		md:        md,
		policy:    bluemonday.UGCPolicy(),
	}
}

// Tickets renders the ticket report.
func (s *ReportService) Tickets(ctx context.Context, principal domain.Principal, filter TicketReportFilter, format ReportFormat) (*Report, error) {
	tickets, err := s.tickets.ListTickets(ctx, principal, TicketListFilter{CompanyID: filter.CompanyID, Category: filter.Category})
	if err != nil {
		return nil, err
	}
	title, err := s.title(ctx, "Ticket report")
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	if filter.From != nil && filter.To != nil {
		fmt.Fprintf(&b, "Period: %s to %s\n\n", filter.From.Format(time.DateOnly), filter.To.Format(time.DateOnly))
	}
	b.WriteString("| ID | Title | Category | Priority | Status | Created |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	count := 0
	for _, t := range tickets {
		if filter.From != nil && t.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && t.CreatedAt.After(*filter.To) {
			continue
		}
		count++
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			shortID(t.ID), cell(t.Title), cell(string(t.Category)), t.Priority, t.Status,
			t.CreatedAt.Format(time.DateOnly))
	}
	fmt.Fprintf(&b, "\n**Total tickets:** %d\n", count)
	return s.render(title, b.String(), format)
}

// Assets renders the asset report with company names resolved.
func (s *ReportService) Assets(ctx context.Context, principal domain.Principal, filter AssetListFilter, format ReportFormat) (*Report, error) {
	assets, err := s.assets.List(ctx, principal, filter)
	if err != nil {
		return nil, err
	}
	title, err := s.title(ctx, "Asset report")
	if err != nil {
		return nil, err
	}
	names := make(map[string]string)
	for _, a := range assets {
		if _, seen := names[a.CompanyID]; seen {
			continue
		}
		names[a.CompanyID] = a.CompanyID
		if company, err := s.companies.Get(ctx, principal, a.CompanyID); err == nil {
			names[a.CompanyID] = company.Name
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	b.WriteString("| Company | Type | Manufacturer | Model | Serial | Status |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, a := range assets {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			cell(names[a.CompanyID]), cell(a.AssetType), cell(a.Manufacturer), cell(a.Model),
			cell(a.SerialNumber), a.Status)
	}
	fmt.Fprintf(&b, "\n**Total assets:** %d\n", len(assets))
	return s.render(title, b.String(), format)
}

func (s *ReportService) title(ctx context.Context, kind string) (string, error) {
	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return "", err
	}
	return cfg.CompanyName + " - " + kind, nil
}

func (s *ReportService) render(title, markdown string, format ReportFormat) (*Report, error) {
	if format != ReportFormatHTML {
		return &Report{
			Title:       title,
			Format:      ReportFormatMarkdown,
			ContentType: "text/markdown; charset=utf-8",
			Body:        []byte(markdown),
		}, nil
	}
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(markdown), &buf); err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("render report: %w", err))
	}
	return &Report{
		Title:       title,
		Format:      ReportFormatHTML,
		ContentType: "text/html; charset=utf-8",
		Body:        s.policy.SanitizeBytes(buf.Bytes()),
	}, nil
}

var cellReplacer = strings.NewReplacer("|", `\|`, "\r", " ", "\n", " ")

func cell(v string) string {
	v = cellReplacer.Replace(strings.TrimSpace(v))
	if v == "" {
		return "-"
	}
	return v
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
