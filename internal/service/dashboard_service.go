package service

import (
	"context"
	"sort"
	"time"

	"github.com/spec-kit/itsm-service/internal/domain"
	"github.com/spec-kit/itsm-service/internal/repository"
	"github.com/spec-kit/itsm-service/internal/sla"
)

const recentTicketLimit = 5

// TicketStats counts tickets by status and category.
type TicketStats struct {
	Total      int                           `json:"total"`
	Open       int                           `json:"open"`
	InProgress int                           `json:"in_progress"`
	Resolved   int                           `json:"resolved"`
	ByCategory map[domain.TicketCategory]int `json:"by_type"`
}

// AssetStats counts assets by status.
type AssetStats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	InRepair int `json:"in_repair"`
}

// AlertStats summarizes the current SLA alerts.
type AlertStats struct {
	Warnings int `json:"warnings"`
	Breaches int `json:"breaches"`
}

// RecentTicket is a short ticket summary.
type RecentTicket struct {
	ID        string              `json:"id"`
	Title     string              `json:"title"`
	Status    domain.TicketStatus `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
}

// DashboardStats is the landing page summary.
type DashboardStats struct {
	Tickets       TicketStats    `json:"tickets"`
	Assets        AssetStats     `json:"assets"`
	Companies     int            `json:"companies"`
	Alerts        AlertStats     `json:"alerts"`
	RecentTickets []RecentTicket `json:"recent_tickets"`
}

// DashboardService aggregates scoped counts. It only reads through the listing services.
type DashboardService struct {
	tickets   *TicketService
	assets    *AssetService
	companies *CompanyService
	alerts    *AlertService
}

// NewDashboardService constructs the service.
func NewDashboardService(tickets *TicketService, assets *AssetService, companies *CompanyService, alerts *AlertService) *DashboardService {
	return &DashboardService{tickets: tickets, assets: assets, companies: companies, alerts: alerts}
}

// Stats returns the dashboard summary visible to principal.
func (s *DashboardService) Stats(ctx context.Context, principal domain.Principal) (*DashboardStats, error) {
	tickets, err := s.tickets.ListTickets(ctx, principal, TicketListFilter{})
	if err != nil {
		return nil, err
	}
	assets, err := s.assets.List(ctx, principal, AssetListFilter{})
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		Tickets: TicketStats{
			ByCategory: map[domain.TicketCategory]int{
				domain.TicketCategoryIncident:    0,
				domain.TicketCategoryRequest:     0,
				domain.TicketCategoryMaintenance: 0,
			},
		},
		RecentTickets: []RecentTicket{},
	}
	for _, t := range tickets {
		stats.Tickets.Total++
		switch t.Status {
		case domain.TicketStatusOpen:
			stats.Tickets.Open++
		case domain.TicketStatusInProgress:
			stats.Tickets.InProgress++
		case domain.TicketStatusResolved, domain.TicketStatusClosed:
			stats.Tickets.Resolved++
		}
		if t.Category != "" {
			stats.Tickets.ByCategory[t.Category]++
		}
	}
	for _, a := range assets {
		stats.Assets.Total++
		switch a.Status {
		case domain.AssetStatusActive:
			stats.Assets.Active++
		case domain.AssetStatusInRepair:
			stats.Assets.InRepair++
		}
	}

	if principal.Role != domain.RoleClient {
		companies, err := s.companies.List(ctx, principal, repository.Page{})
		if err != nil {
			return nil, err
		}
		stats.Companies = len(companies)
	}

	report, err := s.alerts.Evaluate(ctx, principal)
	if err != nil {
		return nil, err
	}
	stats.Alerts.Warnings, stats.Alerts.Breaches = sla.Count(report.Alerts)

	recent := append([]domain.Ticket(nil), tickets...)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > recentTicketLimit {
		recent = recent[:recentTicketLimit]
	}
	for _, t := range recent {
		stats.RecentTickets = append(stats.RecentTickets, RecentTicket{
			ID:        t.ID,
			Title:     t.Title,
			Status:    t.Status,
			CreatedAt: t.CreatedAt,
		})
	}
	return stats, nil
}
