package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/itsm-service/internal/api/http/handlers"
	"github.com/spec-kit/itsm-service/internal/auth"
	"github.com/spec-kit/itsm-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Companies      *handlers.CompaniesHandler
	Assets         *handlers.AssetsHandler
	Services       *handlers.ServicesHandler
	Contracts      *handlers.ContractsHandler
	Tickets        *handlers.TicketsHandler
	Alerts         *handlers.AlertsHandler
	Dashboard      *handlers.DashboardHandler
	Reports        *handlers.ReportsHandler
	System         *handlers.SystemHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Role checks beyond authentication live in the
// services so that every entry point shares them.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	protected := api.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	protected.Get("/auth/me", cfg.Auth.Me)
	protected.Post("/auth/password", cfg.Auth.ChangePassword)

	companies := protected.Group("/companies")
	companies.Get("/", cfg.Companies.List)
	companies.Post("/", cfg.Companies.Create)
	companies.Get("/:id", cfg.Companies.Get)
	companies.Put("/:id", cfg.Companies.Update)
	companies.Delete("/:id", cfg.Companies.Delete)

	users := protected.Group("/users")
	users.Get("/", cfg.Users.List)
	users.Post("/", cfg.Users.Create)
	users.Get("/:id", cfg.Users.Get)
	users.Put("/:id", cfg.Users.Update)
	users.Delete("/:id", cfg.Users.Delete)

	assets := protected.Group("/assets")
	assets.Get("/", cfg.Assets.List)
	assets.Post("/", cfg.Assets.Create)
	assets.Get("/:id", cfg.Assets.Get)
	assets.Put("/:id", cfg.Assets.Update)
	assets.Delete("/:id", cfg.Assets.Delete)

	services := protected.Group("/services")
	services.Get("/", cfg.Services.List)
	services.Post("/", cfg.Services.Create)
	services.Get("/:id", cfg.Services.Get)
	services.Put("/:id", cfg.Services.Update)
	services.Delete("/:id", cfg.Services.Delete)

	contracts := protected.Group("/contracts")
	contracts.Get("/", cfg.Contracts.List)
	contracts.Post("/", cfg.Contracts.Create)
	contracts.Get("/:id", cfg.Contracts.Get)
	contracts.Put("/:id", cfg.Contracts.Update)
	contracts.Delete("/:id", cfg.Contracts.Delete)

	tickets := protected.Group("/tickets")
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Put("/:id", cfg.Tickets.UpdateTicket)
	tickets.Delete("/:id", cfg.Tickets.DeleteTicket)
	tickets.Post("/:id/status", cfg.Tickets.ChangeStatus)
	tickets.Post("/:id/assign", cfg.Tickets.Assign)
	tickets.Get("/:id/history", cfg.Tickets.History)
	tickets.Get("/:id/notes", cfg.Tickets.ListNotes)
	tickets.Post("/:id/notes", cfg.Tickets.AddNote)

	protected.Get("/alerts/sla", cfg.Alerts.Evaluate)
	protected.Get("/alerts/sla/latest", cfg.Alerts.Latest)
	protected.Get("/dashboard/stats", cfg.Dashboard.Stats)
	protected.Get("/reports/tickets", cfg.Reports.Tickets)
	protected.Get("/reports/assets", cfg.Reports.Assets)

	protected.Get("/system/config", cfg.System.Get)
	protected.Put("/system/config", auth.RequireRole(domain.RoleAdmin), cfg.System.Update)
}
