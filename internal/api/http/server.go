package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/itsm-service/internal/api/http/handlers"
	"github.com/spec-kit/itsm-service/internal/auth"
	"github.com/spec-kit/itsm-service/internal/service"
)

// ServerConfig describes the HTTP application.
type ServerConfig struct {
	Name       string
	Version    string
	Middleware MiddlewareConfig
	// Dependencies are pinged by the readiness probe.
	Dependencies map[string]handlers.Pinger
	Users        auth.UserLookup
}

// NewServer builds the fiber application with every route registered.
func NewServer(cfg ServerConfig, svc *service.Services) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               cfg.Name,
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler,
	})
	RegisterMiddlewares(app, cfg.Middleware)

	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.Name, cfg.Version, cfg.Middleware.Metrics, cfg.Dependencies),
		Auth:           handlers.NewAuthHandler(svc.Auth),
		Users:          handlers.NewUsersHandler(svc.Users),
		Companies:      handlers.NewCompaniesHandler(svc.Companies),
		Assets:         handlers.NewAssetsHandler(svc.Assets),
		Services:       handlers.NewServicesHandler(svc.Catalog),
		Contracts:      handlers.NewContractsHandler(svc.Contracts),
		Tickets:        handlers.NewTicketsHandler(svc.Tickets),
		Alerts:         handlers.NewAlertsHandler(svc.Alerts),
		Dashboard:      handlers.NewDashboardHandler(svc.Dashboard),
		Reports:        handlers.NewReportsHandler(svc.Reports),
		System:         handlers.NewSystemHandler(svc.Settings),
		AuthMiddleware: auth.NewAuthMiddleware(svc.Auth.TokenManager(), cfg.Users),
	})
	return app
}
