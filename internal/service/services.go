package service

import (
	"github.com/spec-kit/itsm-service/internal/auth"
	"github.com/spec-kit/itsm-service/internal/config"
	"github.com/spec-kit/itsm-service/internal/persistence"
	"github.com/spec-kit/itsm-service/internal/sla"
)

// Services is the full set of application services sharing one store and resolver.
type Services struct {
	Auth      *AuthService
	Users     *UserService
	Companies *CompanyService
	Assets    *AssetService
	Catalog   *CatalogService
	Contracts *ContractService
	Tickets   *TicketService
	Alerts    *AlertService
	Dashboard *DashboardService
	Reports   *ReportService
	Settings  *SystemConfigService
}

// NewServices wires every service. snapshots may be nil, in which case the latest
// alerts are always evaluated on demand.
func NewServices(cfg config.AuthConfig, thresholds sla.Thresholds, snapshots persistence.AlertSnapshotStore, deps Dependencies) *Services {
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes)
	s := &Services{
		Auth:      NewAuthService(cfg, tokens, deps),
		Users:     NewUserService(cfg.BcryptCost, deps),
		Companies: NewCompanyService(deps),
		Assets:    NewAssetService(deps),
		Catalog:   NewCatalogService(deps),
		Contracts: NewContractService(deps),
		Tickets:   NewTicketService(deps),
		Alerts:    NewAlertService(sla.NewEvaluator(thresholds), snapshots, deps),
		Settings:  NewSystemConfigService(deps),
	}
	s.Dashboard = NewDashboardService(s.Tickets, s.Assets, s.Companies, s.Alerts)
	s.Reports = NewReportService(s.Tickets, s.Assets, s.Companies, s.Settings)
	return s
}
