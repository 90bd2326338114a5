package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/itsm-service/internal/access"
	"github.com/spec-kit/itsm-service/internal/config"
	"github.com/spec-kit/itsm-service/internal/events"
	"github.com/spec-kit/itsm-service/internal/observability"
	"github.com/spec-kit/itsm-service/internal/persistence"
	"github.com/spec-kit/itsm-service/internal/repository"
	"github.com/spec-kit/itsm-service/internal/service"
	"github.com/spec-kit/itsm-service/internal/sla"
)

// runtime holds the process-wide collaborators shared by every command.
type runtime struct {
	cfg        *config.Config
	logger     *zap.Logger
	postgres   *persistence.Postgres
	redis      *persistence.Redis
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	snapshots  persistence.AlertSnapshotStore
	store      repository.Store
	services   *service.Services
}

func loadConfigAndLogger() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}

func newRuntime(ctx context.Context) (*runtime, error) {
	cfg, logger, err := loadConfigAndLogger()
	if err != nil {
		return nil, err
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if cfg.Postgres.RunMigrations && pg.Enabled() {
		if err := persistence.RunMigrations(ctx, pg.Pool, logger); err != nil {
			pg.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	redis := persistence.NewRedis(ctx, cfg.Redis, logger)

	resolver, err := access.NewResolver()
	if err != nil {
		pg.Close()
		redis.Close()
		return nil, fmt.Errorf("build access resolver: %w", err)
	}

	rt := &runtime{
		cfg:        cfg,
		logger:     logger,
		postgres:   pg,
		redis:      redis,
		dispatcher: events.NewInMemoryDispatcher(),
		metrics:    observability.NewMetrics(),
		snapshots:  persistence.NewAlertSnapshotStore(redis, cfg.SLA.SnapshotTTL()),
		store:      pg.Store(),
	}
	rt.services = service.NewServices(cfg.Auth,
		sla.Thresholds{WarningFraction: cfg.SLA.WarningFraction, WarningMinHours: cfg.SLA.WarningMinHours},
		rt.snapshots,
		service.Dependencies{
			Store:      rt.store,
			Access:     resolver,
			Dispatcher: rt.dispatcher,
			Logger:     logger,
		})
	return rt, nil
}

func (rt *runtime) Close() {
	rt.redis.Close()
	rt.postgres.Close()
	_ = rt.logger.Sync()
}
