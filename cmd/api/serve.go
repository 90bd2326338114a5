package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/itsm-service/internal/api/http"
	"github.com/spec-kit/itsm-service/internal/api/http/handlers"
	"github.com/spec-kit/itsm-service/internal/persistence"
	"github.com/spec-kit/itsm-service/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the SLA scheduler",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()
	cfg, logger := rt.cfg, rt.logger

	if cfg.Auth.BootstrapAdminEmail != "" {
		if err := rt.services.Auth.EnsureBootstrapAdmin(ctx, cfg.Auth.BootstrapAdminEmail, cfg.Auth.BootstrapAdminPass); err != nil {
			return err
		}
	}

	worker.StartNotificationWorker(rt.dispatcher, logger, cfg.Notification)

	scheduler := worker.NewSLAScheduler(worker.SLASchedulerConfig{
		Alerts:       rt.services.Alerts,
		Snapshots:    rt.snapshots,
		Marker:       persistence.NewNotifyOnceMarker(rt.redis),
		Dispatcher:   rt.dispatcher,
		Metrics:      rt.metrics,
		Logger:       logger,
		Interval:     cfg.SLA.Interval(),
		DedupeWindow: cfg.SLA.NotifyDedupeWindow(),
	})
	scheduler.Start(ctx)
	defer scheduler.Stop()

	app := httptransport.NewServer(httptransport.ServerConfig{
		Name:    cfg.App.Name,
		Version: cfg.App.Version,
		Middleware: httptransport.MiddlewareConfig{
			Logger:         logger,
			Metrics:        rt.metrics,
			RequestTimeout: cfg.App.RequestTimeout(),
			AllowedOrigins: cfg.App.AllowedOrigins(),
		},
		Dependencies: map[string]handlers.Pinger{
			"postgres": rt.postgres,
			"redis":    rt.redis,
		},
		Users: rt.store.Repos().Users,
	}, rt.services)

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		listenErr <- app.Listen(cfg.App.Addr())
	}()

	select {
	case err := <-listenErr:
		if err != nil {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("http shutdown", zap.Error(err))
	}
	return nil
}
