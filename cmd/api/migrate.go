package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/spec-kit/itsm-service/internal/persistence"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
	}
	cmd.AddCommand(
		migrateSubcommand("up", "Run all pending migrations", persistence.MigrateUp),
		migrateSubcommand("down", "Roll back the latest migration", persistence.MigrateDown),
		migrateSubcommand("status", "Show migration status", persistence.MigrateStatus),
	)
	return cmd
}

func migrateSubcommand(use, short string, direction persistence.MigrationDirection) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd.Context(), direction)
		},
	}
}

func runMigrate(ctx context.Context, direction persistence.MigrationDirection) error {
	cfg, logger, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.Postgres.DSN == "" {
		return errors.New("POSTGRES_DSN is required for migrations")
	}
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return err
	}
	defer pg.Close()
	return persistence.Migrate(ctx, pg.Pool, direction, logger)
}
