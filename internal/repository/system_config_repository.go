package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/itsm-service/internal/domain"
)

// SystemConfigRepository stores the single console configuration row.
type SystemConfigRepository interface {
	Get(ctx context.Context) (*domain.SystemConfig, error)
	Upsert(ctx context.Context, cfg *domain.SystemConfig) error
}

type systemConfigRepository struct {
	db DBTX
}

// NewSystemConfigRepository builds repository.
func NewSystemConfigRepository(db DBTX) SystemConfigRepository {
	return &systemConfigRepository{db: db}
}

func (r *systemConfigRepository) Get(ctx context.Context) (*domain.SystemConfig, error) {
	const query = `SELECT company_name, custom_fields, updated_at FROM system_config WHERE id=1`
	var cfg domain.SystemConfig
	err := r.db.QueryRow(ctx, query).Scan(&cfg.CompanyName, &cfg.CustomFields, &cfg.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *systemConfigRepository) Upsert(ctx context.Context, cfg *domain.SystemConfig) error {
	const query = `
        INSERT INTO system_config (id, company_name, custom_fields, updated_at)
        VALUES (1, $1, $2, $3)
        ON CONFLICT (id) DO UPDATE SET company_name=EXCLUDED.company_name,
            custom_fields=EXCLUDED.custom_fields, updated_at=EXCLUDED.updated_at`
	_, err := r.db.Exec(ctx, query, cfg.CompanyName, cfg.CustomFields, cfg.UpdatedAt)
	return mapError(err)
}
