package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/itsm-service/internal/domain"
)

// AssetRepository persists company assets.
type AssetRepository interface {
	Create(ctx context.Context, asset *domain.Asset) error
	Update(ctx context.Context, asset *domain.Asset) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Asset, error)
	List(ctx context.Context, filter AssetFilter) ([]domain.Asset, error)
}

type assetRepository struct {
	db DBTX
}

// NewAssetRepository returns a Postgres-backed implementation.
func NewAssetRepository(db DBTX) AssetRepository {
	return &assetRepository{db: db}
}

const assetColumns = `id, company_id, asset_type, manufacturer, model, serial_number, host_name, location,
       status, ip_address, operating_system, os_version, cpu, ram_gb, storage, purchase_date,
       purchase_value, warranty_expiration, support_provider, estimated_life_months, notes,
       created_at, updated_at`

func (r *assetRepository) Create(ctx context.Context, a *domain.Asset) error {
	const query = `
        INSERT INTO assets (` + assetColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)`
	_, err := r.db.Exec(ctx, query,
		a.ID, a.CompanyID, a.AssetType, a.Manufacturer, a.Model, a.SerialNumber, a.HostName,
		a.Location, a.Status, a.IPAddress, a.OperatingSystem, a.OSVersion, a.CPU, a.RAMGB,
		a.Storage, a.PurchaseDate, a.PurchaseValue, a.WarrantyExpiration, a.SupportProvider,
		a.EstimatedLifeMonths, a.Notes, a.CreatedAt, a.UpdatedAt,
	)
	return mapError(err)
}

func (r *assetRepository) Update(ctx context.Context, a *domain.Asset) error {
	const query = `
        UPDATE assets SET company_id=$1, asset_type=$2, manufacturer=$3, model=$4, serial_number=$5,
            host_name=$6, location=$7, status=$8, ip_address=$9, operating_system=$10, os_version=$11,
            cpu=$12, ram_gb=$13, storage=$14, purchase_date=$15, purchase_value=$16,
            warranty_expiration=$17, support_provider=$18, estimated_life_months=$19, notes=$20,
            updated_at=$21
        WHERE id=$22`
	return execAffecting(ctx, r.db, query,
		a.CompanyID, a.AssetType, a.Manufacturer, a.Model, a.SerialNumber, a.HostName,
		a.Location, a.Status, a.IPAddress, a.OperatingSystem, a.OSVersion, a.CPU, a.RAMGB,
		a.Storage, a.PurchaseDate, a.PurchaseValue, a.WarrantyExpiration, a.SupportProvider,
		a.EstimatedLifeMonths, a.Notes, a.UpdatedAt, a.ID,
	)
}

func (r *assetRepository) Delete(ctx context.Context, id string) error {
	return execAffecting(ctx, r.db, `DELETE FROM assets WHERE id=$1`, id)
}

func (r *assetRepository) GetByID(ctx context.Context, id string) (*domain.Asset, error) {
	a, err := scanAsset(r.db.QueryRow(ctx, `SELECT `+assetColumns+` FROM assets WHERE id=$1`, id))
	if err != nil {
		return nil, mapError(err)
	}
	return a, nil
}

func (r *assetRepository) List(ctx context.Context, filter AssetFilter) ([]domain.Asset, error) {
	var where whereBuilder
	if filter.CompanyID != nil {
		where.eq("company_id", *filter.CompanyID)
	}
	if filter.Status != nil {
		where.eq("status", *filter.Status)
	}
	if filter.AssetType != nil {
		where.eq("asset_type", *filter.AssetType)
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+assetColumns+` FROM assets`+where.String()+` ORDER BY created_at DESC, id ASC`+filter.Page.sql(),
		where.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	return result, rows.Err()
}

func scanAsset(row pgx.Row) (*domain.Asset, error) {
	var a domain.Asset
	if err := row.Scan(
		&a.ID,
		&a.CompanyID,
		&a.AssetType,
		&a.Manufacturer,
		&a.Model,
		&a.SerialNumber,
		&a.HostName,
		&a.Location,
		&a.Status,
		&a.IPAddress,
		&a.OperatingSystem,
		&a.OSVersion,
		&a.CPU,
		&a.RAMGB,
		&a.Storage,
		&a.PurchaseDate,
		&a.PurchaseValue,
		&a.WarrantyExpiration,
		&a.SupportProvider,
		&a.EstimatedLifeMonths,
		&a.Notes,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}
