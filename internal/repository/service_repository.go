package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/itsm-service/internal/domain"
)

// ServiceRepository persists contracted services.
type ServiceRepository interface {
	Create(ctx context.Context, service *domain.Service) error
	Update(ctx context.Context, service *domain.Service) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Service, error)
	List(ctx context.Context, filter ServiceFilter) ([]domain.Service, error)
}

type serviceRepository struct {
	db DBTX
}

// NewServiceRepository returns a Postgres-backed implementation.
func NewServiceRepository(db DBTX) ServiceRepository {
	return &serviceRepository{db: db}
}

const serviceColumns = `id, company_id, service_type, name, description, billing_period, cost,
       external_provider, associated_domain, licenses_quantity, start_date, expiration_date,
       created_at, updated_at`

func (r *serviceRepository) Create(ctx context.Context, s *domain.Service) error {
	const query = `
        INSERT INTO services (` + serviceColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`
	_, err := r.db.Exec(ctx, query,
		s.ID, s.CompanyID, s.ServiceType, s.Name, s.Description, s.BillingPeriod, s.Cost,
		s.ExternalProvider, s.AssociatedDomain, s.LicensesQuantity, s.StartDate, s.ExpirationDate,
		s.CreatedAt, s.UpdatedAt,
	)
	return mapError(err)
}

func (r *serviceRepository) Update(ctx context.Context, s *domain.Service) error {
	const query = `
        UPDATE services SET company_id=$1, service_type=$2, name=$3, description=$4, billing_period=$5,
            cost=$6, external_provider=$7, associated_domain=$8, licenses_quantity=$9, start_date=$10,
            expiration_date=$11, updated_at=$12
        WHERE id=$13`
	return execAffecting(ctx, r.db, query,
		s.CompanyID, s.ServiceType, s.Name, s.Description, s.BillingPeriod, s.Cost,
		s.ExternalProvider, s.AssociatedDomain, s.LicensesQuantity, s.StartDate, s.ExpirationDate,
		s.UpdatedAt, s.ID,
	)
}

func (r *serviceRepository) Delete(ctx context.Context, id string) error {
	return execAffecting(ctx, r.db, `DELETE FROM services WHERE id=$1`, id)
}

func (r *serviceRepository) GetByID(ctx context.Context, id string) (*domain.Service, error) {
	s, err := scanService(r.db.QueryRow(ctx, `SELECT `+serviceColumns+` FROM services WHERE id=$1`, id))
	if err != nil {
		return nil, mapError(err)
	}
	return s, nil
}

func (r *serviceRepository) List(ctx context.Context, filter ServiceFilter) ([]domain.Service, error) {
	var where whereBuilder
	if filter.CompanyID != nil {
		where.eq("company_id", *filter.CompanyID)
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+serviceColumns+` FROM services`+where.String()+` ORDER BY name ASC, id ASC`+filter.Page.sql(),
		where.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}

func scanService(row pgx.Row) (*domain.Service, error) {
	var s domain.Service
	if err := row.Scan(
		&s.ID,
		&s.CompanyID,
		&s.ServiceType,
		&s.Name,
		&s.Description,
		&s.BillingPeriod,
		&s.Cost,
		&s.ExternalProvider,
		&s.AssociatedDomain,
		&s.LicensesQuantity,
		&s.StartDate,
		&s.ExpirationDate,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}
