package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/itsm-service/internal/domain"
)

// ContractRepository persists SLA contracts.
type ContractRepository interface {
	Create(ctx context.Context, contract *domain.Contract) error
	Update(ctx context.Context, contract *domain.Contract) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Contract, error)
	List(ctx context.Context, filter ContractFilter) ([]domain.Contract, error)
}

type contractRepository struct {
	db DBTX
}

// NewContractRepository returns a Postgres-backed implementation.
func NewContractRepository(db DBTX) ContractRepository {
	return &contractRepository{db: db}
}

const contractColumns = `id, company_id, service_id, start_date, end_date, sla_hours, terms, status, created_at, updated_at`

func (r *contractRepository) Create(ctx context.Context, c *domain.Contract) error {
	const query = `
        INSERT INTO contracts (` + contractColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`
	_, err := r.db.Exec(ctx, query,
		c.ID, c.CompanyID, c.ServiceID, nullDate(c.StartDate), nullDate(c.EndDate),
		c.SLAHours, c.Terms, c.Status, c.CreatedAt, c.UpdatedAt,
	)
	return mapError(err)
}

func (r *contractRepository) Update(ctx context.Context, c *domain.Contract) error {
	const query = `
        UPDATE contracts SET company_id=$1, service_id=$2, start_date=$3, end_date=$4, sla_hours=$5,
            terms=$6, status=$7, updated_at=$8
        WHERE id=$9`
	return execAffecting(ctx, r.db, query,
		c.CompanyID, c.ServiceID, nullDate(c.StartDate), nullDate(c.EndDate), c.SLAHours,
		c.Terms, c.Status, c.UpdatedAt, c.ID,
	)
}

func (r *contractRepository) Delete(ctx context.Context, id string) error {
	return execAffecting(ctx, r.db, `DELETE FROM contracts WHERE id=$1`, id)
}

func (r *contractRepository) GetByID(ctx context.Context, id string) (*domain.Contract, error) {
	c, err := scanContract(r.db.QueryRow(ctx, `SELECT `+contractColumns+` FROM contracts WHERE id=$1`, id))
	if err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

func (r *contractRepository) List(ctx context.Context, filter ContractFilter) ([]domain.Contract, error) {
	var where whereBuilder
	if filter.CompanyID != nil {
		where.eq("company_id", *filter.CompanyID)
	}
	if filter.ServiceID != nil {
		where.eq("service_id", *filter.ServiceID)
	}
	if filter.Status != nil {
		where.eq("status", *filter.Status)
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+contractColumns+` FROM contracts`+where.String()+` ORDER BY created_at DESC, id ASC`+filter.Page.sql(),
		where.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

func scanContract(row pgx.Row) (*domain.Contract, error) {
	var (
		c          domain.Contract
		start, end *time.Time
	)
	if err := row.Scan(
		&c.ID,
		&c.CompanyID,
		&c.ServiceID,
		&start,
		&end,
		&c.SLAHours,
		&c.Terms,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	c.StartDate = fromNullDate(start)
	c.EndDate = fromNullDate(end)
	return &c, nil
}
