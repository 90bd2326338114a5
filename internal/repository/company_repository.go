package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/itsm-service/internal/domain"
)

// CompanyRepository persists client companies.
type CompanyRepository interface {
	Create(ctx context.Context, company *domain.Company) error
	Update(ctx context.Context, company *domain.Company) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Company, error)
	List(ctx context.Context, page Page) ([]domain.Company, error)
}

type companyRepository struct {
	db DBTX
}

// NewCompanyRepository returns a Postgres-backed implementation.
func NewCompanyRepository(db DBTX) CompanyRepository {
	return &companyRepository{db: db}
}

const companyColumns = `id, name, contact_person, email, phone, address, created_at, updated_at`

func (r *companyRepository) Create(ctx context.Context, c *domain.Company) error {
	const query = `
        INSERT INTO companies (id, name, contact_person, email, phone, address, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := r.db.Exec(ctx, query,
		c.ID, c.Name, c.ContactPerson, c.Email, c.Phone, c.Address, c.CreatedAt, c.UpdatedAt,
	)
	return mapError(err)
}

func (r *companyRepository) Update(ctx context.Context, c *domain.Company) error {
	const query = `
        UPDATE companies SET name=$1, contact_person=$2, email=$3, phone=$4, address=$5, updated_at=$6
        WHERE id=$7`
	return execAffecting(ctx, r.db, query,
		c.Name, c.ContactPerson, c.Email, c.Phone, c.Address, c.UpdatedAt, c.ID,
	)
}

func (r *companyRepository) Delete(ctx context.Context, id string) error {
	return execAffecting(ctx, r.db, `DELETE FROM companies WHERE id=$1`, id)
}

func (r *companyRepository) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	row := r.db.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE id=$1`, id)
	c, err := scanCompany(row)
	if err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

func (r *companyRepository) List(ctx context.Context, page Page) ([]domain.Company, error) {
	rows, err := r.db.Query(ctx, `SELECT `+companyColumns+` FROM companies ORDER BY name ASC, id ASC`+page.sql())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

func scanCompany(row pgx.Row) (*domain.Company, error) {
	var c domain.Company
	if err := row.Scan(
		&c.ID,
		&c.Name,
		&c.ContactPerson,
		&c.Email,
		&c.Phone,
		&c.Address,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}
