package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/itsm-service/internal/domain"
)

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

type ticketRepository struct {
	db DBTX
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db DBTX) TicketRepository {
	return &ticketRepository{db: db}
}

const ticketColumns = `id, company_id, asset_id, service_id, title, description, category, priority, status,
       assigned_to, requester, created_by, maintenance_log, final_resolution, created_at, updated_at,
       resolved_at`

func (r *ticketRepository) Create(ctx context.Context, t *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (` + ticketColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`
	_, err := r.db.Exec(ctx, query,
		t.ID,
		t.CompanyID,
		t.AssetID,
		t.ServiceID,
		t.Title,
		t.Description,
		t.Category,
		t.Priority,
		t.Status,
		t.AssignedTo,
		t.Requester,
		t.CreatedBy,
		t.MaintenanceLog,
		t.FinalResolution,
		t.CreatedAt,
		t.UpdatedAt,
		t.ResolvedAt,
	)
	return mapError(err)
}

func (r *ticketRepository) Update(ctx context.Context, t *domain.Ticket) error {
	const query = `
        UPDATE tickets SET company_id=$1, asset_id=$2, service_id=$3, title=$4, description=$5,
            category=$6, priority=$7, status=$8, assigned_to=$9, requester=$10, maintenance_log=$11,
            final_resolution=$12, updated_at=$13, resolved_at=$14
        WHERE id=$15`
	return execAffecting(ctx, r.db, query,
		t.CompanyID,
		t.AssetID,
		t.ServiceID,
		t.Title,
		t.Description,
		t.Category,
		t.Priority,
		t.Status,
		t.AssignedTo,
		t.Requester,
		t.MaintenanceLog,
		t.FinalResolution,
		t.UpdatedAt,
		t.ResolvedAt,
		t.ID,
	)
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	return execAffecting(ctx, r.db, `DELETE FROM tickets WHERE id=$1`, id)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	t, err := scanTicket(r.db.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1`, id))
	if err != nil {
		return nil, mapError(err)
	}
	return t, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	var where whereBuilder
	if filter.CompanyID != nil {
		where.eq("company_id", *filter.CompanyID)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]any, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = s
		}
		where.in("status", statuses)
	}
	if filter.Category != nil {
		where.eq("category", *filter.Category)
	}
	if filter.Priority != nil {
		where.eq("priority", *filter.Priority)
	}
	if filter.AssetID != nil {
		where.eq("asset_id", *filter.AssetID)
	}
	if filter.ServiceID != nil {
		where.eq("service_id", *filter.ServiceID)
	}
	if filter.Unassigned {
		where.raw("assigned_to IS NULL")
	} else if filter.AssignedTo != nil {
		where.eq("assigned_to", *filter.AssignedTo)
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+ticketColumns+` FROM tickets`+where.String()+` ORDER BY created_at DESC, id ASC`+filter.Page.sql(),
		where.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *t)
	}
	return result, rows.Err()
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var t domain.Ticket
	if err := row.Scan(
		&t.ID,
		&t.CompanyID,
		&t.AssetID,
		&t.ServiceID,
		&t.Title,
		&t.Description,
		&t.Category,
		&t.Priority,
		&t.Status,
		&t.AssignedTo,
		&t.Requester,
		&t.CreatedBy,
		&t.MaintenanceLog,
		&t.FinalResolution,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.ResolvedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}
