package repository

import (
	"context"

	"github.com/spec-kit/itsm-service/internal/domain"
)

// TicketNoteRepository manages append-only ticket notes. There is no update or delete.
type TicketNoteRepository interface {
	Create(ctx context.Context, note *domain.TicketNote) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketNote, error)
}

type ticketNoteRepository struct {
	db DBTX
}

// NewTicketNoteRepository builds repository.
func NewTicketNoteRepository(db DBTX) TicketNoteRepository {
	return &ticketNoteRepository{db: db}
}

func (r *ticketNoteRepository) Create(ctx context.Context, note *domain.TicketNote) error {
	const query = `
        INSERT INTO ticket_notes (id, ticket_id, author_id, note, created_at)
        VALUES ($1,$2,$3,$4,$5)`
	_, err := r.db.Exec(ctx, query, note.ID, note.TicketID, note.AuthorID, note.Note, note.CreatedAt)
	return mapError(err)
}

func (r *ticketNoteRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketNote, error) {
	const query = `
        SELECT id, ticket_id, author_id, note, created_at
        FROM ticket_notes WHERE ticket_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketNote
	for rows.Next() {
		var n domain.TicketNote
		if err := rows.Scan(&n.ID, &n.TicketID, &n.AuthorID, &n.Note, &n.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}
