package domain

import "time"

// TicketNote is a free-text comment on a ticket. Notes are never edited or removed.
type TicketNote struct {
	ID        string
	TicketID  string
	AuthorID  string
	Note      string
	CreatedAt time.Time
}
