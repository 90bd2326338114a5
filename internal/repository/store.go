package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories groups every repository bound to the same connection or transaction.
type Repositories struct {
	Companies    CompanyRepository
	Users        UserRepository
	Assets       AssetRepository
	Services     ServiceRepository
	Contracts    ContractRepository
	Tickets      TicketRepository
	History      TicketHistoryRepository
	Notes        TicketNoteRepository
	SystemConfig SystemConfigRepository
}

// Store hands out repositories and runs all-or-nothing units of work.
type Store interface {
	Repos() Repositories
	// WithinTx commits every write made through the given repositories when fn returns
	// nil and discards all of them otherwise.
	WithinTx(ctx context.Context, fn func(Repositories) error) error
}

// NewRepositories binds every Postgres repository to db.
func NewRepositories(db DBTX) Repositories {
	return Repositories{
		Companies:    NewCompanyRepository(db),
		Users:        NewUserRepository(db),
		Assets:       NewAssetRepository(db),
		Services:     NewServiceRepository(db),
		Contracts:    NewContractRepository(db),
		Tickets:      NewTicketRepository(db),
		History:      NewTicketHistoryRepository(db),
		Notes:        NewTicketNoteRepository(db),
		SystemConfig: NewSystemConfigRepository(db),
	}
}

// PostgresStore is the pgx-backed Store.
type PostgresStore struct {
	pool  *pgxpool.Pool
	repos Repositories
}

// NewPostgresStore builds a store over pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, repos: NewRepositories(pool)}
}

// Repos returns repositories running outside any transaction.
func (s *PostgresStore) Repos() Repositories {
	return s.repos
}

// WithinTx runs fn in a database transaction.
func (s *PostgresStore) WithinTx(ctx context.Context, fn func(Repositories) error) error {
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return fn(NewRepositories(tx))
	})
}
