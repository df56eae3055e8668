package postgres

import (
	"context"
	"database/sql"
	_ "embed"

	"rentaldesk-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.OrderRepository
	repository.CustomerRepository
	repository.StaffRepository
	repository.BranchRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                 db,
		OrderRepository:    NewOrderRepository(db),
		CustomerRepository: NewCustomerRepository(db),
		StaffRepository:    NewStaffRepository(db),
		BranchRepository:   NewBranchRepository(db),
	}
}

// Ping checks the database connection. Used by the health endpoints.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

//go:embed schema.sql
var schema string

// EnsureSchema creates missing tables and indexes. Existing tables are left alone.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
