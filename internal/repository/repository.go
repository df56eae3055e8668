package repository

import (
	"context"

	"rentaldesk-backend/internal/domain"
)

type OrderRepository interface {
	// Create inserts the order and its items in one transaction.
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// List returns one page of orders, newest first, and the total match count.
	List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int32, error)
	// ListAll ignores paging. Used for stats and scheduled jobs.
	ListAll(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, lateFeeCents *int64) error
}

type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	Search(ctx context.Context, query string, limit int32) ([]domain.Customer, error)
}

type StaffRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Staff, error)
	GetByEmail(ctx context.Context, email string) (*domain.Staff, error)
}

type BranchRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Branch, error)
	List(ctx context.Context) ([]domain.Branch, error)
}
