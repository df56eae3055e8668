package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"rentaldesk-backend/internal/domain"
)

// MockOrderRepo
type MockOrderRepo struct {
	mock.Mock
}

func (m *MockOrderRepo) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}
func (m *MockOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}
func (m *MockOrderRepo) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int32, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Order), args.Get(1).(int32), args.Error(2)
}
func (m *MockOrderRepo) ListAll(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Order), args.Error(1)
}
func (m *MockOrderRepo) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, lateFeeCents *int64) error {
	args := m.Called(ctx, id, status, lateFeeCents)
	return args.Error(0)
}

// MockCustomerRepo
type MockCustomerRepo struct {
	mock.Mock
}

func (m *MockCustomerRepo) Create(ctx context.Context, customer *domain.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}
func (m *MockCustomerRepo) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}
func (m *MockCustomerRepo) Search(ctx context.Context, query string, limit int32) ([]domain.Customer, error) {
	args := m.Called(ctx, query, limit)
	return args.Get(0).([]domain.Customer), args.Error(1)
}

// MockStaffRepo
type MockStaffRepo struct {
	mock.Mock
}

func (m *MockStaffRepo) GetByID(ctx context.Context, id string) (*domain.Staff, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Staff), args.Error(1)
}
func (m *MockStaffRepo) GetByEmail(ctx context.Context, email string) (*domain.Staff, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Staff), args.Error(1)
}

// MockBranchRepo
type MockBranchRepo struct {
	mock.Mock
}

func (m *MockBranchRepo) GetByID(ctx context.Context, id string) (*domain.Branch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Branch), args.Error(1)
}
func (m *MockBranchRepo) List(ctx context.Context) ([]domain.Branch, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Branch), args.Error(1)
}

// MockObserver
type MockObserver struct {
	mock.Mock
}

func (m *MockObserver) OrderCreated(order *domain.Order) {
	m.Called(order)
}
func (m *MockObserver) OrderStatusChanged(order *domain.Order, from domain.OrderStatus) {
	m.Called(order, from)
}
