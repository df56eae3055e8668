package service

import (
	"context"
	"fmt"
	"strings"

	"rentaldesk-backend/internal/domain"
	"rentaldesk-backend/internal/repository"
)

type customerService struct {
	customerRepo repository.CustomerRepository
}

func NewCustomerService(customerRepo repository.CustomerRepository) CustomerService {
	return &customerService{customerRepo: customerRepo}
}

func (s *customerService) SearchCustomers(ctx context.Context, query string, limit int32) ([]domain.Customer, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.customerRepo.Search(ctx, query, limit)
}

func (s *customerService) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: customer id is required", ErrInvalidArgument)
	}
	return s.customerRepo.GetByID(ctx, id)
}

func (s *customerService) CreateCustomer(ctx context.Context, name, phone string) (*domain.Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: customer name is required", ErrInvalidArgument)
	}
	c := &domain.Customer{Name: name, Phone: strings.TrimSpace(phone)}
	if err := s.customerRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
