package service

import (
	"context"
	"time"

	"rentaldesk-backend/internal/domain"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	RefreshToken(ctx context.Context, refresh string) (*AuthResult, error)
}

type SessionService interface {
	// GetSession resolves the signed-in staff member, their branch and its tax settings.
	GetSession(ctx context.Context, staffID string) (*domain.StaffContext, error)
}

type OrderService interface {
	ListOrders(ctx context.Context, staff *domain.StaffContext, query OrderQuery) (*OrderPage, error)
	GetOrderStats(ctx context.Context, staff *domain.StaffContext, branchID *string, dateRange *domain.DateRange) (*domain.OrderStats, error)
	GetOrder(ctx context.Context, staff *domain.StaffContext, id string) (*OrderView, error)
	CreateOrder(ctx context.Context, staff *domain.StaffContext, draft *domain.OrderDraft) (*OrderView, error)
	UpdateOrderStatus(ctx context.Context, staff *domain.StaffContext, id string, status domain.OrderStatus, lateFeeCents *int64) (*OrderView, error)
}

type CustomerService interface {
	SearchCustomers(ctx context.Context, query string, limit int32) ([]domain.Customer, error)
	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)
	CreateCustomer(ctx context.Context, name, phone string) (*domain.Customer, error)
}

// OrderQuery is a listing request. Nil fields are not filtered on.
type OrderQuery struct {
	BranchID  *string
	Category  *domain.OrderCategory
	DateRange *domain.DateRange
	Search    string
	Page      int32
	PageSize  int32
}

// OrderView is an order as shown to staff: its derived category and the
// actions that category enables.
type OrderView struct {
	Order    domain.Order         `json:"order"`
	Category domain.OrderCategory `json:"category"`
	Actions  []domain.OrderAction `json:"actions"`
}

type OrderPage struct {
	Orders   []OrderView `json:"orders"`
	Total    int32       `json:"total"`
	Page     int32       `json:"page"`
	PageSize int32       `json:"page_size"`
	HasMore  bool        `json:"has_more"`
}

type AuthResult struct {
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
	Session      *domain.StaffContext `json:"session"`
}

// OrderObserver is notified after order writes succeed.
type OrderObserver interface {
	OrderCreated(order *domain.Order)
	OrderStatusChanged(order *domain.Order, from domain.OrderStatus)
}

type noopObserver struct{}

func (noopObserver) OrderCreated(*domain.Order)                            {}
func (noopObserver) OrderStatusChanged(*domain.Order, domain.OrderStatus) {}

// Clock returns the evaluation instant for classification. The returned
// time's location is the zone used for calendar-day arithmetic.
type Clock func() time.Time

// ClockIn returns a Clock reading the wall clock in loc.
func ClockIn(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return func() time.Time { return time.Now().In(loc) }
}
