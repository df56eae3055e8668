package grpc_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	pb "rentaldesk-backend/api/gen/v1"
	"rentaldesk-backend/internal/api/grpc"
	"rentaldesk-backend/internal/domain"
	"rentaldesk-backend/internal/service"
	"rentaldesk-backend/internal/utils"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) ListOrders(ctx context.Context, staff *domain.StaffContext, q service.OrderQuery) (*service.OrderPage, error) {
	args := m.Called(ctx, staff, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.OrderPage), args.Error(1)
}
func (m *MockOrderService) GetOrderStats(ctx context.Context, staff *domain.StaffContext, branchID *string, dr *domain.DateRange) (*domain.OrderStats, error) {
	args := m.Called(ctx, staff, branchID, dr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrderStats), args.Error(1)
}
func (m *MockOrderService) GetOrder(ctx context.Context, staff *domain.StaffContext, id string) (*service.OrderView, error) {
	args := m.Called(ctx, staff, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.OrderView), args.Error(1)
}
func (m *MockOrderService) CreateOrder(ctx context.Context, staff *domain.StaffContext, draft *domain.OrderDraft) (*service.OrderView, error) {
	args := m.Called(ctx, staff, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.OrderView), args.Error(1)
}
func (m *MockOrderService) UpdateOrderStatus(ctx context.Context, staff *domain.StaffContext, id string, st domain.OrderStatus, lateFee *int64) (*service.OrderView, error) {
	args := m.Called(ctx, staff, id, st, lateFee)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.OrderView), args.Error(1)
}

type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) GetSession(ctx context.Context, staffID string) (*domain.StaffContext, error) {
	args := m.Called(ctx, staffID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StaffContext), args.Error(1)
}

var staff = &domain.StaffContext{StaffID: "staff-1", BranchID: "branch-1"}

func staffCtx() context.Context {
	md := metadata.Pairs(grpc.StaffIDKey, "staff-1", grpc.BranchIDKey, "branch-1", grpc.SuperAdminKey, "false")
	return metadata.NewIncomingContext(context.Background(), md)
}

func TestOrderHandler_RequiresStaff(t *testing.T) {
	handler := grpc.NewOrderHandler(new(MockOrderService), new(MockSessionService), time.UTC)

	_, err := handler.GetOrder(context.Background(), &pb.GetOrderRequest{Id: "o1"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestOrderHandler_ListOrders(t *testing.T) {
	orderSvc := new(MockOrderService)
	handler := grpc.NewOrderHandler(orderSvc, new(MockSessionService), time.UTC)
	ctx := staffCtx()

	t.Run("Success", func(t *testing.T) {
		late := domain.OrderCategoryLate
		from, _ := utils.ParseDate("2024-05-01")
		to, _ := utils.ParseDate("2024-05-31")
		orderSvc.On("ListOrders", ctx, staff, service.OrderQuery{
			Category:  &late,
			DateRange: &domain.DateRange{From: from.Time(), To: to.Time()},
			Search:    "drill",
			Page:      2,
			PageSize:  10,
		}).Return(&service.OrderPage{
			Orders:   []service.OrderView{{Order: domain.Order{ID: "o1"}, Category: late}},
			Total:    11,
			Page:     2,
			PageSize: 10,
		}, nil).Once()

		res, err := handler.ListOrders(ctx, &pb.ListOrdersRequest{
			Category: "late",
			DateFrom: "2024-05-01",
			DateTo:   "2024-05-31",
			Search:   "drill",
			Page:     2,
			PageSize: 10,
		})
		require.NoError(t, err)
		require.Len(t, res.Orders, 1)
		assert.Equal(t, "late", res.Orders[0].Category)
		assert.Equal(t, int32(11), res.Total)
	})

	t.Run("HalfOpenDateRange", func(t *testing.T) {
		_, err := handler.ListOrders(ctx, &pb.ListOrdersRequest{DateFrom: "2024-05-01"})
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("ReversedDateRange", func(t *testing.T) {
		_, err := handler.ListOrders(ctx, &pb.ListOrdersRequest{DateFrom: "2024-05-31", DateTo: "2024-05-01"})
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})
}

func TestOrderHandler_GetOrderStats(t *testing.T) {
	orderSvc := new(MockOrderService)
	handler := grpc.NewOrderHandler(orderSvc, new(MockSessionService), time.UTC)
	ctx := staffCtx()

	orderSvc.On("GetOrderStats", ctx, staff, (*string)(nil), (*domain.DateRange)(nil)).Return(&domain.OrderStats{
		Total:      3,
		ByCategory: map[domain.OrderCategory]int32{domain.OrderCategoryLate: 1, domain.OrderCategoryOngoing: 2},
	}, nil)

	res, err := handler.GetOrderStats(ctx, &pb.GetOrderStatsRequest{})
	require.NoError(t, err)
	assert.Equal(t, int32(3), res.Total)
	assert.Equal(t, int32(1), res.ByCategory["late"])
}

func TestOrderHandler_CreateOrder(t *testing.T) {
	orderSvc := new(MockOrderService)
	handler := grpc.NewOrderHandler(orderSvc, new(MockSessionService), time.UTC)
	ctx := staffCtx()

	t.Run("Success", func(t *testing.T) {
		orderSvc.On("CreateOrder", ctx, staff, mock.MatchedBy(func(d *domain.OrderDraft) bool {
			return d.Customer != nil && d.Customer.ID == "cust-1" &&
				d.EndDate.Equal(time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC)) &&
				len(d.Items) == 1 && d.Items[0].Quantity == 2
		})).Return(&service.OrderView{
			Order:    domain.Order{ID: "o1", InvoiceNumber: "INV-1", Status: domain.OrderStatusActive},
			Category: domain.OrderCategoryOngoing,
			Actions:  []domain.OrderAction{domain.OrderActionMarkReturned, domain.OrderActionFlag},
		}, nil).Once()

		res, err := handler.CreateOrder(ctx, &pb.CreateOrderRequest{
			CustomerId:    "cust-1",
			InvoiceNumber: "INV-1",
			EndDate:       "2024-05-13",
			Items:         []*pb.OrderItemInput{{PhotoUrl: "a.jpg", Quantity: 2, PricePerDayCents: 500}},
		})
		require.NoError(t, err)
		assert.Equal(t, "o1", res.Order.Id)
		assert.Equal(t, []string{"markReturned", "flag"}, res.Order.Actions)
	})

	t.Run("BadTimestamp", func(t *testing.T) {
		_, err := handler.CreateOrder(ctx, &pb.CreateOrderRequest{EndDate: "13/05/2024"})
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("ValidationFailure", func(t *testing.T) {
		orderSvc.On("CreateOrder", ctx, staff, mock.MatchedBy(func(d *domain.OrderDraft) bool {
			return d.Customer == nil
		})).Return(nil, &utils.ValidationError{Failures: []utils.ValidationFailure{{Field: "customer", Message: "please select a customer"}}}).Once()

		_, err := handler.CreateOrder(ctx, &pb.CreateOrderRequest{})
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
		assert.Contains(t, status.Convert(err).Message(), "please select a customer")
	})
}

func TestOrderHandler_UpdateOrderStatus(t *testing.T) {
	orderSvc := new(MockOrderService)
	handler := grpc.NewOrderHandler(orderSvc, new(MockSessionService), time.UTC)
	ctx := staffCtx()
	fee := int64(1500)

	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"InvalidTransition", domain.ErrInvalidTransition, codes.FailedPrecondition},
		{"LateFeeNotAllowed", service.ErrLateFeeNotAllowed, codes.FailedPrecondition},
		{"NegativeFee", service.ErrInvalidLateFee, codes.InvalidArgument},
		{"NotFound", domain.ErrOrderNotFound, codes.NotFound},
		{"Forbidden", service.ErrUnauthorized, codes.PermissionDenied},
		{"Timeout", context.DeadlineExceeded, codes.DeadlineExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := "order-" + tt.name
			orderSvc.On("UpdateOrderStatus", ctx, staff, id, domain.OrderStatusCompleted, &fee).Return(nil, tt.err).Once()
			_, err := handler.UpdateOrderStatus(ctx, &pb.UpdateOrderStatusRequest{Id: id, Status: "completed", LateFeeCents: &fee})
			assert.Equal(t, tt.want, status.Code(err))
		})
	}

	_, err := handler.UpdateOrderStatus(ctx, &pb.UpdateOrderStatusRequest{Status: "completed"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestOrderHandler_GetSession(t *testing.T) {
	sessionSvc := new(MockSessionService)
	handler := grpc.NewOrderHandler(new(MockOrderService), sessionSvc, time.UTC)
	ctx := staffCtx()

	sessionSvc.On("GetSession", ctx, "staff-1").Return(&domain.StaffContext{
		StaffID:  "staff-1",
		BranchID: "branch-1",
		Tax:      domain.TaxSettings{Enabled: true, RatePercent: decimal.RequireFromString("8.25"), Inclusive: true},
	}, nil)

	res, err := handler.GetSession(ctx, &pb.GetSessionRequest{})
	require.NoError(t, err)
	assert.True(t, res.Session.TaxEnabled)
	assert.Equal(t, "8.25", res.Session.TaxRatePercent)
	assert.True(t, res.Session.TaxInclusive)
}

func TestMapOrderViewToProto(t *testing.T) {
	created := time.Date(2024, 5, 10, 9, 30, 0, 0, time.FixedZone("EDT", -4*3600))
	v := &service.OrderView{
		Order: domain.Order{
			ID:        "o1",
			Customer:  domain.Customer{ID: "c1", Name: "Ada"},
			Items:     []domain.OrderItem{{ID: "i1", Quantity: 1, ReturnStatus: domain.ItemReturnPending}},
			Status:    domain.OrderStatusActive,
			CreatedOn: created,
		},
		Category: domain.OrderCategoryLate,
	}

	p := grpc.MapOrderViewToProto(v)
	assert.Equal(t, "Ada", p.Customer.Name)
	assert.Equal(t, "pending", p.Items[0].ReturnStatus)
	assert.Equal(t, "2024-05-10T13:30:00Z", p.CreatedOn)
	assert.Empty(t, p.UpdatedOn)
	assert.NotNil(t, p.Actions)

	assert.Nil(t, grpc.MapOrderViewToProto(nil))
}
