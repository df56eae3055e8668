package client

import (
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	pb "rentaldesk-backend/api/gen/v1"
	apigrpc "rentaldesk-backend/internal/api/grpc"
	"rentaldesk-backend/internal/api/grpc/interceptor"
	"rentaldesk-backend/internal/domain"
	"rentaldesk-backend/internal/security"
	"rentaldesk-backend/internal/service"
	"rentaldesk-backend/pkg/listing"
)

var staff = &domain.StaffContext{StaffID: "staff-1", BranchID: "branch-1", Name: "Sam"}

type fakeAuth struct {
	tokens security.TokenManager
}

func (a *fakeAuth) result() (*service.AuthResult, error) {
	subject := security.TokenSubject{StaffID: staff.StaffID, BranchID: staff.BranchID}
	access, err := a.tokens.GenerateAccessToken(subject)
	if err != nil {
		return nil, err
	}
	refresh, err := a.tokens.GenerateRefreshToken(subject)
	if err != nil {
		return nil, err
	}
	return &service.AuthResult{AccessToken: access, RefreshToken: refresh, Session: staff}, nil
}

func (a *fakeAuth) Login(ctx context.Context, email, password string) (*service.AuthResult, error) {
	if password != "secret" {
		return nil, service.ErrInvalidCredentials
	}
	return a.result()
}

func (a *fakeAuth) RefreshToken(ctx context.Context, refresh string) (*service.AuthResult, error) {
	if _, err := a.tokens.ValidateToken(refresh); err != nil {
		return nil, err
	}
	return a.result()
}

type fakeSessions struct{}

func (fakeSessions) GetSession(ctx context.Context, staffID string) (*domain.StaffContext, error) {
	return staff, nil
}

// fakeOrders serves a fixed list of orders.
type fakeOrders struct {
	service.OrderService
	mu      sync.Mutex
	orders  []domain.Order
	queries []service.OrderQuery
}

func newFakeOrders(n int) *fakeOrders {
	f := &fakeOrders{}
	for i := 0; i < n; i++ {
		f.orders = append(f.orders, domain.Order{
			ID:            string(rune('a'+i%26)) + "-order",
			InvoiceNumber: "INV-" + string(rune('A'+i%26)),
			BranchID:      staff.BranchID,
			Status:        domain.OrderStatusActive,
			EndDate:       "2099-01-01",
		})
	}
	return f
}

func (f *fakeOrders) ListOrders(ctx context.Context, s *domain.StaffContext, q service.OrderQuery) (*service.OrderPage, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()

	var matched []domain.Order
	for _, o := range f.orders {
		if q.Search == "" || strings.Contains(o.InvoiceNumber, q.Search) {
			matched = append(matched, o)
		}
	}
	start := int((q.Page - 1) * q.PageSize)
	end := start + int(q.PageSize)
	if start > len(matched) {
		start = len(matched)
	}
	if end > len(matched) {
		end = len(matched)
	}
	page := &service.OrderPage{
		Total:    int32(len(matched)),
		Page:     q.Page,
		PageSize: q.PageSize,
		HasMore:  end < len(matched),
	}
	for _, o := range matched[start:end] {
		page.Orders = append(page.Orders, service.OrderView{Order: o, Category: domain.OrderCategoryOngoing})
	}
	return page, nil
}

func (f *fakeOrders) GetOrder(ctx context.Context, s *domain.StaffContext, id string) (*service.OrderView, error) {
	for _, o := range f.orders {
		if o.ID == id {
			return &service.OrderView{Order: o, Category: domain.OrderCategoryOngoing}, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (f *fakeOrders) UpdateOrderStatus(ctx context.Context, s *domain.StaffContext, id string, st domain.OrderStatus, lateFee *int64) (*service.OrderView, error) {
	if lateFee != nil {
		return nil, service.ErrLateFeeNotAllowed
	}
	view, err := f.GetOrder(ctx, s, id)
	if err != nil {
		return nil, err
	}
	view.Order.Status = st
	view.Category = domain.OrderCategoryReturned
	return view, nil
}

func startServer(t *testing.T, orders *fakeOrders) *Client {
	t.Helper()
	tokens := security.NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour, 24*time.Hour)

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(interceptor.NewAuthInterceptor(tokens).Unary()))
	pb.RegisterAuthServiceServer(srv, apigrpc.NewAuthHandler(&fakeAuth{tokens: tokens}))
	pb.RegisterOrderServiceServer(srv, apigrpc.NewOrderHandler(orders, fakeSessions{}, time.UTC))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	c, err := Dial("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestClient_RequiresLogin(t *testing.T) {
	c := startServer(t, newFakeOrders(0))

	_, err := c.GetOrder(context.Background(), "a-order")
	assert.ErrorIs(t, err, ErrNotSignedIn)

	_, err = c.Login(context.Background(), "sam@example.com", "wrong")
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestClient_LoginSessionAndRefresh(t *testing.T) {
	c := startServer(t, newFakeOrders(0))
	ctx := context.Background()

	session, err := c.Login(ctx, "sam@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "branch-1", session.BranchId)

	session, err = c.Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Sam", session.Name)
	assert.Equal(t, session, c.CurrentSession())

	_, oldRefresh := c.Tokens()
	_, err = c.Refresh(ctx)
	require.NoError(t, err)
	access, refresh := c.Tokens()
	assert.NotEmpty(t, access)
	assert.NotEqual(t, oldRefresh, refresh)
}

func TestClient_OrderCalls(t *testing.T) {
	c := startServer(t, newFakeOrders(3))
	ctx := context.Background()
	_, err := c.Login(ctx, "sam@example.com", "secret")
	require.NoError(t, err)

	order, err := c.GetOrder(ctx, "b-order")
	require.NoError(t, err)
	assert.Equal(t, "INV-B", order.InvoiceNumber)
	assert.Equal(t, "ongoing", order.Category)

	_, err = c.GetOrder(ctx, "missing")
	assert.Equal(t, codes.NotFound, status.Code(err))

	fee := int64(500)
	_, err = c.UpdateOrderStatus(ctx, "b-order", "completed", &fee)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	order, err = c.UpdateOrderStatus(ctx, "b-order", "completed", nil)
	require.NoError(t, err)
	assert.Equal(t, "completed", order.Status)
}

func TestClient_DrivesPager(t *testing.T) {
	orders := newFakeOrders(25)
	c := startServer(t, orders)
	ctx := context.Background()
	_, err := c.Login(ctx, "sam@example.com", "secret")
	require.NoError(t, err)

	pager := listing.NewPager[*pb.Order](c, listing.WithPageSize(10))
	for i := 0; i < 4; i++ {
		require.NoError(t, pager.LoadMore(ctx))
	}

	snap := pager.Snapshot()
	assert.Len(t, snap.Items, 25)
	assert.Equal(t, int32(25), snap.Total)
	assert.False(t, snap.HasMore)

	orders.mu.Lock()
	defer orders.mu.Unlock()
	require.Len(t, orders.queries, 3)
	assert.Equal(t, int32(3), orders.queries[2].Page)
}
