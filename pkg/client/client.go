// Package client is the Go client of the order desk gRPC API.
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	pb "rentaldesk-backend/api/gen/v1"
	"rentaldesk-backend/pkg/listing"
)

var ErrNotSignedIn = errors.New("client is not signed in")

// Client keeps the tokens of one signed-in staff member and attaches the
// access token to every call.
type Client struct {
	conn   *grpc.ClientConn
	auth   pb.AuthServiceClient
	orders pb.OrderServiceClient

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	session      *pb.Session
}

// Dial connects to target. Without options the connection is plaintext.
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	if len(opts) == 0 {
		opts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", target, err)
	}
	c := New(conn)
	c.conn = conn
	return c, nil
}

// New wraps an existing connection. Close is then a no-op.
func New(cc grpc.ClientConnInterface) *Client {
	return &Client{
		auth:   pb.NewAuthServiceClient(cc),
		orders: pb.NewOrderServiceClient(cc),
	}
}

func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *Client) Login(ctx context.Context, email, password string) (*pb.Session, error) {
	resp, err := c.auth.Login(ctx, &pb.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	c.store(resp)
	return resp.Session, nil
}

// Refresh trades the refresh token for a new token pair.
func (c *Client) Refresh(ctx context.Context) (*pb.Session, error) {
	c.mu.RLock()
	refresh := c.refreshToken
	c.mu.RUnlock()
	if refresh == "" {
		return nil, ErrNotSignedIn
	}

	ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+refresh)
	resp, err := c.auth.RefreshToken(ctx, &pb.RefreshTokenRequest{})
	if err != nil {
		return nil, err
	}
	c.store(resp)
	return resp.Session, nil
}

// SetTokens restores a previously saved token pair.
func (c *Client) SetTokens(access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = access
	c.refreshToken = refresh
}

func (c *Client) Tokens() (access, refresh string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken, c.refreshToken
}

func (c *Client) store(resp *pb.AuthResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = resp.AccessToken
	c.refreshToken = resp.RefreshToken
	c.session = resp.Session
}

func (c *Client) authed(ctx context.Context) (context.Context, error) {
	c.mu.RLock()
	token := c.accessToken
	c.mu.RUnlock()
	if token == "" {
		return nil, ErrNotSignedIn
	}
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token), nil
}

// CurrentSession is the session of the last sign-in or Session call.
func (c *Client) CurrentSession() *pb.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// Session returns the signed-in staff member with their branch tax settings.
func (c *Client) Session(ctx context.Context) (*pb.Session, error) {
	ctx, err := c.authed(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := c.orders.GetSession(ctx, &pb.GetSessionRequest{})
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.session = resp.Session
	c.mu.Unlock()
	return resp.Session, nil
}

func (c *Client) ListOrders(ctx context.Context, req *pb.ListOrdersRequest) (*pb.ListOrdersResponse, error) {
	ctx, err := c.authed(ctx)
	if err != nil {
		return nil, err
	}
	return c.orders.ListOrders(ctx, req)
}

func (c *Client) OrderStats(ctx context.Context, req *pb.GetOrderStatsRequest) (*pb.GetOrderStatsResponse, error) {
	ctx, err := c.authed(ctx)
	if err != nil {
		return nil, err
	}
	return c.orders.GetOrderStats(ctx, req)
}

func (c *Client) GetOrder(ctx context.Context, id string) (*pb.Order, error) {
	ctx, err := c.authed(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := c.orders.GetOrder(ctx, &pb.GetOrderRequest{Id: id})
	if err != nil {
		return nil, err
	}
	return resp.Order, nil
}

func (c *Client) CreateOrder(ctx context.Context, req *pb.CreateOrderRequest) (*pb.Order, error) {
	ctx, err := c.authed(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := c.orders.CreateOrder(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.Order, nil
}

// UpdateOrderStatus moves an order to status. lateFeeCents may be nil.
func (c *Client) UpdateOrderStatus(ctx context.Context, id, status string, lateFeeCents *int64) (*pb.Order, error) {
	ctx, err := c.authed(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := c.orders.UpdateOrderStatus(ctx, &pb.UpdateOrderStatusRequest{
		Id:           id,
		Status:       status,
		LateFeeCents: lateFeeCents,
	})
	if err != nil {
		return nil, err
	}
	return resp.Order, nil
}

// Fetch serves listing.Pager.
func (c *Client) Fetch(ctx context.Context, q listing.Query, page, pageSize int32) (*listing.Page[*pb.Order], error) {
	resp, err := c.ListOrders(ctx, &pb.ListOrdersRequest{
		BranchId: q.BranchID,
		Category: q.Category,
		DateFrom: q.DateFrom,
		DateTo:   q.DateTo,
		Search:   q.Search,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, err
	}
	return &listing.Page[*pb.Order]{Items: resp.Orders, Total: resp.Total, HasMore: resp.HasMore}, nil
}

var _ listing.Fetcher[*pb.Order] = (*Client)(nil)
