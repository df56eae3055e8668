package grpc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "rentaldesk-backend/api/gen/v1"
	"rentaldesk-backend/internal/domain"
	"rentaldesk-backend/internal/service"
	"rentaldesk-backend/internal/utils"
)

type OrderHandler struct {
	pb.UnimplementedOrderServiceServer
	orderSvc   service.OrderService
	sessionSvc service.SessionService
	loc        *time.Location
}

// NewOrderHandler creates the OrderService handler. Dates and timestamps sent
// without an offset are wall-clock values in loc.
func NewOrderHandler(orderSvc service.OrderService, sessionSvc service.SessionService, loc *time.Location) *OrderHandler {
	if loc == nil {
		loc = time.Local
	}
	return &OrderHandler{orderSvc: orderSvc, sessionSvc: sessionSvc, loc: loc}
}

func (h *OrderHandler) GetSession(ctx context.Context, req *pb.GetSessionRequest) (*pb.GetSessionResponse, error) {
	staff, err := GetStaffFromContext(ctx)
	if err != nil {
		return nil, err
	}
	session, err := h.sessionSvc.GetSession(ctx, staff.StaffID)
	if err != nil {
		return nil, toStatus(err)
	}
	return &pb.GetSessionResponse{Session: MapStaffContextToProto(session)}, nil
}

func (h *OrderHandler) ListOrders(ctx context.Context, req *pb.ListOrdersRequest) (*pb.ListOrdersResponse, error) {
	staff, err := GetStaffFromContext(ctx)
	if err != nil {
		return nil, err
	}

	dateRange, err := parseDateRange(req.DateFrom, req.DateTo)
	if err != nil {
		return nil, err
	}

	query := service.OrderQuery{
		BranchID:  optional(req.BranchId),
		DateRange: dateRange,
		Search:    req.Search,
		Page:      req.Page,
		PageSize:  req.PageSize,
	}
	if req.Category != "" {
		category := domain.OrderCategory(req.Category)
		query.Category = &category
	}

	page, err := h.orderSvc.ListOrders(ctx, staff, query)
	if err != nil {
		return nil, toStatus(err)
	}

	orders := make([]*pb.Order, 0, len(page.Orders))
	for i := range page.Orders {
		orders = append(orders, MapOrderViewToProto(&page.Orders[i]))
	}
	return &pb.ListOrdersResponse{
		Orders:   orders,
		Total:    page.Total,
		Page:     page.Page,
		PageSize: page.PageSize,
		HasMore:  page.HasMore,
	}, nil
}

func (h *OrderHandler) GetOrderStats(ctx context.Context, req *pb.GetOrderStatsRequest) (*pb.GetOrderStatsResponse, error) {
	staff, err := GetStaffFromContext(ctx)
	if err != nil {
		return nil, err
	}
	dateRange, err := parseDateRange(req.DateFrom, req.DateTo)
	if err != nil {
		return nil, err
	}

	stats, err := h.orderSvc.GetOrderStats(ctx, staff, optional(req.BranchId), dateRange)
	if err != nil {
		return nil, toStatus(err)
	}
	return MapOrderStatsToProto(stats), nil
}

func (h *OrderHandler) GetOrder(ctx context.Context, req *pb.GetOrderRequest) (*pb.OrderResponse, error) {
	staff, err := GetStaffFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if req.Id == "" {
		return nil, status.Error(codes.InvalidArgument, "order id is required")
	}

	view, err := h.orderSvc.GetOrder(ctx, staff, req.Id)
	if err != nil {
		return nil, toStatus(err)
	}
	return &pb.OrderResponse{Order: MapOrderViewToProto(view)}, nil
}

func (h *OrderHandler) CreateOrder(ctx context.Context, req *pb.CreateOrderRequest) (*pb.OrderResponse, error) {
	staff, err := GetStaffFromContext(ctx)
	if err != nil {
		return nil, err
	}

	draft := &domain.OrderDraft{InvoiceNumber: req.InvoiceNumber}
	if req.CustomerId != "" {
		draft.Customer = &domain.Customer{ID: req.CustomerId}
	}
	if req.StartDate != "" {
		if draft.StartDate, err = utils.ParseInputTime(req.StartDate, h.loc); err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid start_date: %v", err)
		}
	}
	if req.EndDate != "" {
		if draft.EndDate, err = utils.ParseInputTime(req.EndDate, h.loc); err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid end_date: %v", err)
		}
	}
	for _, it := range req.Items {
		if it == nil {
			continue
		}
		draft.Items = append(draft.Items, domain.OrderItem{
			PhotoURL:         it.PhotoUrl,
			ProductName:      it.ProductName,
			Quantity:         it.Quantity,
			PricePerDayCents: it.PricePerDayCents,
		})
	}

	view, err := h.orderSvc.CreateOrder(ctx, staff, draft)
	if err != nil {
		return nil, toStatus(err)
	}
	return &pb.OrderResponse{Order: MapOrderViewToProto(view)}, nil
}

func (h *OrderHandler) UpdateOrderStatus(ctx context.Context, req *pb.UpdateOrderStatusRequest) (*pb.OrderResponse, error) {
	staff, err := GetStaffFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if req.Id == "" {
		return nil, status.Error(codes.InvalidArgument, "order id is required")
	}

	view, err := h.orderSvc.UpdateOrderStatus(ctx, staff, req.Id, domain.OrderStatus(req.Status), req.LateFeeCents)
	if err != nil {
		return nil, toStatus(err)
	}
	return &pb.OrderResponse{Order: MapOrderViewToProto(view)}, nil
}

func parseDateRange(from, to string) (*domain.DateRange, error) {
	if from == "" && to == "" {
		return nil, nil
	}
	if from == "" || to == "" {
		return nil, status.Error(codes.InvalidArgument, "date_from and date_to must be set together")
	}
	start, err := utils.ParseDate(from)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid date_from: %v", err)
	}
	end, err := utils.ParseDate(to)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid date_to: %v", err)
	}
	if end.Time().Before(start.Time()) {
		return nil, status.Error(codes.InvalidArgument, fmt.Sprintf("date_to %s is before date_from %s", end, start))
	}
	return &domain.DateRange{From: start.Time(), To: end.Time()}, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
