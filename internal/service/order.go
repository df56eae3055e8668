package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rentaldesk-backend/internal/domain"
	"rentaldesk-backend/internal/logger"
	"rentaldesk-backend/internal/repository"
	"rentaldesk-backend/internal/utils"
)

// OrderOptions tunes listing.
type OrderOptions struct {
	DefaultPageSize int32
	MaxPageSize     int32
}

type orderService struct {
	orderRepo    repository.OrderRepository
	customerRepo repository.CustomerRepository
	branchRepo   repository.BranchRepository
	observer     OrderObserver
	clock        Clock
	opts         OrderOptions
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	customerRepo repository.CustomerRepository,
	branchRepo repository.BranchRepository,
	observer OrderObserver,
	clock Clock,
	opts OrderOptions,
) OrderService {
	if observer == nil {
		observer = noopObserver{}
	}
	if clock == nil {
		clock = ClockIn(time.Local)
	}
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = 20
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = 100
	}
	return &orderService{
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		branchRepo:   branchRepo,
		observer:     observer,
		clock:        clock,
		opts:         opts,
	}
}

func (s *orderService) ListOrders(ctx context.Context, staff *domain.StaffContext, q OrderQuery) (*OrderPage, error) {
	logger.EnterMethod("orderService.ListOrders", "staffID", staff.StaffID, "page", q.Page)

	filter := domain.OrderFilter{
		BranchID:  staff.ScopeBranch(q.BranchID),
		DateRange: q.DateRange,
		Search:    strings.TrimSpace(q.Search),
		Page:      q.Page,
		PageSize:  q.PageSize,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = s.opts.DefaultPageSize
	}
	if filter.PageSize > s.opts.MaxPageSize {
		filter.PageSize = s.opts.MaxPageSize
	}
	if q.Category != nil {
		if !q.Category.IsValid() {
			logger.ExitMethodWithError("orderService.ListOrders", domain.ErrInvalidCategory)
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidCategory, *q.Category)
		}
		filter.Statuses = q.Category.CandidateStatuses()
	}

	if q.Category != nil && q.Category.NeedsClassifier() {
		page, err := s.listByCategory(ctx, filter, *q.Category)
		if err != nil {
			logger.ExitMethodWithError("orderService.ListOrders", err)
			return nil, err
		}
		logger.ExitMethod("orderService.ListOrders", "returned", len(page.Orders), "total", page.Total)
		return page, nil
	}

	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		logger.ExitMethodWithError("orderService.ListOrders", err)
		return nil, err
	}

	now := s.clock()
	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, newOrderView(orders[i], now))
	}

	page := newOrderPage(views, total, filter)
	logger.ExitMethod("orderService.ListOrders", "returned", len(views), "total", total)
	return page, nil
}

// listByCategory classifies every candidate and pages over the members, so
// Total and HasMore count orders that are really in category.
func (s *orderService) listByCategory(ctx context.Context, filter domain.OrderFilter, category domain.OrderCategory) (*OrderPage, error) {
	candidates, err := s.orderRepo.ListAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	members := make([]OrderView, 0, len(candidates))
	for i := range candidates {
		if view := newOrderView(candidates[i], now); view.Category == category {
			members = append(members, view)
		}
	}

	total := int32(len(members))
	from := int64(filter.Page-1) * int64(filter.PageSize)
	to := from + int64(filter.PageSize)
	if from > int64(total) {
		from = int64(total)
	}
	if to > int64(total) {
		to = int64(total)
	}
	return newOrderPage(members[from:to], total, filter), nil
}

func newOrderPage(views []OrderView, total int32, filter domain.OrderFilter) *OrderPage {
	return &OrderPage{
		Orders:   views,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
		HasMore:  int64(filter.Page)*int64(filter.PageSize) < int64(total),
	}
}

func (s *orderService) GetOrderStats(ctx context.Context, staff *domain.StaffContext, branchID *string, dateRange *domain.DateRange) (*domain.OrderStats, error) {
	orders, err := s.orderRepo.ListAll(ctx, domain.OrderFilter{
		BranchID:  staff.ScopeBranch(branchID),
		DateRange: dateRange,
	})
	if err != nil {
		return nil, err
	}
	stats := utils.CountByCategory(orders, s.clock())
	return &stats, nil
}

func (s *orderService) GetOrder(ctx context.Context, staff *domain.StaffContext, id string) (*OrderView, error) {
	order, err := s.loadVisible(ctx, staff, id)
	if err != nil {
		return nil, err
	}
	view := newOrderView(*order, s.clock())
	return &view, nil
}

func (s *orderService) CreateOrder(ctx context.Context, staff *domain.StaffContext, draft *domain.OrderDraft) (*OrderView, error) {
	logger.EnterMethod("orderService.CreateOrder", "staffID", staff.StaffID)

	if failures := utils.ValidateDraft(draft, staff); len(failures) > 0 {
		err := &utils.ValidationError{Failures: failures}
		logger.ExitMethodWithError("orderService.CreateOrder", err)
		return nil, err
	}

	customer, err := s.customerRepo.GetByID(ctx, draft.Customer.ID)
	if err != nil {
		logger.ExitMethodWithError("orderService.CreateOrder", err, "customerID", draft.Customer.ID)
		return nil, err
	}

	branch, err := s.branchRepo.GetByID(ctx, staff.BranchID)
	if err != nil {
		logger.ExitMethodWithError("orderService.CreateOrder", err, "branchID", staff.BranchID)
		return nil, err
	}

	now := s.clock()
	loc := now.Location()
	start := draft.StartDate
	if start.IsZero() {
		start = now
	}
	start, end := start.In(loc), draft.EndDate.In(loc)

	items := append([]domain.OrderItem(nil), draft.Items...)
	for i := range items {
		items[i].ID = ""
		items[i].ReturnStatus = domain.ItemReturnPending
	}
	utils.RepriceItems(items, utils.DaysBetween(start, end))
	totals := utils.CalculateTotals(items, branch.Tax)

	status := domain.OrderStatusActive
	if utils.DateOf(start).Time().After(utils.DateOf(now).Time()) {
		status = domain.OrderStatusScheduled
	}

	order := &domain.Order{
		InvoiceNumber:   strings.TrimSpace(draft.InvoiceNumber),
		BranchID:        staff.BranchID,
		StaffID:         staff.StaffID,
		Customer:        *customer,
		Items:           items,
		StartDate:       start.Format(time.DateOnly),
		StartDateTime:   start.Format(time.RFC3339),
		EndDate:         end.Format(time.DateOnly),
		EndDateTime:     end.Format(time.RFC3339),
		Status:          status,
		SubtotalCents:   totals.SubtotalCents,
		TaxCents:        totals.TaxCents,
		GrandTotalCents: totals.GrandTotalCents,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		logger.ExitMethodWithError("orderService.CreateOrder", err)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.observer.OrderCreated(order)
	logger.Info("Order created", "order_id", order.ID, "branch_id", order.BranchID, "status", order.Status, "grand_total_cents", order.GrandTotalCents)

	view := newOrderView(*order, now)
	logger.ExitMethod("orderService.CreateOrder", "orderID", order.ID)
	return &view, nil
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, staff *domain.StaffContext, id string, status domain.OrderStatus, lateFeeCents *int64) (*OrderView, error) {
	log := logger.WithOrder(id)
	log.Debug("Updating order status", "status", status)

	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}

	order, err := s.loadVisible(ctx, staff, id)
	if err != nil {
		return nil, err
	}

	from := order.Status
	if !domain.CanTransition(from, status) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, status)
	}

	if lateFeeCents != nil {
		if *lateFeeCents < 0 {
			return nil, ErrInvalidLateFee
		}
		if !utils.LateFeeAllowed(utils.ClassifyOrder(order, s.clock())) || !isReturnStatus(status) {
			return nil, ErrLateFeeNotAllowed
		}
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, status, lateFeeCents); err != nil {
		log.Error("Failed to update order status", "error", err)
		return nil, err
	}

	order.Status = status
	if lateFeeCents != nil {
		fee := *lateFeeCents
		order.LateFeeCents = &fee
	}
	order.UpdatedOn = time.Now().UTC()

	s.observer.OrderStatusChanged(order, from)
	log.Info("Order status updated", "from", from, "to", status)

	view := newOrderView(*order, s.clock())
	return &view, nil
}

// loadVisible fetches an order the staff member is allowed to see. Orders of
// other branches are reported as missing.
func (s *orderService) loadVisible(ctx context.Context, staff *domain.StaffContext, id string) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !staff.IsSuperAdmin && order.BranchID != staff.BranchID {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

func isReturnStatus(s domain.OrderStatus) bool {
	switch s {
	case domain.OrderStatusCompleted, domain.OrderStatusCompletedWithIssues, domain.OrderStatusPartiallyReturned:
		return true
	}
	return false
}

func newOrderView(order domain.Order, now time.Time) OrderView {
	category := utils.ClassifyOrder(&order, now)
	return OrderView{
		Order:    order,
		Category: category,
		Actions:  utils.ActionsFor(category),
	}
}
