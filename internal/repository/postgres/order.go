package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"rentaldesk-backend/internal/domain"
	"rentaldesk-backend/internal/logger"
	"rentaldesk-backend/internal/repository"
)

const orderColumns = `o.id, o.invoice_number, o.branch_id, o.staff_id, c.id, c.name, c.phone,
	o.start_date, o.start_date_time, o.end_date, o.end_date_time, o.status,
	o.subtotal_cents, o.tax_cents, o.grand_total_cents, o.late_fee_cents, o.created_on, o.updated_on`

const orderFrom = ` FROM orders o JOIN customers c ON c.id = o.customer_id`

type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, o *domain.Order) error {
	logger.EnterMethod("orderRepository.Create", "invoice", o.InvoiceNumber, "items", len(o.Items))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.ExitMethodWithError("orderRepository.Create", err)
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	if o.ID == "" {
		o.ID = uuid.NewString()
	}

	query := `INSERT INTO orders (id, invoice_number, branch_id, staff_id, customer_id,
		start_date, start_date_time, end_date, end_date_time, status,
		subtotal_cents, tax_cents, grand_total_cents, late_fee_cents, created_on, updated_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	logger.DatabaseCall("orderRepository.Create", query, "order_id", o.ID)
	_, err = tx.ExecContext(ctx, query,
		o.ID, o.InvoiceNumber, o.BranchID, o.StaffID, o.Customer.ID,
		o.StartDate, o.StartDateTime, o.EndDate, o.EndDateTime, o.Status,
		o.SubtotalCents, o.TaxCents, o.GrandTotalCents, nullableCents(o.LateFeeCents), now, now,
	)
	if err != nil {
		logger.ExitMethodWithError("orderRepository.Create", err, "order_id", o.ID)
		return fmt.Errorf("failed to insert order: %w", err)
	}

	itemQuery := `INSERT INTO order_items (id, order_id, position, photo_url, product_name, quantity,
		price_per_day_cents, days, line_total_cents, return_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for i := range o.Items {
		item := &o.Items[i]
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		if item.ReturnStatus == "" {
			item.ReturnStatus = domain.ItemReturnPending
		}
		item.OrderID = o.ID
		_, err = tx.ExecContext(ctx, itemQuery,
			item.ID, item.OrderID, i, item.PhotoURL, item.ProductName, item.Quantity,
			item.PricePerDayCents, item.Days, item.LineTotalCents, item.ReturnStatus,
		)
		if err != nil {
			logger.ExitMethodWithError("orderRepository.Create", err, "order_id", o.ID, "item", i)
			return fmt.Errorf("failed to insert order item %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		logger.ExitMethodWithError("orderRepository.Create", err, "order_id", o.ID)
		return err
	}

	o.CreatedOn = now
	o.UpdatedOn = now
	logger.ExitMethod("orderRepository.Create", "order_id", o.ID)
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + orderFrom + ` WHERE o.id = $1`
	o, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}

	orders := []domain.Order{*o}
	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *orderRepository) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int32, error) {
	logger.EnterMethod("orderRepository.List", "page", filter.Page, "pageSize", filter.PageSize)

	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	where, args := buildOrderWhere(filter)

	var count int32
	countQuery := `SELECT count(*)` + orderFrom + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		logger.ExitMethodWithError("orderRepository.List", err)
		return nil, 0, err
	}

	query := `SELECT ` + orderColumns + orderFrom + where +
		fmt.Sprintf(" ORDER BY o.created_on DESC, o.id LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, pageSize, (page-1)*pageSize)

	orders, err := r.query(ctx, query, args...)
	if err != nil {
		logger.ExitMethodWithError("orderRepository.List", err)
		return nil, 0, err
	}

	logger.ExitMethod("orderRepository.List", "count", len(orders), "total", count)
	return orders, count, nil
}

func (r *orderRepository) ListAll(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	where, args := buildOrderWhere(filter)
	query := `SELECT ` + orderColumns + orderFrom + where + ` ORDER BY o.created_on DESC, o.id`
	return r.query(ctx, query, args...)
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, lateFeeCents *int64) error {
	query := `UPDATE orders SET status = $1, late_fee_cents = COALESCE($2, late_fee_cents), updated_on = $3 WHERE id = $4`
	logger.DatabaseCall("orderRepository.UpdateStatus", query, "order_id", id, "status", status)
	result, err := r.db.ExecContext(ctx, query, status, nullableCents(lateFeeCents), time.Now().UTC(), id)
	if err != nil {
		logger.DatabaseResult("orderRepository.UpdateStatus", 0, err)
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	logger.DatabaseResult("orderRepository.UpdateStatus", rows, nil)
	if rows == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) query(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// loadItems fills the Items of every order with a single query.
func (r *orderRepository) loadItems(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, len(orders))
	index := make(map[string]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
		orders[i].Items = []domain.OrderItem{}
	}

	query := `SELECT id, order_id, photo_url, product_name, quantity, price_per_day_cents, days, line_total_cents, return_status
		FROM order_items WHERE order_id = ANY($1) ORDER BY order_id, position`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.PhotoURL, &it.ProductName, &it.Quantity,
			&it.PricePerDayCents, &it.Days, &it.LineTotalCents, &it.ReturnStatus); err != nil {
			return err
		}
		if i, ok := index[it.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	return rows.Err()
}

func scanOrder(s scanner) (*domain.Order, error) {
	var o domain.Order
	var lateFee sql.NullInt64
	err := s.Scan(
		&o.ID, &o.InvoiceNumber, &o.BranchID, &o.StaffID, &o.Customer.ID, &o.Customer.Name, &o.Customer.Phone,
		&o.StartDate, &o.StartDateTime, &o.EndDate, &o.EndDateTime, &o.Status,
		&o.SubtotalCents, &o.TaxCents, &o.GrandTotalCents, &lateFee, &o.CreatedOn, &o.UpdatedOn,
	)
	if err != nil {
		return nil, err
	}
	if lateFee.Valid {
		fee := lateFee.Int64
		o.LateFeeCents = &fee
	}
	return &o, nil
}

// buildOrderWhere renders the filter as a WHERE clause with positional args.
func buildOrderWhere(filter domain.OrderFilter) (string, []any) {
	var clauses []string
	var args []any
	add := func(format string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(format, len(args)))
	}

	if filter.BranchID != nil {
		add("o.branch_id = $%d", *filter.BranchID)
	}
	if len(filter.Statuses) > 0 {
		statusStrs := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statusStrs[i] = string(s)
		}
		add("o.status = ANY($%d)", pq.Array(statusStrs))
	}
	if filter.DateRange != nil {
		add("substr(o.start_date, 1, 10) >= $%d", filter.DateRange.From.Format(time.DateOnly))
		add("substr(o.start_date, 1, 10) <= $%d", filter.DateRange.To.Format(time.DateOnly))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+escapeLike(search)+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(o.invoice_number ILIKE $%d OR c.name ILIKE $%d OR c.phone ILIKE $%d)", n, n, n))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func nullableCents(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
