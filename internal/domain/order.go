package domain

import "time"

type OrderStatus string

const (
	OrderStatusScheduled           OrderStatus = "scheduled"
	OrderStatusActive              OrderStatus = "active"
	OrderStatusCompleted           OrderStatus = "completed"
	OrderStatusCompletedWithIssues OrderStatus = "completedWithIssues"
	OrderStatusCancelled           OrderStatus = "cancelled"
	OrderStatusFlagged             OrderStatus = "flagged"
	OrderStatusPartiallyReturned   OrderStatus = "partiallyReturned"
)

// AllOrderStatuses lists every persisted status in declaration order.
var AllOrderStatuses = []OrderStatus{
	OrderStatusScheduled,
	OrderStatusActive,
	OrderStatusCompleted,
	OrderStatusCompletedWithIssues,
	OrderStatusCancelled,
	OrderStatusFlagged,
	OrderStatusPartiallyReturned,
}

// IsValid reports whether s belongs to the closed status set.
func (s OrderStatus) IsValid() bool {
	for _, known := range AllOrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition can leave s.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCompletedWithIssues || s == OrderStatusCancelled
}

// orderTransitions is the set of explicit status changes an order may go through.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusScheduled: {OrderStatusActive, OrderStatusCancelled},
	OrderStatusActive: {
		OrderStatusCompleted,
		OrderStatusCompletedWithIssues,
		OrderStatusPartiallyReturned,
		OrderStatusFlagged,
		OrderStatusCancelled,
	},
	OrderStatusPartiallyReturned: {OrderStatusCompleted, OrderStatusCompletedWithIssues, OrderStatusFlagged},
	OrderStatusFlagged:           {OrderStatusCompleted, OrderStatusCompletedWithIssues},
}

// CanTransition reports whether an order in status from may be moved to status to.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type ItemReturnStatus string

const (
	ItemReturnPending  ItemReturnStatus = "pending"
	ItemReturnReturned ItemReturnStatus = "returned"
)

type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type OrderItem struct {
	ID               string           `json:"id"`
	OrderID          string           `json:"order_id"`
	PhotoURL         string           `json:"photo_url"`
	ProductName      string           `json:"product_name"`
	Quantity         int32            `json:"quantity"`
	PricePerDayCents int64            `json:"price_per_day_cents"`
	Days             int32            `json:"days"`
	LineTotalCents   int64            `json:"line_total_cents"`
	ReturnStatus     ItemReturnStatus `json:"return_status"`
}

// IsReturned reports whether the item has been brought back.
func (i OrderItem) IsReturned() bool {
	return i.ReturnStatus == ItemReturnReturned
}

type Order struct {
	ID            string      `json:"id"`
	InvoiceNumber string      `json:"invoice_number"`
	BranchID      string      `json:"branch_id"`
	StaffID       string      `json:"staff_id"`
	Customer      Customer    `json:"customer"`
	Items         []OrderItem `json:"items"`
	// Dates are kept as received (ISO-8601, offset optional). EndDateTime is
	// the combined field and wins over EndDate when both are present.
	StartDate       string      `json:"start_date"`
	StartDateTime   string      `json:"start_date_time,omitempty"`
	EndDate         string      `json:"end_date"`
	EndDateTime     string      `json:"end_date_time,omitempty"`
	Status          OrderStatus `json:"status"`
	SubtotalCents   int64       `json:"subtotal_cents"`
	TaxCents        int64       `json:"tax_cents"`
	GrandTotalCents int64       `json:"grand_total_cents"`
	LateFeeCents    *int64      `json:"late_fee_cents,omitempty"`
	CreatedOn       time.Time   `json:"created_on"`
	UpdatedOn       time.Time   `json:"updated_on"`
}

// EndTimestamp returns the raw end timestamp, preferring the combined field.
func (o *Order) EndTimestamp() string {
	if o.EndDateTime != "" {
		return o.EndDateTime
	}
	return o.EndDate
}

// StartTimestamp returns the raw start timestamp, preferring the combined field.
func (o *Order) StartTimestamp() string {
	if o.StartDateTime != "" {
		return o.StartDateTime
	}
	return o.StartDate
}

// DateRange bounds a listing by order start date, both ends inclusive.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// OrderFilter carries the server-side list filters. Nil/empty fields are not applied.
type OrderFilter struct {
	BranchID  *string
	Statuses  []OrderStatus
	DateRange *DateRange
	Search    string
	Page      int32
	PageSize  int32
}
