package domain

import "time"

// OrderDraft is an order being assembled by a staff member before submission.
type OrderDraft struct {
	Customer      *Customer   `json:"customer,omitempty"`
	InvoiceNumber string      `json:"invoice_number"`
	StartDate     time.Time   `json:"start_date"`
	EndDate       time.Time   `json:"end_date"`
	Items         []OrderItem `json:"items"`
	UpdatedOn     time.Time   `json:"updated_on"`
}

// Clone returns a deep copy so callers never share item slices with the store.
func (d *OrderDraft) Clone() *OrderDraft {
	if d == nil {
		return nil
	}
	out := *d
	if d.Customer != nil {
		c := *d.Customer
		out.Customer = &c
	}
	out.Items = append([]OrderItem(nil), d.Items...)
	return &out
}

// OrderTotals is a snapshot of the money figures of an order or draft.
type OrderTotals struct {
	SubtotalCents   int64 `json:"subtotal_cents"`
	TaxCents        int64 `json:"tax_cents"`
	GrandTotalCents int64 `json:"grand_total_cents"`
}
