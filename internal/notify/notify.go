// Package notify tells branches about orders that are past their return date.
package notify

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"rentaldesk-backend/internal/domain"
	"rentaldesk-backend/internal/logger"
)

// LateOrderDigest lists one branch's late orders at a given instant.
type LateOrderDigest struct {
	Branch      domain.Branch
	Orders      []domain.Order
	GeneratedAt time.Time
}

// DaysOverdue is the number of whole days since the order's end timestamp,
// or zero when the end date cannot be read.
func (d LateOrderDigest) DaysOverdue(o domain.Order) int {
	end, err := time.Parse(time.DateOnly, firstN(o.EndTimestamp(), 10))
	if err != nil {
		return 0
	}
	now := d.GeneratedAt
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	days := int(today.Sub(end).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// Sorted returns the orders, most overdue first.
func (d LateOrderDigest) Sorted() []domain.Order {
	out := append([]domain.Order(nil), d.Orders...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EndTimestamp() < out[j].EndTimestamp()
	})
	return out
}

type Notifier interface {
	// Channel names the delivery channel, e.g. "email".
	Channel() string
	NotifyLateOrders(ctx context.Context, digest LateOrderDigest) error
}

// ResultFunc observes the outcome of every delivery.
type ResultFunc func(channel string, err error)

// Fanout delivers to every notifier. One failing channel does not stop the others.
type Fanout struct {
	notifiers []Notifier
	onResult  ResultFunc
}

func NewFanout(onResult ResultFunc, notifiers ...Notifier) *Fanout {
	return &Fanout{notifiers: notifiers, onResult: onResult}
}

func (f *Fanout) Channel() string { return "fanout" }

func (f *Fanout) NotifyLateOrders(ctx context.Context, digest LateOrderDigest) error {
	var errs []error
	for _, n := range f.notifiers {
		err := n.NotifyLateOrders(ctx, digest)
		if f.onResult != nil {
			f.onResult(n.Channel(), err)
		}
		if err != nil {
			logger.Error("Late order notification failed", "channel", n.Channel(), "branch_id", digest.Branch.ID, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", n.Channel(), err))
		}
	}
	return errors.Join(errs...)
}

// LogNotifier writes the digest to the log. It is used when no delivery
// channel is configured.
type LogNotifier struct{}

func (LogNotifier) Channel() string { return "log" }

func (LogNotifier) NotifyLateOrders(ctx context.Context, digest LateOrderDigest) error {
	for _, o := range digest.Sorted() {
		logger.Info("Late order",
			"branch_id", digest.Branch.ID,
			"order_id", o.ID,
			"invoice_number", o.InvoiceNumber,
			"customer", o.Customer.Name,
			"end_date", o.EndTimestamp(),
			"days_overdue", digest.DaysOverdue(o))
	}
	return nil
}

func firstN(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
