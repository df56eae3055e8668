package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentaldesk-backend/internal/domain"
	"rentaldesk-backend/internal/service"
	"rentaldesk-backend/internal/utils"
)

var now = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

// fakeOrders records CreateOrder calls. When gate is set the call blocks
// until the gate is closed.
type fakeOrders struct {
	service.OrderService
	mu      sync.Mutex
	calls   int
	err     error
	gate    chan struct{}
	entered chan struct{}
}

func (f *fakeOrders) CreateOrder(ctx context.Context, staff *domain.StaffContext, draft *domain.OrderDraft) (*service.OrderView, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return nil, f.err
	}
	return &service.OrderView{Order: domain.Order{ID: "order-1", InvoiceNumber: draft.InvoiceNumber}}, nil
}

func newStore(orders service.OrderService) *Store {
	return NewStore(orders, func() time.Time { return now })
}

var staff = &domain.StaffContext{StaffID: "staff-1", BranchID: "branch-1", Tax: domain.TaxSettings{
	Enabled: true, RatePercent: decimal.NewFromInt(10),
}}

func fillDraft(s *Store) {
	s.SetCustomer(staff.StaffID, &domain.Customer{ID: "cust-1", Name: "Ada"})
	s.SetInvoiceNumber(staff.StaffID, "INV-1")
	s.SetDates(staff.StaffID, now, now.AddDate(0, 0, 3))
	s.AddItem(staff.StaffID, domain.OrderItem{PhotoURL: "p1.jpg", Quantity: 2, PricePerDayCents: 500})
	s.AddItem(staff.StaffID, domain.OrderItem{PhotoURL: "p2.jpg", Quantity: 1, PricePerDayCents: 1550})
}

func TestStore_ItemsFollowDates(t *testing.T) {
	s := newStore(&fakeOrders{})
	fillDraft(s)

	d := s.Draft(staff.StaffID)
	require.Len(t, d.Items, 2)
	assert.Equal(t, int32(3), d.Items[0].Days)
	assert.Equal(t, int64(3000), d.Items[0].LineTotalCents)
	assert.Equal(t, int64(4650), d.Items[1].LineTotalCents)

	d = s.SetDates(staff.StaffID, now, now.AddDate(0, 0, 5))
	for _, item := range d.Items {
		assert.Equal(t, int32(5), item.Days)
		assert.Equal(t, utils.LineTotal(item.Quantity, item.PricePerDayCents, 5), item.LineTotalCents)
	}

	totals := s.Totals(staff)
	assert.Equal(t, int64(5000+7750), totals.SubtotalCents)
	assert.Equal(t, totals.SubtotalCents+totals.TaxCents, totals.GrandTotalCents)
}

func TestStore_SameDayRentalIsOneDay(t *testing.T) {
	s := newStore(&fakeOrders{})
	d := s.AddItem(staff.StaffID, domain.OrderItem{PhotoURL: "p.jpg", Quantity: 3, PricePerDayCents: 200})
	assert.Equal(t, int32(1), d.Items[0].Days)

	d = s.SetDates(staff.StaffID, now, now.Add(2*time.Hour))
	assert.Equal(t, int32(1), d.Items[0].Days)
	assert.Equal(t, int64(600), d.Items[0].LineTotalCents)
}

func TestStore_UpdateAndRemoveItems(t *testing.T) {
	s := newStore(&fakeOrders{})
	fillDraft(s)

	d, err := s.UpdateItem(staff.StaffID, 1, domain.OrderItem{PhotoURL: "p3.jpg", Quantity: 4, PricePerDayCents: 100})
	require.NoError(t, err)
	assert.Equal(t, int64(1200), d.Items[1].LineTotalCents)

	_, err = s.UpdateItem(staff.StaffID, 7, domain.OrderItem{})
	assert.ErrorIs(t, err, ErrItemIndex)

	d, err = s.RemoveItem(staff.StaffID, 0)
	require.NoError(t, err)
	require.Len(t, d.Items, 1)
	assert.Equal(t, "p3.jpg", d.Items[0].PhotoURL)

	_, err = s.RemoveItem(staff.StaffID, -1)
	assert.ErrorIs(t, err, ErrItemIndex)
}

func TestStore_DraftIsACopy(t *testing.T) {
	s := newStore(&fakeOrders{})
	fillDraft(s)

	d := s.Draft(staff.StaffID)
	d.Items[0].Quantity = 99
	d.Customer.Name = "Mallory"

	fresh := s.Draft(staff.StaffID)
	assert.Equal(t, int32(2), fresh.Items[0].Quantity)
	assert.Equal(t, "Ada", fresh.Customer.Name)
}

func TestStore_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("SuccessClearsDraft", func(t *testing.T) {
		orders := &fakeOrders{}
		s := newStore(orders)
		fillDraft(s)

		view, err := s.Submit(ctx, staff)
		require.NoError(t, err)
		assert.Equal(t, "order-1", view.Order.ID)
		assert.Empty(t, s.Draft(staff.StaffID).Items)
		assert.False(t, s.Submitting(staff.StaffID))
	})

	t.Run("FailureKeepsDraft", func(t *testing.T) {
		orders := &fakeOrders{err: errors.New("backend unavailable")}
		s := newStore(orders)
		fillDraft(s)
		before := s.Draft(staff.StaffID)

		_, err := s.Submit(ctx, staff)
		assert.EqualError(t, err, "backend unavailable")
		after := s.Draft(staff.StaffID)
		assert.Equal(t, before.Items, after.Items)
		assert.Equal(t, before.InvoiceNumber, after.InvoiceNumber)
		assert.False(t, s.Submitting(staff.StaffID))
	})

	t.Run("InvalidDraftNeverReachesBackend", func(t *testing.T) {
		orders := &fakeOrders{}
		s := newStore(orders)
		s.SetInvoiceNumber(staff.StaffID, "INV-1")

		_, err := s.Submit(ctx, staff)
		var verr *utils.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "customer", verr.Failures[0].Field)
		assert.Equal(t, 0, orders.calls)
	})

	t.Run("SecondSubmitWhileInFlight", func(t *testing.T) {
		orders := &fakeOrders{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
		s := newStore(orders)
		fillDraft(s)

		done := make(chan error, 1)
		go func() {
			_, err := s.Submit(ctx, staff)
			done <- err
		}()
		<-orders.entered

		assert.True(t, s.Submitting(staff.StaffID))
		_, err := s.Submit(ctx, staff)
		assert.ErrorIs(t, err, service.ErrSubmissionInFlight)

		close(orders.gate)
		require.NoError(t, <-done)
		assert.Equal(t, 1, orders.calls)
	})

	t.Run("EditsDuringSubmitAreKept", func(t *testing.T) {
		orders := &fakeOrders{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
		s := newStore(orders)
		fillDraft(s)

		done := make(chan error, 1)
		go func() {
			_, err := s.Submit(ctx, staff)
			done <- err
		}()
		<-orders.entered

		s.SetInvoiceNumber(staff.StaffID, "INV-2")
		close(orders.gate)
		require.NoError(t, <-done)

		assert.Equal(t, "INV-2", s.Draft(staff.StaffID).InvoiceNumber)
		assert.Len(t, s.Draft(staff.StaffID).Items, 2)
	})
}

func TestStore_Subscribe(t *testing.T) {
	s := newStore(&fakeOrders{})
	events, cancel := s.Subscribe(8)

	s.SetInvoiceNumber(staff.StaffID, "INV-7")
	s.Clear(staff.StaffID)

	ev := <-events
	assert.Equal(t, EventDraftUpdated, ev.Type)
	assert.Equal(t, "INV-7", ev.Draft.InvoiceNumber)
	ev = <-events
	assert.Equal(t, EventDraftCleared, ev.Type)

	cancel()
	cancel()
	_, open := <-events
	assert.False(t, open)
}
