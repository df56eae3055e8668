// Package session keeps the order drafts staff members are assembling and
// submits them as orders.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"rentaldesk-backend/internal/domain"
	"rentaldesk-backend/internal/logger"
	"rentaldesk-backend/internal/service"
	"rentaldesk-backend/internal/utils"
)

var ErrItemIndex = errors.New("draft item index out of range")

type EventType string

const (
	EventDraftUpdated EventType = "draft_updated"
	EventDraftCleared EventType = "draft_cleared"
	EventSubmitted    EventType = "submitted"
)

// Event is published after every change to a staff member's draft.
type Event struct {
	StaffID string
	Type    EventType
	Draft   *domain.OrderDraft
	OrderID string
}

// Store owns every open draft, keyed by staff id. All mutations go through
// its methods; readers get copies.
type Store struct {
	mu       sync.Mutex
	drafts   map[string]*domain.OrderDraft
	inFlight map[string]bool
	revs     map[string]uint64
	subs     map[int]chan Event
	nextSub  int

	orders service.OrderService
	clock  service.Clock
}

func NewStore(orders service.OrderService, clock service.Clock) *Store {
	if clock == nil {
		clock = service.ClockIn(time.Local)
	}
	return &Store{
		drafts:   make(map[string]*domain.OrderDraft),
		inFlight: make(map[string]bool),
		revs:     make(map[string]uint64),
		subs:     make(map[int]chan Event),
		orders:   orders,
		clock:    clock,
	}
}

// Draft returns a copy of the staff member's draft, empty if none was started.
func (s *Store) Draft(staffID string) *domain.OrderDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draftLocked(staffID).Clone()
}

// Totals prices the current draft with the staff member's tax settings.
func (s *Store) Totals(staff *domain.StaffContext) domain.OrderTotals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return utils.CalculateTotals(s.draftLocked(staff.StaffID).Items, staff.Tax)
}

// Submitting reports whether a submission is in progress for staffID.
func (s *Store) Submitting(staffID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight[staffID]
}

func (s *Store) SetCustomer(staffID string, customer *domain.Customer) *domain.OrderDraft {
	return s.update(staffID, func(d *domain.OrderDraft) error {
		if customer == nil {
			d.Customer = nil
			return nil
		}
		c := *customer
		d.Customer = &c
		return nil
	})
}

func (s *Store) SetInvoiceNumber(staffID, invoice string) *domain.OrderDraft {
	return s.update(staffID, func(d *domain.OrderDraft) error {
		d.InvoiceNumber = invoice
		return nil
	})
}

// SetDates changes the rental period and reprices every item.
func (s *Store) SetDates(staffID string, start, end time.Time) *domain.OrderDraft {
	return s.update(staffID, func(d *domain.OrderDraft) error {
		d.StartDate = start
		d.EndDate = end
		return nil
	})
}

func (s *Store) AddItem(staffID string, item domain.OrderItem) *domain.OrderDraft {
	return s.update(staffID, func(d *domain.OrderDraft) error {
		item.ReturnStatus = domain.ItemReturnPending
		d.Items = append(d.Items, item)
		return nil
	})
}

func (s *Store) UpdateItem(staffID string, index int, item domain.OrderItem) (*domain.OrderDraft, error) {
	var err error
	draft := s.update(staffID, func(d *domain.OrderDraft) error {
		if index < 0 || index >= len(d.Items) {
			err = ErrItemIndex
			return err
		}
		item.ReturnStatus = domain.ItemReturnPending
		d.Items[index] = item
		return nil
	})
	return draft, err
}

func (s *Store) RemoveItem(staffID string, index int) (*domain.OrderDraft, error) {
	var err error
	draft := s.update(staffID, func(d *domain.OrderDraft) error {
		if index < 0 || index >= len(d.Items) {
			err = ErrItemIndex
			return err
		}
		d.Items = append(d.Items[:index], d.Items[index+1:]...)
		return nil
	})
	return draft, err
}

// Replace swaps the whole draft, for clients that keep their own copy.
func (s *Store) Replace(staffID string, draft *domain.OrderDraft) *domain.OrderDraft {
	return s.update(staffID, func(d *domain.OrderDraft) error {
		next := draft.Clone()
		if next == nil {
			next = &domain.OrderDraft{}
		}
		*d = *next
		return nil
	})
}

func (s *Store) Clear(staffID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, staffID)
	s.revs[staffID]++
	s.publishLocked(Event{StaffID: staffID, Type: EventDraftCleared})
}

// Submit validates the draft and creates the order. On success the draft is
// cleared unless it was edited while the request was in flight; on failure
// it is left untouched. Only one submission per staff member may be in flight.
func (s *Store) Submit(ctx context.Context, staff *domain.StaffContext) (*service.OrderView, error) {
	s.mu.Lock()
	if s.inFlight[staff.StaffID] {
		s.mu.Unlock()
		return nil, service.ErrSubmissionInFlight
	}
	draft := s.draftLocked(staff.StaffID).Clone()
	if failures := utils.ValidateDraft(draft, staff); len(failures) > 0 {
		s.mu.Unlock()
		return nil, &utils.ValidationError{Failures: failures}
	}
	s.inFlight[staff.StaffID] = true
	rev := s.revs[staff.StaffID]
	s.mu.Unlock()

	view, err := s.orders.CreateOrder(ctx, staff, draft)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, staff.StaffID)
	if err != nil {
		logger.Warn("Order submission failed", "staff_id", staff.StaffID, "error", err)
		return nil, err
	}
	if s.revs[staff.StaffID] == rev {
		delete(s.drafts, staff.StaffID)
	} else {
		logger.Debug("Draft edited during submission, keeping it", "staff_id", staff.StaffID)
	}
	s.publishLocked(Event{StaffID: staff.StaffID, Type: EventSubmitted, OrderID: view.Order.ID})
	return view, nil
}

// Subscribe returns a channel of draft events and a function that stops
// delivery. Events are dropped for subscribers whose buffer is full.
func (s *Store) Subscribe(buffer int) (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan Event, buffer)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

// update applies fn to the draft, reprices it and publishes the result.
func (s *Store) update(staffID string, fn func(d *domain.OrderDraft) error) *domain.OrderDraft {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.draftLocked(staffID)
	if err := fn(d); err != nil {
		return d.Clone()
	}
	utils.RepriceItems(d.Items, s.daysLocked(d))
	d.UpdatedOn = time.Now().UTC()
	s.revs[staffID]++

	out := d.Clone()
	s.publishLocked(Event{StaffID: staffID, Type: EventDraftUpdated, Draft: d.Clone()})
	return out
}

// daysLocked is the rental length of d. An unset start counts from now; an
// unset end is a one-day rental.
func (s *Store) daysLocked(d *domain.OrderDraft) int32 {
	if d.EndDate.IsZero() {
		return 1
	}
	now := s.clock()
	start := d.StartDate
	if start.IsZero() {
		start = now
	}
	return utils.DaysBetween(start.In(now.Location()), d.EndDate.In(now.Location()))
}

func (s *Store) draftLocked(staffID string) *domain.OrderDraft {
	d, ok := s.drafts[staffID]
	if !ok {
		d = &domain.OrderDraft{Items: []domain.OrderItem{}}
		s.drafts[staffID] = d
	}
	return d
}

func (s *Store) publishLocked(ev Event) {
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
