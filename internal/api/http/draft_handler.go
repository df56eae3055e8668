package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"rentaldesk-backend/internal/domain"
	"rentaldesk-backend/internal/logger"
	"rentaldesk-backend/internal/service"
	"rentaldesk-backend/internal/utils"
)

// DraftStore is the part of session.Store the draft routes use.
type DraftStore interface {
	Draft(staffID string) *domain.OrderDraft
	Totals(staff *domain.StaffContext) domain.OrderTotals
	Submitting(staffID string) bool
	SetCustomer(staffID string, customer *domain.Customer) *domain.OrderDraft
	SetInvoiceNumber(staffID, invoice string) *domain.OrderDraft
	SetDates(staffID string, start, end time.Time) *domain.OrderDraft
	AddItem(staffID string, item domain.OrderItem) *domain.OrderDraft
	UpdateItem(staffID string, index int, item domain.OrderItem) (*domain.OrderDraft, error)
	RemoveItem(staffID string, index int) (*domain.OrderDraft, error)
	Clear(staffID string)
	Submit(ctx context.Context, staff *domain.StaffContext) (*service.OrderView, error)
}

type DraftHandler struct {
	drafts    DraftStore
	customers service.CustomerService
	loc       *time.Location
}

func NewDraftHandler(drafts DraftStore, customers service.CustomerService, loc *time.Location) *DraftHandler {
	if loc == nil {
		loc = time.Local
	}
	return &DraftHandler{drafts: drafts, customers: customers, loc: loc}
}

type draftResponse struct {
	Draft      *domain.OrderDraft        `json:"draft"`
	Totals     domain.OrderTotals        `json:"totals"`
	Submitting bool                      `json:"submitting"`
	Issues     []utils.ValidationFailure `json:"issues"`
}

// draftPatch changes only the fields that are present. An empty string
// clears the field.
type draftPatch struct {
	CustomerID    *string `json:"customer_id"`
	InvoiceNumber *string `json:"invoice_number"`
	StartDate     *string `json:"start_date"`
	EndDate       *string `json:"end_date"`
}

type itemInput struct {
	ProductName      string `json:"product_name"`
	PhotoURL         string `json:"photo_url"`
	Quantity         int32  `json:"quantity"`
	PricePerDayCents int64  `json:"price_per_day_cents"`
}

func (in itemInput) toDomain() domain.OrderItem {
	return domain.OrderItem{
		ProductName:      in.ProductName,
		PhotoURL:         in.PhotoURL,
		Quantity:         in.Quantity,
		PricePerDayCents: in.PricePerDayCents,
	}
}

func (h *DraftHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	staff, _ := StaffFromContext(r.Context())
	h.respond(w, http.StatusOK, staff, h.drafts.Draft(staff.StaffID))
}

func (h *DraftHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	staff, _ := StaffFromContext(r.Context())

	var patch draftPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var start, end *time.Time
	var err error
	if patch.StartDate != nil {
		if start, err = h.parseOptionalTime("start_date", *patch.StartDate); err != nil {
			writeError(w, r, err)
			return
		}
	}
	if patch.EndDate != nil {
		if end, err = h.parseOptionalTime("end_date", *patch.EndDate); err != nil {
			writeError(w, r, err)
			return
		}
	}

	if patch.CustomerID != nil {
		var customer *domain.Customer
		if *patch.CustomerID != "" {
			if customer, err = h.customers.GetCustomer(r.Context(), *patch.CustomerID); err != nil {
				writeError(w, r, err)
				return
			}
		}
		h.drafts.SetCustomer(staff.StaffID, customer)
	}
	if patch.InvoiceNumber != nil {
		h.drafts.SetInvoiceNumber(staff.StaffID, *patch.InvoiceNumber)
	}
	if start != nil || end != nil {
		current := h.drafts.Draft(staff.StaffID)
		if start == nil {
			start = &current.StartDate
		}
		if end == nil {
			end = &current.EndDate
		}
		h.drafts.SetDates(staff.StaffID, *start, *end)
	}

	h.respond(w, http.StatusOK, staff, h.drafts.Draft(staff.StaffID))
}

func (h *DraftHandler) ClearDraft(w http.ResponseWriter, r *http.Request) {
	staff, _ := StaffFromContext(r.Context())
	h.drafts.Clear(staff.StaffID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *DraftHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	staff, _ := StaffFromContext(r.Context())

	var in itemInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.respond(w, http.StatusCreated, staff, h.drafts.AddItem(staff.StaffID, in.toDomain()))
}

func (h *DraftHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	staff, _ := StaffFromContext(r.Context())

	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid item index")
		return
	}
	var in itemInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	draft, err := h.drafts.UpdateItem(staff.StaffID, index, in.toDomain())
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, staff, draft)
}

func (h *DraftHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	staff, _ := StaffFromContext(r.Context())

	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid item index")
		return
	}
	draft, err := h.drafts.RemoveItem(staff.StaffID, index)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.respond(w, http.StatusOK, staff, draft)
}

// Submit creates the order. The draft survives a failed submission so the
// staff member can fix it and retry.
func (h *DraftHandler) Submit(w http.ResponseWriter, r *http.Request) {
	staff, _ := StaffFromContext(r.Context())

	view, err := h.drafts.Submit(r.Context(), staff)
	if err != nil {
		logger.WarnContext(r.Context(), "Draft submission failed", "staff_id", staff.StaffID, "error", err)
		writeError(w, r, err)
		return
	}
	logger.InfoContext(r.Context(), "Draft submitted", "staff_id", staff.StaffID, "order_id", view.Order.ID)
	writeJSON(w, http.StatusCreated, view)
}

func (h *DraftHandler) SearchCustomers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var limit int32
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			writeErrorMessage(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = int32(n)
	}

	customers, err := h.customers.SearchCustomers(r.Context(), q.Get("q"), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if customers == nil {
		customers = []domain.Customer{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"customers": customers})
}

func (h *DraftHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	customer, err := h.customers.CreateCustomer(r.Context(), in.Name, in.Phone)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, customer)
}

func (h *DraftHandler) respond(w http.ResponseWriter, code int, staff *domain.StaffContext, draft *domain.OrderDraft) {
	issues := utils.ValidateDraft(draft, staff)
	if issues == nil {
		issues = []utils.ValidationFailure{}
	}
	writeJSON(w, code, draftResponse{
		Draft:      draft,
		Totals:     h.drafts.Totals(staff),
		Submitting: h.drafts.Submitting(staff.StaffID),
		Issues:     issues,
	})
}

func (h *DraftHandler) parseOptionalTime(field, value string) (*time.Time, error) {
	if value == "" {
		return &time.Time{}, nil
	}
	t, err := utils.ParseInputTime(value, h.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s: %v", service.ErrInvalidArgument, field, err)
	}
	return &t, nil
}
