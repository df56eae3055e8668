package utils

import (
	"fmt"
	"strings"

	"rentaldesk-backend/internal/domain"
)

// ValidationFailure describes one reason a draft cannot be submitted.
type ValidationFailure struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError wraps every failure found on a draft.
type ValidationError struct {
	Failures []ValidationFailure
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		msgs = append(msgs, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// ValidateDraft runs every pre-submission check and reports all failures.
// An empty result means the draft can be submitted.
func ValidateDraft(draft *domain.OrderDraft, staff *domain.StaffContext) []ValidationFailure {
	var failures []ValidationFailure
	add := func(field, msg string) {
		failures = append(failures, ValidationFailure{Field: field, Message: msg})
	}

	if draft.Customer == nil || strings.TrimSpace(draft.Customer.ID) == "" {
		add("customer", "please select a customer")
	}
	if draft.EndDate.IsZero() {
		add("end_date", "please select an end date")
	}
	if len(draft.Items) == 0 {
		add("items", "please add at least one item")
	}
	if strings.TrimSpace(draft.InvoiceNumber) == "" {
		add("invoice_number", "please enter an invoice number")
	}
	if staff == nil || staff.StaffID == "" || staff.BranchID == "" {
		add("staff", "user information is missing, please sign in again")
	}

	for i, item := range draft.Items {
		if strings.TrimSpace(item.PhotoURL) == "" {
			add(fmt.Sprintf("items[%d].photo_url", i), fmt.Sprintf("item %d needs a photo", i+1))
		}
		if item.Quantity <= 0 {
			add(fmt.Sprintf("items[%d].quantity", i), fmt.Sprintf("item %d quantity must be greater than zero", i+1))
		}
		if item.PricePerDayCents < 0 {
			add(fmt.Sprintf("items[%d].price_per_day_cents", i), fmt.Sprintf("item %d price cannot be negative", i+1))
		}
	}

	return failures
}

// FirstDraftFailure is the short-circuit form of ValidateDraft. Checks run in
// a fixed order, customer selection first.
func FirstDraftFailure(draft *domain.OrderDraft, staff *domain.StaffContext) *ValidationFailure {
	failures := ValidateDraft(draft, staff)
	if len(failures) == 0 {
		return nil
	}
	return &failures[0]
}
