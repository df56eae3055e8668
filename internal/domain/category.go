package domain

// OrderCategory is the display classification of an order. It is derived
// from status, dates and item return state on every read and never stored.
type OrderCategory string

const (
	OrderCategoryScheduled         OrderCategory = "scheduled"
	OrderCategoryOngoing           OrderCategory = "ongoing"
	OrderCategoryLate              OrderCategory = "late"
	OrderCategoryReturned          OrderCategory = "returned"
	OrderCategoryPartiallyReturned OrderCategory = "partiallyReturned"
	OrderCategoryCancelled         OrderCategory = "cancelled"
	OrderCategoryFlagged           OrderCategory = "flagged"
)

var AllOrderCategories = []OrderCategory{
	OrderCategoryScheduled,
	OrderCategoryOngoing,
	OrderCategoryLate,
	OrderCategoryReturned,
	OrderCategoryPartiallyReturned,
	OrderCategoryCancelled,
	OrderCategoryFlagged,
}

func (c OrderCategory) IsValid() bool {
	for _, known := range AllOrderCategories {
		if c == known {
			return true
		}
	}
	return false
}

// CandidateStatuses returns the persisted statuses an order must have to
// possibly fall into category c. Date and item driven categories still need
// the classifier to confirm membership.
func (c OrderCategory) CandidateStatuses() []OrderStatus {
	switch c {
	case OrderCategoryScheduled:
		return []OrderStatus{OrderStatusScheduled}
	case OrderCategoryCancelled:
		return []OrderStatus{OrderStatusCancelled}
	case OrderCategoryFlagged:
		return []OrderStatus{OrderStatusFlagged}
	case OrderCategoryReturned:
		return []OrderStatus{OrderStatusCompleted, OrderStatusCompletedWithIssues}
	case OrderCategoryPartiallyReturned:
		return []OrderStatus{OrderStatusPartiallyReturned, OrderStatusActive}
	case OrderCategoryLate, OrderCategoryOngoing:
		return []OrderStatus{OrderStatusActive}
	default:
		return nil
	}
}

// NeedsClassifier reports whether membership in c depends on dates or item
// return state, so a status filter alone over-selects.
func (c OrderCategory) NeedsClassifier() bool {
	switch c {
	case OrderCategoryOngoing, OrderCategoryLate, OrderCategoryPartiallyReturned:
		return true
	}
	return false
}

// OrderAction is a lifecycle action a staff member can trigger on an order.
type OrderAction string

const (
	OrderActionStart        OrderAction = "start"
	OrderActionCancel       OrderAction = "cancel"
	OrderActionMarkReturned OrderAction = "markReturned"
	OrderActionFlag         OrderAction = "flag"
)

// OrderStats counts orders per category.
type OrderStats struct {
	Total      int32                   `json:"total"`
	ByCategory map[OrderCategory]int32 `json:"by_category"`
}
