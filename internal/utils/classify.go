package utils

import (
	"time"

	"rentaldesk-backend/internal/domain"
)

// ClassifyOrder derives the display category of order at instant now.
// Rules are evaluated in order and the first match wins. It never fails: an
// unreadable end timestamp classifies as ongoing.
func ClassifyOrder(order *domain.Order, now time.Time) domain.OrderCategory {
	switch order.Status {
	case domain.OrderStatusCancelled:
		return domain.OrderCategoryCancelled
	case domain.OrderStatusFlagged:
		return domain.OrderCategoryFlagged
	case domain.OrderStatusPartiallyReturned:
		return domain.OrderCategoryPartiallyReturned
	case domain.OrderStatusCompleted, domain.OrderStatusCompletedWithIssues:
		return domain.OrderCategoryReturned
	case domain.OrderStatusScheduled:
		// Dates never make a scheduled order late.
		return domain.OrderCategoryScheduled
	}

	if hasMixedReturnState(order.Items) {
		return domain.OrderCategoryPartiallyReturned
	}

	end, err := ParseTimestamp(order.EndTimestamp(), now.Location())
	if err != nil {
		return domain.OrderCategoryOngoing
	}

	if end.Before(now) && canBeLate(order.Status) {
		return domain.OrderCategoryLate
	}
	return domain.OrderCategoryOngoing
}

func hasMixedReturnState(items []domain.OrderItem) bool {
	var returned, pending bool
	for _, item := range items {
		if item.IsReturned() {
			returned = true
		} else {
			pending = true
		}
		if returned && pending {
			return true
		}
	}
	return false
}

// A partiallyReturned order is never late, even past its end date.
func canBeLate(status domain.OrderStatus) bool {
	switch status {
	case domain.OrderStatusCompleted,
		domain.OrderStatusCompletedWithIssues,
		domain.OrderStatusFlagged,
		domain.OrderStatusCancelled,
		domain.OrderStatusPartiallyReturned:
		return false
	}
	return true
}

// ActionsFor lists the lifecycle actions available for an order in category c.
func ActionsFor(c domain.OrderCategory) []domain.OrderAction {
	switch c {
	case domain.OrderCategoryScheduled:
		return []domain.OrderAction{domain.OrderActionStart, domain.OrderActionCancel}
	case domain.OrderCategoryOngoing:
		return []domain.OrderAction{domain.OrderActionMarkReturned, domain.OrderActionFlag, domain.OrderActionCancel}
	case domain.OrderCategoryLate, domain.OrderCategoryPartiallyReturned:
		return []domain.OrderAction{domain.OrderActionMarkReturned, domain.OrderActionFlag}
	case domain.OrderCategoryFlagged:
		return []domain.OrderAction{domain.OrderActionMarkReturned}
	default:
		return nil
	}
}

// LateFeeAllowed reports whether a late fee may accompany a return of an order in category c.
func LateFeeAllowed(c domain.OrderCategory) bool {
	return c == domain.OrderCategoryLate
}

// CountByCategory classifies orders at now and tallies the result.
func CountByCategory(orders []domain.Order, now time.Time) domain.OrderStats {
	stats := domain.OrderStats{ByCategory: make(map[domain.OrderCategory]int32, len(domain.AllOrderCategories))}
	for _, c := range domain.AllOrderCategories {
		stats.ByCategory[c] = 0
	}
	for i := range orders {
		stats.ByCategory[ClassifyOrder(&orders[i], now)]++
		stats.Total++
	}
	return stats
}
