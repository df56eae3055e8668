package jobs

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"rentaldesk-backend/internal/domain"
	"rentaldesk-backend/internal/logger"
	"rentaldesk-backend/internal/notify"
	"rentaldesk-backend/internal/utils"
)

const JobLateOrderReminders = "late-order-reminders"

// SendLateOrderReminders is the cron entry point.
func (jr *JobRunner) SendLateOrderReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), jr.timeout)
	defer cancel()
	_ = jr.Run(ctx, JobLateOrderReminders)
}

// LateOrderReminders finds every late order and sends each branch one digest.
func (jr *JobRunner) LateOrderReminders(ctx context.Context) error {
	now := jr.clock()

	logger.DatabaseCall("ListAll", "late order candidates")
	candidates, err := jr.orders.ListAll(ctx, domain.OrderFilter{
		Statuses: domain.OrderCategoryLate.CandidateStatuses(),
	})
	logger.DatabaseResult("ListAll", int64(len(candidates)), err)
	if err != nil {
		return fmt.Errorf("failed to list active orders: %w", err)
	}

	byBranch := make(map[string][]domain.Order)
	for i := range candidates {
		if utils.ClassifyOrder(&candidates[i], now) == domain.OrderCategoryLate {
			byBranch[candidates[i].BranchID] = append(byBranch[candidates[i].BranchID], candidates[i])
		}
	}

	counts := make(map[string]int, len(byBranch))
	branchIDs := make([]string, 0, len(byBranch))
	for id, orders := range byBranch {
		counts[id] = len(orders)
		branchIDs = append(branchIDs, id)
	}
	sort.Strings(branchIDs)
	jr.recorder.SetLateOrders(counts)

	logger.Info("Late orders found", "orders", totalOf(counts), "branches", len(branchIDs))

	var errs []error
	for _, id := range branchIDs {
		branch, err := jr.branches.GetByID(ctx, id)
		if err != nil {
			logger.Error("Failed to load branch", "branch_id", id, "error", err)
			errs = append(errs, fmt.Errorf("branch %s: %w", id, err))
			continue
		}
		digest := notify.LateOrderDigest{Branch: *branch, Orders: byBranch[id], GeneratedAt: now}
		if err := jr.notifier.NotifyLateOrders(ctx, digest); err != nil {
			errs = append(errs, fmt.Errorf("branch %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func totalOf(counts map[string]int) int {
	n := 0
	for _, c := range counts {
		n += c
	}
	return n
}
