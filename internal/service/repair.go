package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/flicky/homeclick-store/internal/model"
	"github.com/flicky/homeclick-store/internal/repository"
)

type repairPlan struct {
	// merged holds one item per product, keeping the lowest ID of each group.
	merged  []model.OrderItem
	updates map[int64]int
	deletes []int64
}

func (p repairPlan) noop() bool {
	return len(p.updates) == 0 && len(p.deletes) == 0
}

func planRepair(items []model.OrderItem) repairPlan {
	sorted := make([]model.OrderItem, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	plan := repairPlan{updates: make(map[int64]int)}
	keep := make(map[uuid.UUID]int)
	for _, item := range sorted {
		idx, seen := keep[item.ProductID]
		if !seen {
			keep[item.ProductID] = len(plan.merged)
			plan.merged = append(plan.merged, item)
			continue
		}
		plan.merged[idx].Quantity += item.Quantity
		plan.updates[plan.merged[idx].ID] = plan.merged[idx].Quantity
		plan.deletes = append(plan.deletes, item.ID)
	}
	return plan
}

// repairItems collapses duplicate line items of one order and returns the
// resulting item set. Running it again on its own output changes nothing.
func repairItems(ctx context.Context, items repository.OrderItemRepository, orderID uuid.UUID) ([]model.OrderItem, error) {
	current, err := items.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	plan := planRepair(current)
	if plan.noop() {
		return plan.merged, nil
	}
	for id, qty := range plan.updates {
		if err := items.UpdateQuantity(ctx, id, qty); err != nil {
			return nil, fmt.Errorf("merge duplicate items: %w", err)
		}
	}
	if err := items.Delete(ctx, plan.deletes...); err != nil {
		return nil, fmt.Errorf("drop duplicate items: %w", err)
	}
	return plan.merged, nil
}
