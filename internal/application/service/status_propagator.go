package service

import (
	"context"

	"github.com/hardhat-systems/siteledger/internal/application/port"
	"github.com/hardhat-systems/siteledger/internal/domain/entity"
)

// StatusPropagator recomputes a work item's derived completion status from
// its accumulated hours versus estimate. Explicitly non-critical: invoked
// fire-and-forget after commits, failures are logged and never retried or
// surfaced to the triggering request.
type StatusPropagator struct {
	workItems port.WorkItemRepository
	logger    Logger
}

// NewStatusPropagator creates a new status propagator
func NewStatusPropagator(workItems port.WorkItemRepository, logger Logger) *StatusPropagator {
	return &StatusPropagator{
		workItems: workItems,
		logger:    logger,
	}
}

// RecomputeWorkItemStatus derives and persists the work item's status.
func (p *StatusPropagator) RecomputeWorkItemStatus(ctx context.Context, workItemID int64) error {
	item, err := p.workItems.GetByID(ctx, workItemID)
	if err != nil {
		return err
	}
	if item == nil {
		p.logger.Warn("Work item vanished before status recompute", "work_item_id", workItemID)
		return nil
	}

	status := DeriveWorkItemStatus(item)
	if status == item.Status {
		return nil
	}

	if err := p.workItems.UpdateStatus(ctx, workItemID, status); err != nil {
		return err
	}

	p.logger.Info("Work item status updated",
		"work_item_id", workItemID,
		"from", item.Status,
		"to", status)
	return nil
}

// DeriveWorkItemStatus is a pure function of the item's accumulated progress.
func DeriveWorkItemStatus(item *entity.WorkItem) string {
	if item.ActualHours <= 0 && item.ActualCost <= 0 {
		return entity.WorkItemStatusNotStarted
	}
	if item.EstimatedHours > 0 && item.ActualHours >= item.EstimatedHours {
		return entity.WorkItemStatusCompleted
	}
	return entity.WorkItemStatusInProgress
}
